package worker

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

// ProbeStatus is the payload served on the status endpoint.
type ProbeStatus struct {
	WorkerID  string `json:"worker_id"`
	State     string `json:"state"`
	Functions int    `json:"functions"`
	InFlight  int    `json:"in_flight"`
}

// NewProbeHandler serves liveness and readiness over HTTP for orchestrators
// that cannot observe the event stream:
//
//   - GET /healthz answers 200 until the worker closes.
//   - GET /readyz answers 200 once the init handshake has completed and the
//     worker is accepting work, 503 otherwise.
//   - GET /statusz answers the current [ProbeStatus] as JSON.
func NewProbeHandler(w *Worker) http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/healthz", func(writer http.ResponseWriter, _ *http.Request) {
		if w.State() == StateClosed {
			writer.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writer.WriteHeader(http.StatusOK)
	}).Methods("GET")
	router.HandleFunc("/readyz", func(writer http.ResponseWriter, _ *http.Request) {
		if s := w.State(); s == StateInitialized || s == StateReady {
			writer.WriteHeader(http.StatusOK)
			return
		}
		writer.WriteHeader(http.StatusServiceUnavailable)
	}).Methods("GET")
	router.HandleFunc("/statusz", func(writer http.ResponseWriter, _ *http.Request) {
		status := ProbeStatus{
			WorkerID:  w.WorkerID(),
			State:     w.State().String(),
			Functions: w.FunctionCount(),
			InFlight:  w.InFlight(),
		}
		writer.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(writer).Encode(status); err != nil {
			w.logger.Errorw("failed to write status response", "error", err)
		}
	}).Methods("GET")
	return router
}
