package worker

import "fmt"

// ProtocolError indicates the host violated the event stream contract, for
// example by sending a frame kind the worker can only produce, or a frame
// that is invalid in the current lifecycle state. Protocol errors are fatal
// to the stream: the worker requests a restart and [Worker.Run] returns.
type ProtocolError struct {
	Message string
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error: %s", e.Message)
}
