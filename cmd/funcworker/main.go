package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/azfunc/worker-go/worker"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		BackupLogger.Fatalf("Failed to run: %v", err)
	}
}

func rootCmd() *cobra.Command {
	var r runner
	cmd := &cobra.Command{
		Use:          "funcworker",
		Short:        "Functions host language worker",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd.Context())
		},
	}
	r.addCLIFlags(cmd.Flags())
	return cmd
}

type runner struct {
	logger         *zap.SugaredLogger
	loggingOptions LoggingOptions

	host           string
	port           int
	workerID       string
	requestID      string
	maxMessageSize int
	configPath     string
	probeAddress   string
}

// addCLIFlags registers the worker's flags. The connection flags use the
// spellings the host passes when it launches a worker process.
func (r *runner) addCLIFlags(fs *pflag.FlagSet) {
	fs.StringVar(&r.host, "host", "127.0.0.1", "Address of the Functions host RPC endpoint")
	fs.IntVar(&r.port, "port", 0, "Port of the Functions host RPC endpoint")
	fs.StringVar(&r.workerID, "workerId", "", "Worker id assigned by the host")
	fs.StringVar(&r.requestID, "requestId", "", "Request id stamped on worker-initiated frames")
	fs.IntVar(&r.maxMessageSize, "grpcMaxMessageLength", 0, "Maximum frame size in bytes")
	fs.StringVar(&r.configPath, "config", "", "Path to a YAML settings file")
	fs.StringVar(&r.probeAddress, "probe-address", "", "HTTP health probe listen address (empty disables)")
	r.loggingOptions.AddCLIFlags(fs)
}

func (r *runner) run(ctx context.Context) error {
	r.logger = r.loggingOptions.MustCreateLogger()
	defer r.logger.Sync()

	settings, err := LoadSettings(r.configPath)
	if err != nil {
		return err
	}
	if r.requestID == "" {
		r.requestID = uuid.NewString()
	}
	probeAddress := r.probeAddress
	if probeAddress == "" {
		probeAddress = settings.ProbeAddress
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := worker.New(manifest(), worker.Options{
		Host:                     r.host,
		Port:                     r.port,
		WorkerID:                 r.workerID,
		RequestID:                r.requestID,
		MaxMessageSize:           r.maxMessageSize,
		Capabilities:             settings.Capabilities,
		RequiredHostCapabilities: settings.RequiredHostCapabilities,
		MinimumHostVersion:       settings.MinimumHostVersion,
		HeartbeatInterval:        time.Duration(settings.HeartbeatInterval),
		MaxConcurrentInvocations: settings.MaxConcurrentInvocations,
		ReloadQuiesceTimeout:     time.Duration(settings.ReloadQuiesceTimeout),
		Logger:                   r.logger.Desugar(),
	})
	if err != nil {
		return err
	}

	if probeAddress != "" {
		probe := &http.Server{Addr: probeAddress, Handler: worker.NewProbeHandler(w)}
		go func() {
			if err := probe.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				r.logger.Errorw("probe server failed", "error", err)
			}
		}()
		defer probe.Close()
		r.logger.Infow("probe server listening", "address", probeAddress)
	}

	r.logger.Infow("starting worker",
		"host", r.host,
		"port", r.port,
		"worker_id", r.workerID,
	)
	return w.Run(ctx)
}
