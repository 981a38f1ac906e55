package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/m04kA/SMC-BayLedger/internal/app"
	"github.com/m04kA/SMC-BayLedger/pkg/telemetry"
)

// NewServeCommand запускает HTTP API и фоновую синхронизацию
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the background reconciler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), rootOpts)
		},
	}
}

func runServe(parent context.Context, opts *RootOptions) error {
	cfg, log, err := bootstrap(opts)
	if err != nil {
		return err
	}
	defer log.Close()

	log.Info("Starting BayLedger...")

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing := telemetry.Setup(ctx, cfg.Metrics.ServiceName, cfg.Telemetry.Endpoint, cfg.Telemetry.Insecure, log)
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Error("Failed to shutdown tracing: %v", err)
		}
	}()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error("Failed to close resources: %v", err)
		}
	}()

	return a.Serve(ctx)
}
