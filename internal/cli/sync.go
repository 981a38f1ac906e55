package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/m04kA/SMC-BayLedger/internal/app"
)

// SyncOptions флаги команды sync
type SyncOptions struct {
	*RootOptions
	Timeout time.Duration
}

// NewSyncCommand выполняет один цикл push+pull и завершается
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SyncOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one push+pull reconciliation cycle and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, opts)
		},
	}

	cmd.Flags().DurationVar(&opts.Timeout, "timeout", time.Minute, "maximum duration of the cycle")

	return cmd
}

func runSync(cmd *cobra.Command, opts *SyncOptions) error {
	cfg, log, err := bootstrap(opts.RootOptions)
	if err != nil {
		return err
	}
	defer log.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
	defer cancel()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	report := a.Reconciler.SyncOnce(ctx)
	fmt.Fprintf(cmd.OutOrStdout(), "pushed=%d failed=%d pulled=%d conflicts=%d released=%d\n",
		report.Pushed, report.PushFailed, report.Pulled, report.Conflicts, report.SlotsReleased)

	if report.Err != nil {
		return fmt.Errorf("sync cycle: %w", report.Err)
	}
	return nil
}
