package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/archivist/internal/wire"
)

// WorkerCmd returns the worker command
func WorkerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run the background archive worker",
		Long: `Run the background worker that consumes archive jobs from the queue,
plus the periodic sweep that re-enqueues stalled archives.

Blocks until interrupted (SIGINT/SIGTERM).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			if err := wire.Sweeper().Start(); err != nil {
				return fmt.Errorf("failed to start sweeper: %w", err)
			}
			defer wire.Sweeper().Stop()

			go func() {
				sig := make(chan os.Signal, 1)
				signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
				<-sig
				cancel()
			}()

			wire.Worker().Start(ctx)
			return nil
		},
	}

	return cmd
}
