package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/archivist/internal/wire"
)

// RunCmd returns the run command
func RunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [archive-id]",
		Short: "Run an archive in the foreground",
		Long: `Run (or resume) an archive pipeline synchronously, without the worker.

Useful for retrying a failed archive by hand or for single-shot setups
without a background worker. Resumes from the last committed batch.

Examples:
  archivist run ARC-001`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			archiveID := args[0]

			if err := wire.ArchiveService().Execute(ctx, archiveID); err != nil {
				return fmt.Errorf("failed to run archive: %w", err)
			}

			archive, err := wire.ArchiveService().GetArchive(ctx, archiveID)
			if err != nil {
				return fmt.Errorf("failed to load archive: %w", err)
			}

			fmt.Printf("✓ Archive %s finished in state %s (%d/%d messages)\n",
				archive.ID, archive.State, archive.ArchivedMessages, archive.TotalMessages)
			if archive.LastError != "" {
				fmt.Printf("  Last error: %s\n", archive.LastError)
			}
			return nil
		},
	}

	return cmd
}
