package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/archivist/internal/wire"
)

// NoticesCmd returns the notices command
func NoticesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notices [recipient]",
		Short: "List notices sent to an actor",
		Long: `List the private notices the pipeline sent to an actor: completion
reports and failure reports for archives they initiated.

Examples:
  archivist notices alice`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			recipient := args[0]

			notices, err := wire.ArchiveService().ListNotices(ctx, recipient)
			if err != nil {
				return fmt.Errorf("failed to list notices: %w", err)
			}

			if len(notices) == 0 {
				fmt.Printf("No notices for %s.\n", recipient)
				return nil
			}

			for _, n := range notices {
				marker := " "
				if !n.Read {
					marker = "*"
				}
				fmt.Printf("%s %s  %s\n", marker, n.CreatedAt, n.Subject)
				fmt.Printf("    %s\n", n.Body)
			}
			return nil
		},
	}

	return cmd
}
