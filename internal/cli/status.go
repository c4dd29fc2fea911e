package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/archivist/internal/core/archive"
	"github.com/example/archivist/internal/wire"
)

// StatusCmd returns the status command
func StatusCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "status [archive-id]",
		Short: "Show archive progress",
		Long: `Show the progress of one archive, or list recent archives.

Examples:
  archivist status
  archivist status ARC-001`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			if len(args) == 1 {
				return showArchive(ctx, args[0])
			}
			return listArchives(ctx, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum archives to list")

	return cmd
}

func showArchive(ctx context.Context, archiveID string) error {
	a, err := wire.ArchiveService().GetArchive(ctx, archiveID)
	if err != nil {
		return fmt.Errorf("failed to load archive: %w", err)
	}

	fmt.Printf("Archive %s [%s]\n", a.ID, stateColor(a.State).Sprint(a.State))
	fmt.Printf("  Channel:   %s\n", a.ChannelID)
	fmt.Printf("  Initiator: %s\n", a.InitiatedBy)
	fmt.Printf("  Progress:  %d/%d messages\n", a.ArchivedMessages, a.TotalMessages)
	if a.DestinationTopicID != "" {
		created := "existing"
		if a.TopicCreated {
			created = "created"
		}
		fmt.Printf("  Topic:     %s (%s)\n", a.DestinationTopicID, created)
	}
	if a.LastError != "" {
		fmt.Printf("  Last error: %s\n", color.New(color.FgRed).Sprint(a.LastError))
	}
	return nil
}

func listArchives(ctx context.Context, limit int) error {
	archives, err := wire.ArchiveService().ListArchives(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list archives: %w", err)
	}

	if len(archives) == 0 {
		fmt.Println("No archives registered.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCHANNEL\tSTATE\tPROGRESS\tTOPIC")
	for _, a := range archives {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%s\n",
			a.ID, a.ChannelID, stateColor(a.State).Sprint(a.State),
			a.ArchivedMessages, a.TotalMessages, a.DestinationTopicID)
	}
	return w.Flush()
}

func stateColor(state string) *color.Color {
	switch state {
	case archive.StateComplete:
		return color.New(color.FgHiGreen)
	case archive.StateFailed:
		return color.New(color.FgRed)
	case archive.StateArchiving:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgHiBlue)
	}
}
