package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/archivist/internal/ports/primary"
	"github.com/example/archivist/internal/wire"
)

// RegisterCmd returns the register command
func RegisterCmd() *cobra.Command {
	var (
		initiator string
		topicID   string
		title     string
		category  string
		tags      []string
	)

	cmd := &cobra.Command{
		Use:   "register [channel-id]",
		Short: "Register a channel for archival",
		Long: `Register a channel for archival into a destination topic.

The channel is frozen (read_only) immediately and a background job migrates
its messages in batches. Supply either --topic to append to an existing
topic, or --title (with optional --category and --tags) to create one.

Examples:
  archivist register CH-042 --initiator alice --title "Launch retrospective"
  archivist register CH-042 --initiator alice --topic TOP-007
  archivist register CH-042 -i alice --title "2024 general" --category history --tags general,2024`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			channelID := args[0]

			archive, err := wire.ArchiveService().Register(ctx, primary.RegisterArchiveRequest{
				ChannelID:       channelID,
				InitiatedBy:     initiator,
				ExistingTopicID: topicID,
				TopicTitle:      title,
				TopicCategory:   category,
				TopicTags:       tags,
			})
			if err != nil {
				return fmt.Errorf("failed to register archive: %w", err)
			}

			fmt.Printf("✓ Registered archive %s for channel %s (%d messages)\n",
				archive.ID, archive.ChannelID, archive.TotalMessages)
			fmt.Printf("  Run `archivist status %s` to follow progress.\n", archive.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&initiator, "initiator", "i", "", "actor registering the archive (required)")
	cmd.Flags().StringVar(&topicID, "topic", "", "existing destination topic ID")
	cmd.Flags().StringVar(&title, "title", "", "title for a new destination topic")
	cmd.Flags().StringVar(&category, "category", "", "category for a new destination topic")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "tags for a new destination topic")
	_ = cmd.MarkFlagRequired("initiator")

	return cmd
}
