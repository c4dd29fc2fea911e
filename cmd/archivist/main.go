package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/archivist/internal/cli"
	"github.com/example/archivist/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "archivist",
		Short:   "Archivist - channel-to-topic archive pipeline",
		Version: version.String(),
		Long: `Archivist converts ephemeral chat channels into durable, paginated topics.
A registered channel is frozen, its messages are migrated batch by batch into
posts, and reactions, attachments, revisions, and webhook events follow them.`,
	}

	// Add subcommands
	rootCmd.AddCommand(cli.RegisterCmd())
	rootCmd.AddCommand(cli.RunCmd())
	rootCmd.AddCommand(cli.StatusCmd())
	rootCmd.AddCommand(cli.NoticesCmd())
	rootCmd.AddCommand(cli.WorkerCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
