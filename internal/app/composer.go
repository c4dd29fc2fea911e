package app

import (
	"fmt"
	"strings"

	"github.com/example/archivist/internal/ports/secondary"
)

// ComposePostBody renders one destination post from a batch of messages.
// Each message becomes a standalone block carrying its identity, author,
// original timestamp, and a summary of the reactions it held at migration
// time. The blocks keep the channel's total order.
func ComposePostBody(messages []*secondary.MessageRecord, reactions map[string][]secondary.ReactionCount) string {
	var b strings.Builder

	for i, msg := range messages {
		if i > 0 {
			b.WriteString("\n\n")
		}

		fmt.Fprintf(&b, "[message id=%s author=%s time=%s standalone=true]\n", msg.ID, msg.Author, msg.CreatedAt)
		b.WriteString(msg.Body)

		if counts := reactions[msg.ID]; len(counts) > 0 {
			b.WriteString("\nreactions:")
			for _, rc := range counts {
				fmt.Fprintf(&b, " %s x%d", rc.Emoji, rc.Count)
			}
		}

		b.WriteString("\n[/message]")
	}

	return b.String()
}
