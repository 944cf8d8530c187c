package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/zhubert/parley/internal/conversations"
	"github.com/zhubert/parley/internal/store"
)

var conversationsCmd = &cobra.Command{
	Use:     "conversations",
	Aliases: []string{"ls"},
	Short:   "List conversations without opening the TUI",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, client, _, err := connect()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.GetRequestTimeout())
		defer cancel()
		return listConversations(ctx, cmd.OutOrStdout(), client, time.Now())
	},
}

func init() {
	rootCmd.AddCommand(conversationsCmd)
}

// listConversations prints one line per conversation, newest first as
// the service returns them.
func listConversations(ctx context.Context, w io.Writer, s store.Store, now time.Time) error {
	summaries, err := s.ListConversations(ctx)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No conversations.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, sum := range summaries {
		title := sum.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", conversations.FormatSummaryDate(sum.UpdatedAt, now), title, sum.ID)
	}
	return tw.Flush()
}
