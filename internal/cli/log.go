package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// LogOptions holds flags for the log command.
type LogOptions struct {
	*RootOptions
	Limit int
}

// logEntry is the JSON shape of one history entry.
type logEntry struct {
	Revision string `json:"revision"`
	Parent   string `json:"parent,omitempty"`
	Message  string `json:"message"`
	Author   string `json:"author"`
	Email    string `json:"email"`
	Time     string `json:"time"`
}

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "log <table>",
		Short: "Show a table's revision history",
		Long: `Show the revisions that touched a table, newest first.

Each mutation through the store is exactly one revision, so this is
the table's complete change log.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLog(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum entries to show (0 = all)")

	return cmd
}

func runLog(opts *LogOptions, table string, cmd *cobra.Command) error {
	s, closer, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer closer()

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	revs, err := s.History(table)
	if err != nil {
		return f.OperationError(err)
	}
	if opts.Limit > 0 && len(revs) > opts.Limit {
		revs = revs[:opts.Limit]
	}

	entries := make([]logEntry, len(revs))
	lines := make([]string, len(revs))
	for i, rev := range revs {
		entries[i] = logEntry{
			Revision: rev.ID,
			Parent:   rev.Parent,
			Message:  strings.TrimSpace(rev.Message),
			Author:   rev.Author,
			Email:    rev.Email,
			Time:     rev.Time.UTC().Format(time.RFC3339),
		}
		lines[i] = fmt.Sprintf("%.8s  %s  (%s, %s)",
			rev.ID, entries[i].Message, rev.Author, entries[i].Time)
	}

	return f.Success(strings.Join(lines, "\n"), entries)
}
