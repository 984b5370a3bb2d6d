package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	At string
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list <table>",
		Short: "List record ids in a table",
		Long: `List the record ids in a table, sorted.

With --at, lists the table exactly as committed at that revision.
An unknown table lists as empty.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.At, "at", "", "list at this revision instead of the working copy")

	return cmd
}

func runList(opts *ListOptions, table string, cmd *cobra.Command) error {
	s, closer, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer closer()

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	ids, err := s.ListRecordsAt(table, opts.At)
	if err != nil {
		return f.OperationError(err)
	}

	return f.Success(strings.Join(ids, "\n"), ids)
}
