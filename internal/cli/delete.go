package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <table> <id>",
		Short: "Delete a record",
		Long: `Delete a record and commit the removal as one revision.

The record leaves no tombstone in the table; it remains readable at
earlier revisions with 'chronicle get --at'.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(rootOpts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runDelete(opts *RootOptions, table, id string, cmd *cobra.Command) error {
	s, closer, err := openStore(opts)
	if err != nil {
		return err
	}
	defer closer()

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	rev, err := s.DeleteRecord(table, id)
	if err != nil {
		return f.OperationError(err)
	}

	return f.Success(
		fmt.Sprintf("deleted %s in %s at %s", id, table, rev),
		map[string]string{"table": table, "id": id, "revision": rev},
	)
}
