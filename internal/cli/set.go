package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// SetOptions holds flags for the set command.
type SetOptions struct {
	*RootOptions
	Data     string
	DataFile string
}

// NewSetCommand creates the set command.
func NewSetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "set <table> <id>",
		Short: "Replace an existing record's document",
		Long: `Replace an existing record's document in full and commit one revision.

The new document replaces the old one entirely; there is no merge.
Fails if the id does not exist - use create for new records.

Example:
  chronicle set users user1 --data '{"name":"Alice","age":31}'`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSet(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Data, "data", "", "record document as JSON")
	cmd.Flags().StringVar(&opts.DataFile, "data-file", "", "file containing the record document as JSON")

	return cmd
}

func runSet(opts *SetOptions, table, id string, cmd *cobra.Command) error {
	doc, err := parseData(opts.Data, opts.DataFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "set", err)
	}

	s, closer, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer closer()

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	rev, err := s.UpdateRecord(table, id, doc)
	if err != nil {
		return f.OperationError(err)
	}

	return f.Success(
		fmt.Sprintf("updated %s in %s at %s", id, table, rev),
		map[string]string{"table": table, "id": id, "revision": rev},
	)
}
