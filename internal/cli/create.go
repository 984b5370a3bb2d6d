package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// CreateOptions holds flags for the create command.
type CreateOptions struct {
	*RootOptions
	Data     string
	DataFile string
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create <table> [id]",
		Short: "Create a new record",
		Long: `Create a new record and commit it as one revision.

Fails if the id already exists. When id is omitted a time-ordered
UUID is generated.

Example:
  chronicle create users user1 --data '{"name":"Alice","age":30}'`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) > 1 {
				id = args[1]
			} else {
				id = uuid.Must(uuid.NewV7()).String()
			}
			return runCreate(opts, args[0], id, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Data, "data", "", "record document as JSON")
	cmd.Flags().StringVar(&opts.DataFile, "data-file", "", "file containing the record document as JSON")

	return cmd
}

func runCreate(opts *CreateOptions, table, id string, cmd *cobra.Command) error {
	doc, err := parseData(opts.Data, opts.DataFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "create", err)
	}

	s, closer, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer closer()

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	rev, err := s.CreateRecord(table, id, doc)
	if err != nil {
		return f.OperationError(err)
	}

	return f.Success(
		fmt.Sprintf("created %s in %s at %s", id, table, rev),
		map[string]string{"table": table, "id": id, "revision": rev},
	)
}
