package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/roach88/chronicle/internal/document"
)

// GetOptions holds flags for the get command.
type GetOptions struct {
	*RootOptions
	At string
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "get <table> <id>",
		Short: "Read a record, optionally at a historical revision",
		Long: `Read a record's document.

With --at, the record is read exactly as committed at that revision;
any revision expression git understands is accepted (full or
abbreviated hashes, HEAD, HEAD~2).

Example:
  chronicle get users user1 --at HEAD~1`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.At, "at", "", "read at this revision instead of the working copy")

	return cmd
}

func runGet(opts *GetOptions, table, id string, cmd *cobra.Command) error {
	s, closer, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer closer()

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	value, err := s.ReadRecordAt(table, id, opts.At)
	if err != nil {
		return f.OperationError(err)
	}

	plain := document.Interface(value)
	pretty, err := json.MarshalIndent(plain, "", "  ")
	if err != nil {
		return WrapExitError(ExitCommandError, "encode document", err)
	}

	return f.Success(string(pretty), plain)
}
