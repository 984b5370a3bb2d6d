package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/chronicle/internal/audit"
	"github.com/roach88/chronicle/internal/codec"
	"github.com/roach88/chronicle/internal/schema"
	"github.com/roach88/chronicle/internal/store"
	"github.com/roach88/chronicle/internal/vcs"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	RepoPath  string
	Format    string // "json" | "text"
	Codec     string // "json" | "yaml"
	AuditPath string // optional audit database path
	SchemaDir string // optional directory of per-table CUE schemas
	Author    string
	Email     string
	Verbose   bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// ValidCodecs defines the allowed table codecs.
var ValidCodecs = []string{"json", "yaml"}

// NewRootCommand creates the root command for the chronicle CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "chronicle",
		Short: "chronicle - a git-backed versioned record store",
		Long: `A record store whose durability and history live in a git repository.

Each table is one serialized file; every create, update, or delete is
captured as exactly one commit, so any record can be read back as of
any revision.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if !contains(ValidCodecs, opts.Codec) {
				return fmt.Errorf("invalid codec %q: must be one of %v", opts.Codec, ValidCodecs)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.RepoPath, "repo", ".", "path to the data repository")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Codec, "codec", "json", "table codec (json|yaml)")
	cmd.PersistentFlags().StringVar(&opts.AuditPath, "audit", "", "record mutations to a SQLite audit log at this path")
	cmd.PersistentFlags().StringVar(&opts.SchemaDir, "schema-dir", "", "directory of per-table CUE schemas (<table>.cue)")
	cmd.PersistentFlags().StringVar(&opts.Author, "author", "", "commit author name")
	cmd.PersistentFlags().StringVar(&opts.Email, "email", "", "commit author email")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	cmd.AddCommand(NewCreateCommand(opts))
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewSetCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewLogCommand(opts))
	cmd.AddCommand(NewAuditCommand(opts))

	return cmd
}

func contains(valid []string, v string) bool {
	for _, s := range valid {
		if s == v {
			return true
		}
	}
	return false
}

// openStore builds a Store from the global options. The returned
// closer releases the audit database when one was opened.
func openStore(opts *RootOptions) (*store.Store, func() error, error) {
	var backendOpts []vcs.GitOption
	if opts.Author != "" || opts.Email != "" {
		backendOpts = append(backendOpts, vcs.WithAuthor(opts.Author, opts.Email))
	}

	backend, err := vcs.Open(opts.RepoPath, backendOpts...)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "open repository", err)
	}

	storeOpts := []store.Option{}
	switch opts.Codec {
	case "yaml":
		storeOpts = append(storeOpts, store.WithCodec(codec.YAML{}))
	default:
		storeOpts = append(storeOpts, store.WithCodec(codec.JSON{}))
	}

	if opts.SchemaDir != "" {
		reg, err := schema.LoadDir(opts.SchemaDir)
		if err != nil {
			return nil, nil, WrapExitError(ExitCommandError, "load schemas", err)
		}
		storeOpts = append(storeOpts, store.WithSchemas(reg))
	}

	closer := func() error { return nil }
	if opts.AuditPath != "" {
		log, err := audit.Open(opts.AuditPath)
		if err != nil {
			return nil, nil, WrapExitError(ExitCommandError, "open audit log", err)
		}
		storeOpts = append(storeOpts, store.WithObserver(audit.NewRecorder(log)))
		closer = log.Close
	}

	if opts.Verbose {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		storeOpts = append(storeOpts, store.WithLogger(logger))
	}

	return store.New(backend, storeOpts...), closer, nil
}
