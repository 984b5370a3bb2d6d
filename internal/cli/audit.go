package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/chronicle/internal/audit"
)

// AuditOptions holds flags for the audit command.
type AuditOptions struct {
	*RootOptions
	Limit int
}

// auditEntry is the JSON shape of one audit log entry.
type auditEntry struct {
	Seq       int64  `json:"seq"`
	Op        string `json:"op"`
	Table     string `json:"table"`
	Record    string `json:"record"`
	Revision  string `json:"revision"`
	ValueHash string `json:"value_hash,omitempty"`
	Time      string `json:"time"`
}

// NewAuditCommand creates the audit command.
func NewAuditCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AuditOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "audit <table>",
		Short: "Query the mutation audit log",
		Long: `Query the SQLite audit log for a table's mutations, newest first.

Requires --audit pointing at the log that mutations were recorded to.
The audit log is derived data; the repository history remains the
source of truth.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum entries to show (0 = all)")

	return cmd
}

func runAudit(opts *AuditOptions, table string, cmd *cobra.Command) error {
	if opts.AuditPath == "" {
		return WrapExitError(ExitCommandError, "audit",
			fmt.Errorf("--audit is required for this command"))
	}

	log, err := audit.Open(opts.AuditPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "open audit log", err)
	}
	defer log.Close()

	entries, err := log.List(cmd.Context(), table, opts.Limit)
	if err != nil {
		return WrapExitError(ExitFailure, "query audit log", err)
	}

	out := make([]auditEntry, len(entries))
	lines := make([]string, len(entries))
	for i, e := range entries {
		out[i] = auditEntry{
			Seq:       e.Seq,
			Op:        string(e.Op),
			Table:     e.Table,
			Record:    e.Record,
			Revision:  e.Revision,
			ValueHash: e.ValueHash,
			Time:      e.Time.UTC().Format(time.RFC3339),
		}
		lines[i] = fmt.Sprintf("%d  %-6s  %s/%s  %.8s  %s",
			e.Seq, e.Op, e.Table, e.Record, e.Revision, out[i].Time)
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return f.Success(strings.Join(lines, "\n"), out)
}
