package harness

import (
	"errors"

	"github.com/roach88/chronicle/internal/codec"
	"github.com/roach88/chronicle/internal/schema"
	"github.com/roach88/chronicle/internal/store"
	"github.com/roach88/chronicle/internal/vcs"
)

// Outcome codes used in scenario expectations and traces.
// Each maps to one typed error in the store's taxonomy.
const (
	CodeOK               = "ok"
	CodeRecordExists     = "record_exists"
	CodeRecordNotFound   = "record_not_found"
	CodeTableNotFound    = "table_not_found"
	CodeRevisionNotFound = "revision_not_found"
	CodeMalformedTable   = "malformed_table"
	CodeSchemaViolation  = "schema_violation"
	CodeInvalidName      = "invalid_name"
	CodeBackend          = "backend"
	CodeUnknown          = "unknown"
)

// outcomeCode maps an operation result to its stable code.
func outcomeCode(err error) string {
	switch {
	case err == nil:
		return CodeOK
	case store.IsRecordExists(err):
		return CodeRecordExists
	case store.IsRecordNotFound(err):
		return CodeRecordNotFound
	case store.IsInvalidName(err):
		return CodeInvalidName
	case vcs.IsTableNotFound(err):
		return CodeTableNotFound
	case vcs.IsRevisionNotFound(err):
		return CodeRevisionNotFound
	case codec.IsMalformedTable(err):
		return CodeMalformedTable
	case schema.IsViolation(err):
		return CodeSchemaViolation
	case vcs.IsBackend(err) || errors.Is(err, vcs.ErrNoHistory):
		return CodeBackend
	default:
		return CodeUnknown
	}
}
