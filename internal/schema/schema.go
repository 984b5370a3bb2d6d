// Package schema provides optional per-table document validation.
//
// A table may have a CUE schema; when one is registered, create and
// update validate the candidate document against it before anything is
// written, so a violating document never reaches the history. Tables
// without a schema accept any document, which is the store's default
// behavior.
//
// Uses the CUE SDK's Go API directly (not CLI subprocess): the schema
// is compiled once, and each candidate document is encoded into the
// same context and unified with it.
package schema

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/roach88/chronicle/internal/document"
)

// Schema is a compiled CUE schema for one table's documents.
type Schema struct {
	name  string
	value cue.Value
}

// CompileError indicates CUE source that failed to compile.
type CompileError struct {
	Name    string // schema name (table)
	Message string
	Err     error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("schema %q: %s", e.Name, e.Message)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// ViolationError indicates a document that does not satisfy its
// table's schema. The triggering create/update aborts before any
// write, leaving working copy and history untouched.
type ViolationError struct {
	Schema  string
	Message string
	Err     error
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("document violates schema %q: %s", e.Schema, e.Message)
}

func (e *ViolationError) Unwrap() error {
	return e.Err
}

// IsViolation returns true if the error is a ViolationError.
// Uses errors.As to handle wrapped errors.
func IsViolation(err error) bool {
	var ve *ViolationError
	return errors.As(err, &ve)
}

// Compile compiles CUE source into a Schema.
func Compile(name, source string) (*Schema, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(source, cue.Filename(name+".cue"))
	if err := v.Err(); err != nil {
		return nil, &CompileError{
			Name:    name,
			Message: cueerrors.Details(err, nil),
			Err:     err,
		}
	}
	return &Schema{name: name, value: v}, nil
}

// Name returns the schema's name (the table it validates).
func (s *Schema) Name() string {
	return s.name
}

// Validate checks a document against the schema. Returns nil when the
// document unifies with the schema as a concrete value.
func (s *Schema) Validate(doc document.Value) error {
	ctx := s.value.Context()

	dv := ctx.Encode(document.Interface(doc))
	if err := dv.Err(); err != nil {
		return &ViolationError{Schema: s.name, Message: err.Error(), Err: err}
	}

	unified := s.value.Unify(dv)
	if err := unified.Validate(cue.Concrete(true), cue.Final()); err != nil {
		return &ViolationError{
			Schema:  s.name,
			Message: cmp.Or(strings.TrimSpace(cueerrors.Details(err, nil)), err.Error()),
			Err:     err,
		}
	}
	return nil
}

// Registry maps table names to compiled schemas.
// A nil *Registry validates nothing and is safe to use.
type Registry struct {
	schemas map[string]*Schema
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]*Schema)}
}

// Register adds or replaces the schema for a table.
func (r *Registry) Register(table string, s *Schema) {
	r.schemas[table] = s
}

// Lookup returns the schema registered for a table, if any.
func (r *Registry) Lookup(table string) (*Schema, bool) {
	if r == nil {
		return nil, false
	}
	s, ok := r.schemas[table]
	return s, ok
}

// LoadDir compiles every *.cue file in dir into a Registry. The file's
// base name (without extension) is the table it validates, e.g.
// users.cue validates the "users" table.
func LoadDir(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read schema directory: %w", err)
	}

	r := NewRegistry()
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".cue" {
			continue
		}
		table := strings.TrimSuffix(entry.Name(), ".cue")

		source, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", entry.Name(), err)
		}

		s, err := Compile(table, string(source))
		if err != nil {
			return nil, err
		}
		r.Register(table, s)
	}
	return r, nil
}
