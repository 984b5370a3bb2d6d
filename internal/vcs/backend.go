package vcs

import (
	"errors"
	"fmt"
	"time"
)

// Revision describes one immutable snapshot in the backend's history.
type Revision struct {
	// ID is the content-derived revision identifier (a git commit hash).
	ID string

	// Parent is the preceding revision's ID, empty for the first revision.
	Parent string

	// Message is the human-readable description recorded with the revision.
	Message string

	// Author and Email identify who recorded the revision.
	Author string
	Email  string

	// Time is when the revision was recorded.
	Time time.Time
}

// Backend is the contract the store engine consumes from the
// version-control system.
//
// Commit is atomic: a new revision becomes visible only once the whole
// write succeeds, and a failed Commit leaves both the working copy and
// the history graph unchanged from the caller's perspective.
type Backend interface {
	// ReadWorking returns the current working-copy content of a table
	// file. Returns TableNotFoundError if the file does not exist.
	ReadWorking(path string) ([]byte, error)

	// ReadAt returns the content of a table file as committed at the
	// given revision. Returns RevisionNotFoundError if the revision does
	// not resolve, TableNotFoundError if the file is absent from that
	// revision's tree.
	ReadAt(path, revision string) ([]byte, error)

	// Commit replaces the working copy of a table file and records one
	// new revision with the given message, returning its ID.
	Commit(path string, data []byte, message string) (string, error)

	// Head returns the current head revision ID.
	// Returns ErrNoHistory if no revision has been recorded yet.
	Head() (string, error)

	// Log returns the revisions that touched a table file, newest first.
	Log(path string) ([]Revision, error)
}

// ErrNoHistory indicates a repository with no revisions yet.
var ErrNoHistory = errors.New("no revisions recorded yet")

// RevisionNotFoundError indicates a revision identifier that does not
// resolve in the backend's history graph.
type RevisionNotFoundError struct {
	Revision string
	Err      error
}

func (e *RevisionNotFoundError) Error() string {
	return fmt.Sprintf("revision %q not found", e.Revision)
}

func (e *RevisionNotFoundError) Unwrap() error {
	return e.Err
}

// TableNotFoundError indicates a table file absent from the working
// copy (Revision empty) or from a specific revision's tree.
type TableNotFoundError struct {
	Path     string
	Revision string
	Err      error
}

func (e *TableNotFoundError) Error() string {
	if e.Revision != "" {
		return fmt.Sprintf("table file %q not found at revision %q", e.Path, e.Revision)
	}
	return fmt.Sprintf("table file %q not found", e.Path)
}

func (e *TableNotFoundError) Unwrap() error {
	return e.Err
}

// BackendError indicates an I/O or repository failure underneath one of
// the backend operations.
type BackendError struct {
	Op  string // "write", "stage", "commit", "head", "log", "read"
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %s failed: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// IsRevisionNotFound returns true if the error is a RevisionNotFoundError.
// Uses errors.As to handle wrapped errors.
func IsRevisionNotFound(err error) bool {
	var re *RevisionNotFoundError
	return errors.As(err, &re)
}

// IsTableNotFound returns true if the error is a TableNotFoundError.
func IsTableNotFound(err error) bool {
	var te *TableNotFoundError
	return errors.As(err, &te)
}

// IsBackend returns true if the error is a BackendError.
func IsBackend(err error) bool {
	var be *BackendError
	return errors.As(err, &be)
}
