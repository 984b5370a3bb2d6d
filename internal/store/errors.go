package store

import (
	"errors"
	"fmt"
)

// RecordExistsError indicates a create for an id already present in
// the table's current mapping.
type RecordExistsError struct {
	Table  string
	Record string
}

// Error implements the error interface.
func (e *RecordExistsError) Error() string {
	return fmt.Sprintf("record %q already exists in table %q", e.Record, e.Table)
}

// RecordNotFoundError indicates a read, update, or delete for an id
// absent from the table's mapping. Revision is set when the lookup was
// against an explicit historical revision.
type RecordNotFoundError struct {
	Table    string
	Record   string
	Revision string
}

// Error implements the error interface.
func (e *RecordNotFoundError) Error() string {
	if e.Revision != "" {
		return fmt.Sprintf("record %q not found in table %q at revision %q", e.Record, e.Table, e.Revision)
	}
	return fmt.Sprintf("record %q not found in table %q", e.Record, e.Table)
}

// InvalidNameError indicates a table or record name the store refuses
// to use. Table names become file names in the backend's working tree,
// so path separators and traversal sequences are rejected up front.
type InvalidNameError struct {
	Kind   string // "table" or "record"
	Name   string
	Reason string
}

// Error implements the error interface.
func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid %s name %q: %s", e.Kind, e.Name, e.Reason)
}

// IsRecordExists returns true if the error is a RecordExistsError.
// Uses errors.As to handle wrapped errors.
func IsRecordExists(err error) bool {
	var re *RecordExistsError
	return errors.As(err, &re)
}

// IsRecordNotFound returns true if the error is a RecordNotFoundError.
func IsRecordNotFound(err error) bool {
	var re *RecordNotFoundError
	return errors.As(err, &re)
}

// IsInvalidName returns true if the error is an InvalidNameError.
func IsInvalidName(err error) bool {
	var ie *InvalidNameError
	return errors.As(err, &ie)
}
