package codec

import (
	"errors"
	"fmt"

	"github.com/roach88/chronicle/internal/document"
)

// Codec converts between a table mapping and its on-disk byte form.
//
// Name doubles as the table file extension, so switching codecs on an
// existing repository addresses different files rather than silently
// misreading old ones.
type Codec interface {
	Name() string
	Encode(table document.Object) ([]byte, error)
	Decode(data []byte) (document.Object, error)
}

// MalformedTableError indicates a table file that is not valid
// serialized data, or whose top level is not a mapping of documents.
type MalformedTableError struct {
	Format string // codec name ("json", "yaml")
	Reason string
	Err    error // underlying parse error, if any
}

// Error implements the error interface.
func (e *MalformedTableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed %s table: %s: %v", e.Format, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed %s table: %s", e.Format, e.Reason)
}

func (e *MalformedTableError) Unwrap() error {
	return e.Err
}

// IsMalformedTable returns true if the error is a MalformedTableError.
// Uses errors.As to handle wrapped errors.
func IsMalformedTable(err error) bool {
	var me *MalformedTableError
	return errors.As(err, &me)
}
