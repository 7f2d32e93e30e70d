package storage

import (
	"errors"
	"fmt"
)

// Sentinel kinds for storage errors.
var (
	ErrMissingColumn   = errors.New("missing column")
	ErrMalformedRow    = errors.New("malformed row")
	ErrInvalidTable    = errors.New("invalid table name")
	ErrUnsupportedKind = errors.New("unsupported storage kind")
)

var errEmptyCell = errors.New("empty cell")

// RowError reports a source row that could not be converted to a match record.
type RowError struct {
	Row    int // 1-based, as the backend numbers its rows
	Column string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s %d, column %s: %v", ErrMalformedRow, e.Row, e.Column, e.Err)
}

// Is reports ErrMalformedRow as the kind of every RowError.
func (e *RowError) Is(target error) bool { return target == ErrMalformedRow }

func (e *RowError) Unwrap() error { return e.Err }
