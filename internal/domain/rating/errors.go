package rating

import (
	"errors"
	"fmt"
)

// Sentinel kinds for rating errors.
var (
	ErrInvalidRecord = errors.New("invalid match record")
)

// InvalidRecordError reports a match record that cannot be rated.
// Index is the 0-based position of the record in the input sequence.
type InvalidRecordError struct {
	Index  int
	Reason string
}

func (e *InvalidRecordError) Error() string {
	return fmt.Sprintf("%s at position %d: %s", ErrInvalidRecord, e.Index, e.Reason)
}

// Unwrap allows errors.Is(err, ErrInvalidRecord).
func (e *InvalidRecordError) Unwrap() error { return ErrInvalidRecord }
