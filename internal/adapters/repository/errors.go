package repository

import "errors"

// Sentinel kinds for ranking lookups.
var (
	ErrNotFound     = errors.New("player not found")
	ErrInvalidLimit = errors.New("invalid rankings limit")
	ErrNoSnapshot   = errors.New("no ranking published yet")
)
