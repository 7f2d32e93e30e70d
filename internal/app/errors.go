package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNoSource   = errors.New("no match source configured")
	ErrNotStarted = errors.New("service not started")
)
