package ports

import "errors"

// Errors reported by store adapters. Adapters wrap them with context;
// callers match with errors.Is.
var (
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrInvalid        = errors.New("invalid request")
	ErrAlreadyApplied = errors.New("already applied")
	ErrUnavailable    = errors.New("store unavailable")
)
