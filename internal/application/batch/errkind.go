package batch

import (
	"context"
	"errors"
	"net"

	"seqtag/internal/application"
	"seqtag/internal/ports"
)

// ErrorKind classifies why a single mutation failed
type ErrorKind int

const (
	KindUnknown     ErrorKind = iota
	KindNotFound              // owner or item does not exist
	KindConflict              // store rejected a concurrent or duplicate change
	KindValidation            // request was malformed
	KindUnavailable           // store could not be reached or timed out
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not-found"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation"
	case KindUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Classify maps a collaborator error onto an ErrorKind
func Classify(err error) ErrorKind {
	var valErr *application.ValidationError
	var netErr net.Error

	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ports.ErrNotFound):
		return KindNotFound
	case errors.Is(err, ports.ErrConflict):
		return KindConflict
	case errors.Is(err, ports.ErrInvalid), errors.As(err, &valErr):
		return KindValidation
	case errors.Is(err, ports.ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr):
		return KindUnavailable
	default:
		return KindUnknown
	}
}
