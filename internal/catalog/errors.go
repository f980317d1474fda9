package catalog

import (
	"errors"
	"fmt"
)

// Sentinel errors for catalog API operations.
var (
	ErrNotFound    = errors.New("catalog: not found")
	ErrRateLimited = errors.New("catalog: rate limited by server")
	ErrBadRequest  = errors.New("catalog: bad request")
	ErrServer      = errors.New("catalog: server error")
)

// Error wraps an underlying error with operation context.
type Error struct {
	Op      string // Operation: "search", "lookupProject"
	Project string // If applicable
	Err     error
}

func (e *Error) Error() string {
	if e.Project != "" {
		return fmt.Sprintf("catalog %s [%s]: %v", e.Op, e.Project, e.Err)
	}
	return fmt.Sprintf("catalog %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// wrapError creates an Error with context.
func wrapError(op, project string, err error) error {
	return &Error{
		Op:      op,
		Project: project,
		Err:     err,
	}
}

// IsTransient reports whether an error from the client is worth retrying:
// server-side failures, rate limiting, and transport errors. A clean
// "not found" or a malformed request is never transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrBadRequest) {
		return false
	}
	return true
}
