package igdb

import (
	"errors"
	"fmt"
)

// Sentinel errors for IGDB API operations.
var (
	ErrTokenExpired = errors.New("igdb: access token expired")
	ErrRateLimited  = errors.New("igdb: rate limited by server")
	ErrBadRequest   = errors.New("igdb: bad request")
	ErrServer       = errors.New("igdb: server error")
)

// Error wraps an underlying error with operation context.
type Error struct {
	Op    string // Operation: "token", "search"
	Query string // Search text, if applicable
	Err   error
}

func (e *Error) Error() string {
	if e.Query != "" {
		return fmt.Sprintf("igdb %s %q: %v", e.Op, e.Query, e.Err)
	}
	return fmt.Sprintf("igdb %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// wrapError creates an Error with context.
func wrapError(op, query string, err error) error {
	return &Error{Op: op, Query: query, Err: err}
}
