package googlebooks

import (
	"errors"
	"fmt"
)

// Sentinel errors for Google Books API operations. The client always
// surfaces failures to the caller; nothing is swallowed into nil results.
var (
	ErrNotFound    = errors.New("googlebooks: not found")
	ErrRateLimited = errors.New("googlebooks: rate limited by server")
	ErrBadRequest  = errors.New("googlebooks: bad request")
	ErrServer      = errors.New("googlebooks: server error")
	ErrUnavailable = errors.New("googlebooks: provider unreachable")
	ErrMalformed   = errors.New("googlebooks: malformed payload")
)

// Error wraps an underlying error with operation context.
type Error struct {
	Op  string // Operation: "search", "lookupISBN", "lookupID"
	Key string // Query, ISBN, or volume id
	Err error
}

func (e *Error) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("googlebooks %s [%s]: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("googlebooks %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// wrapError creates an Error with context.
func wrapError(op, key string, err error) error {
	return &Error{Op: op, Key: key, Err: err}
}
