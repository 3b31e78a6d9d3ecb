package recengine

import (
	"errors"
	"fmt"
)

// Sentinel errors for recommendation engine operations.
var (
	ErrBadRequest  = errors.New("recengine: bad request")
	ErrServer      = errors.New("recengine: engine error")
	ErrUnavailable = errors.New("recengine: engine unreachable")
	ErrMalformed   = errors.New("recengine: malformed payload")
)

// Error wraps an underlying error with operation context.
type Error struct {
	Op  string // Operation: "recommend", "health"
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("recengine %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrapError(op string, err error) error {
	return &Error{Op: op, Err: err}
}
