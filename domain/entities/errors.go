package entities

import (
	"errors"
	"fmt"
	"time"
)

// ErrElementNotFound is returned when a locator matches no element at query time.
var ErrElementNotFound = errors.New("element not found")

// ErrStaleElement is returned when a resolved element was detached from the DOM
// before it could be queried.
var ErrStaleElement = errors.New("stale element reference")

// PageNotReadyError is returned when a page does not reach its ready state in time.
type PageNotReadyError struct {
	Page      string
	Condition string
	Timeout   time.Duration
}

func (e *PageNotReadyError) Error() string {
	return fmt.Sprintf("page %q not ready after %s: %s", e.Page, e.Timeout, e.Condition)
}

// SessionError wraps a transport or session failure of the underlying browser driver.
type SessionError struct {
	Op  string
	Err error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("session error during %s: %v", e.Op, e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

// NewSessionError wraps err as a SessionError unless it already is one
func NewSessionError(op string, err error) error {
	if err == nil {
		return nil
	}
	var sessionErr *SessionError
	if errors.As(err, &sessionErr) {
		return err
	}
	return &SessionError{Op: op, Err: err}
}
