package client

import (
	"errors"
	"fmt"
)

// MissingSessionError is returned when a session-scoped call is made while
// no session id is live. It is a precondition violation raised before any
// request leaves the process, never a network failure in disguise.
type MissingSessionError struct {
	Call string
}

func (e *MissingSessionError) Error() string {
	return fmt.Sprintf("%s: no verification session started", e.Call)
}

// TransportError means the collaborator could not be reached at all.
type TransportError struct {
	Call string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: collaborator unreachable: %v", e.Call, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RejectionError means the collaborator answered with a non-2xx status.
// Detail carries the server's reason verbatim and is what the kiosk must
// display; a generic fallback is only substituted when the body had none.
type RejectionError struct {
	Call   string
	Status int
	Detail string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s: rejected (%d): %s", e.Call, e.Status, e.Detail)
}

// Reason returns the user-facing message for a rejection.
func (e *RejectionError) Reason() string { return e.Detail }

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsRejection reports whether err is (or wraps) a RejectionError.
func IsRejection(err error) bool {
	var re *RejectionError
	return errors.As(err, &re)
}

// IsMissingSession reports whether err is (or wraps) a MissingSessionError.
func IsMissingSession(err error) bool {
	var me *MissingSessionError
	return errors.As(err, &me)
}
