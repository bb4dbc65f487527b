package session

import "errors"

var (
	// ErrAlreadySet indicates a step tried to write an evidence field that
	// another (or an earlier) act already populated.
	ErrAlreadySet = errors.New("record field already set")
	// ErrNotStarted indicates evidence was written before Begin installed
	// a session id.
	ErrNotStarted = errors.New("session not started")
	// ErrAlreadyProbed indicates a second readiness probe in one session.
	ErrAlreadyProbed = errors.New("sensor status already probed")
)
