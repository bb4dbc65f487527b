// Package session holds the in-memory state for one verification attempt.
//
// A session lives from the start call until reset; nothing in it survives a
// process restart. The store enforces the field-ownership discipline: each
// evidence field is written exactly once, by the step responsible for it.
package session

import "time"

// OTPResult is the tri-state outcome of the news-quiz factor.
type OTPResult int

const (
	// OTPNotTaken means the quiz step has not completed yet.
	OTPNotTaken OTPResult = iota
	// OTPPassed means the submitted answer was accepted.
	OTPPassed
	// OTPFailed means the answer was checked and rejected.
	OTPFailed
)

// String returns a human-readable label for the result.
func (r OTPResult) String() string {
	switch r {
	case OTPPassed:
		return "passed"
	case OTPFailed:
		return "failed"
	default:
		return "not taken"
	}
}

// Coordinates is a GPS fix captured during the location step.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Record accumulates the evidence captured per factor. Fields start empty
// and are set at most once per session; a failed step leaves its field
// untouched so the review step can tell "missing" from "failed".
type Record struct {
	Fingerprint string      `json:"fingerprint,omitempty"`
	Camera      string      `json:"camera,omitempty"`
	GPS         *Coordinates `json:"gps,omitempty"`
	Signature   string      `json:"signature,omitempty"`
	OTP         OTPResult   `json:"otp_result"`
	Timestamp   string      `json:"timestamp,omitempty"`
	Email       string      `json:"email,omitempty"`
}

// SensorStatus is the reachability snapshot taken by the readiness gate.
// Absence of a sensor is encoded as false, never as an error.
type SensorStatus struct {
	RTC         bool `json:"rtc"`
	Fingerprint bool `json:"fingerprint"`
	Camera      bool `json:"camera"`
	GPS         bool `json:"gps"`
	Signature   bool `json:"signature"`
}

// HasFailed reports whether any gating sensor is unreachable. The signature
// pad is tracked but has never gated entry.
func (s SensorStatus) HasFailed() bool {
	return !(s.RTC && s.Fingerprint && s.Camera && s.GPS)
}

// Challenge is the transient quiz payload for the OTP step. It is replaced
// each time the step is entered and cleared on reset.
type Challenge struct {
	Question  string
	Options   []string
	NewsTitle string
	// Answer is only populated for the offline fallback quiz, where the
	// correctness check is local.
	Answer  string
	Offline bool
}

// LogEntry is one line of the terminal submission log.
type LogEntry struct {
	At      time.Time
	Message string
}

// Session is a point-in-time copy of the verification state. Obtain it via
// Store.Snapshot; mutating a Session has no effect on the store.
type Session struct {
	ID           string
	UserID       string
	Step         int
	Record       Record
	SensorStatus SensorStatus
	Probed       bool
	Challenge    *Challenge
	Log          []LogEntry
}

// Started reports whether a server-issued session id is present.
func (s Session) Started() bool {
	return s.ID != ""
}
