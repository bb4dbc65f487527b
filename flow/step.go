// Package flow implements the kiosk's multi-step verification state
// machine: an ordered sequence of per-factor steps driven by a controller
// that owns all transitions, the readiness gate, and session lifecycle.
package flow

import (
	"context"

	"github.com/jmcleod/authbox/session"
)

// StepID identifies a position in the fixed verification sequence.
type StepID int

const (
	StepLogin StepID = iota
	StepStandby
	StepChecklist
	StepFingerprint
	StepCamera
	StepOTP
	StepGPS
	StepSignature
	StepReview
	StepEmail
	StepSending
	StepResult
)

var stepNames = map[StepID]string{
	StepLogin:       "login",
	StepStandby:     "standby",
	StepChecklist:   "checklist",
	StepFingerprint: "fingerprint",
	StepCamera:      "camera",
	StepOTP:         "otp",
	StepGPS:         "gps",
	StepSignature:   "signature",
	StepReview:      "review",
	StepEmail:       "email",
	StepSending:     "sending",
	StepResult:      "result",
}

func (s StepID) String() string {
	if n, ok := stepNames[s]; ok {
		return n
	}
	return "unknown"
}

// Mode tags how a step produces its evidence.
type Mode int

const (
	// CaptureOnly steps store a local artifact without a server judgement.
	CaptureOnly Mode = iota
	// ServerVerified steps send evidence for a pass/fail decision; any
	// non-2xx blocks forward progress.
	ServerVerified
	// FallbackCapable steps are server-verified but may degrade to a
	// local offline substitute when the collaborator is unreachable.
	FallbackCapable
)

// Input carries the user-supplied data for one act. Only the fields the
// current step cares about are read.
type Input struct {
	UserID      string
	Credentials *Credentials
	// Acknowledge confirms the sensor-failure warning at the checklist.
	Acknowledge bool
	// Answer is the selected quiz option, e.g. "B. Seoul".
	Answer string
	// SignatureImage is a base64 PNG data URL from the pad.
	SignatureImage string
	Consent        bool
	Email          string
	SkipEmail      bool
}

// Evidence is the deferred session mutation produced by a successful act.
// The controller applies it under its own lock only if the step entry that
// produced it is still current, so a stale response is discarded instead
// of corrupting a later step's state.
type Evidence func(*session.Store) error

// Step is the shared contract every factor implements.
//
// Enter runs setup on entry and must be idempotent; anything long-running
// it starts must be bound to ctx, which the controller cancels on exit.
// Act performs the single user-triggered action and returns the evidence
// to record on success. Exit releases step-local state; it runs on every
// navigation path.
type Step interface {
	ID() StepID
	Mode() Mode
	Enter(ctx context.Context, rt *Runtime) error
	Act(ctx context.Context, rt *Runtime, in Input) (Evidence, error)
	Exit(rt *Runtime)
}
