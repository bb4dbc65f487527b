package flow

import (
	"context"

	"github.com/jmcleod/authbox/session"
)

// FactorStatus is one row of the review checklist.
type FactorStatus struct {
	Factor   string
	Captured bool
	Detail   string
}

// Summarize projects the session record into the review checklist. It is
// strictly read-only; the review and result steps are the only consumers
// allowed to look across factors.
func Summarize(s session.Session) []FactorStatus {
	otpDetail := s.Record.OTP.String()
	return []FactorStatus{
		{Factor: "fingerprint", Captured: s.Record.Fingerprint != "", Detail: s.Record.Fingerprint},
		{Factor: "camera", Captured: s.Record.Camera != "", Detail: s.Record.Camera},
		{Factor: "otp", Captured: s.Record.OTP != session.OTPNotTaken, Detail: otpDetail},
		{Factor: "gps", Captured: s.Record.GPS != nil, Detail: gpsDetail(s.Record.GPS)},
		{Factor: "signature", Captured: s.Record.Signature != "", Detail: s.Record.Signature},
		{Factor: "timestamp", Captured: s.Record.Timestamp != "", Detail: s.Record.Timestamp},
	}
}

func gpsDetail(c *session.Coordinates) string {
	if c == nil {
		return ""
	}
	return "captured"
}

// reviewStep shows the checklist and holds the consent gate: the submit
// transition stays disabled until the box is affirmatively checked.
type reviewStep struct{}

func (s *reviewStep) ID() StepID { return StepReview }

func (s *reviewStep) Mode() Mode { return CaptureOnly }

func (s *reviewStep) Enter(ctx context.Context, rt *Runtime) error { return nil }

func (s *reviewStep) Act(ctx context.Context, rt *Runtime, in Input) (Evidence, error) {
	if !in.Consent {
		return nil, &PreconditionError{Reason: "consent is required before submission"}
	}
	return nil, nil
}

func (s *reviewStep) Exit(rt *Runtime) {}
