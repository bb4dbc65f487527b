package flow

import (
	"context"

	"github.com/jmcleod/authbox/session"
)

// fingerprintStep triggers a scan on the attached reader through the
// collaborator, which judges the capture and returns the stored artifact.
type fingerprintStep struct{}

func (s *fingerprintStep) ID() StepID { return StepFingerprint }

func (s *fingerprintStep) Mode() Mode { return ServerVerified }

func (s *fingerprintStep) Enter(ctx context.Context, rt *Runtime) error { return nil }

func (s *fingerprintStep) Act(ctx context.Context, rt *Runtime, in Input) (Evidence, error) {
	if status, ok := rt.Session.SensorStatus(); ok && !status.Fingerprint {
		return nil, &PreconditionError{Reason: "fingerprint reader unavailable"}
	}

	// The user needs time to place a finger before the scan fires.
	if err := countdown(ctx, rt.Config.Countdown); err != nil {
		return nil, err
	}

	ref, err := rt.Client.VerifyFingerprint(ctx)
	if err != nil {
		return nil, err
	}
	if ref == "" {
		ref = "fingerprint verified"
	}

	return func(st *session.Store) error {
		return st.SetFingerprint(ref)
	}, nil
}

func (s *fingerprintStep) Exit(rt *Runtime) {}
