package flow

import (
	"context"

	"github.com/jmcleod/authbox/session"
)

// standbyStep opens the verification session. Until its act succeeds no
// session id exists and no per-factor call may be issued; on failure the
// session stays exactly as it was, so start is all-or-nothing.
type standbyStep struct{}

func (s *standbyStep) ID() StepID { return StepStandby }

func (s *standbyStep) Mode() Mode { return ServerVerified }

func (s *standbyStep) Enter(ctx context.Context, rt *Runtime) error { return nil }

func (s *standbyStep) Act(ctx context.Context, rt *Runtime, in Input) (Evidence, error) {
	userID := rt.Session.UserID()
	if userID == "" {
		userID = in.UserID
	}
	if userID == "" {
		return nil, &PreconditionError{Reason: "user id is required to start verification"}
	}

	logID, err := rt.Client.Start(ctx, userID)
	if err != nil {
		return nil, err
	}

	rt.Log.Info("verification session started", "log_id", logID, "user", userID)
	return func(st *session.Store) error {
		return st.Begin(logID, userID)
	}, nil
}

func (s *standbyStep) Exit(rt *Runtime) {}
