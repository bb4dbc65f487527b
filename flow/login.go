package flow

import (
	"context"

	"github.com/jmcleod/authbox/internal/util"
	"github.com/jmcleod/authbox/session"
)

// loginStep checks the kiosk user's credentials against the collaborator.
// The password only ever exists inside the Credentials enclave and the
// single outbound request.
type loginStep struct{}

func (s *loginStep) ID() StepID { return StepLogin }

func (s *loginStep) Mode() Mode { return ServerVerified }

func (s *loginStep) Enter(ctx context.Context, rt *Runtime) error { return nil }

func (s *loginStep) Act(ctx context.Context, rt *Runtime, in Input) (Evidence, error) {
	if in.Credentials == nil {
		return nil, &PreconditionError{Reason: "credentials are required"}
	}
	userID := util.Normalize(in.Credentials.UserID())
	if userID == "" {
		return nil, &PreconditionError{Reason: "user id is required"}
	}

	password, err := in.Credentials.open()
	if err != nil {
		return nil, &PreconditionError{Reason: "credentials already destroyed"}
	}
	defer password.Destroy()

	if password.Size() == 0 {
		return nil, &PreconditionError{Reason: "password is required"}
	}
	if err := rt.Client.Login(ctx, userID, password.String()); err != nil {
		return nil, err
	}

	rt.Log.Info("login accepted", "user", userID)
	return func(st *session.Store) error {
		st.SetUserID(userID)
		return nil
	}, nil
}

func (s *loginStep) Exit(rt *Runtime) {}
