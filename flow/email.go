package flow

import (
	"context"
	"strings"

	"github.com/jmcleod/authbox/internal/util"
	"github.com/jmcleod/authbox/session"
)

// emailStep collects the optional notification address. Skipping is a
// first-class choice; an empty address with no skip is treated as one.
type emailStep struct{}

func (s *emailStep) ID() StepID { return StepEmail }

func (s *emailStep) Mode() Mode { return CaptureOnly }

func (s *emailStep) Enter(ctx context.Context, rt *Runtime) error { return nil }

func (s *emailStep) Act(ctx context.Context, rt *Runtime, in Input) (Evidence, error) {
	addr := util.Normalize(strings.TrimSpace(in.Email))
	if in.SkipEmail || addr == "" {
		return nil, nil
	}
	at := strings.Index(addr, "@")
	if at <= 0 || at == len(addr)-1 {
		return nil, &PreconditionError{Reason: "enter a valid email address"}
	}
	return func(st *session.Store) error {
		return st.SetEmail(addr)
	}, nil
}

func (s *emailStep) Exit(rt *Runtime) {}
