package flow

import (
	"context"

	"github.com/jmcleod/authbox/client"
	"github.com/jmcleod/authbox/session"
)

// Fallback quiz used when the challenge collaborator is unreachable and
// the deployment favors availability over the live news quiz.
const (
	fallbackQuestion = "What is the capital of South Korea?"
	fallbackAnswer   = "B. Seoul"
)

func fallbackOptions() []string {
	return []string{"A. Busan", "B. Seoul", "C. Incheon", "D. Daejeon"}
}

// otpStep runs the news quiz. Entry loads a fresh challenge (replacing any
// earlier one); the act submits the selected answer. A wrong answer is an
// accepted outcome — it records a failed quiz, it does not block the step.
type otpStep struct{}

func (s *otpStep) ID() StepID { return StepOTP }

func (s *otpStep) Mode() Mode { return FallbackCapable }

func (s *otpStep) Enter(ctx context.Context, rt *Runtime) error {
	fetched, err := rt.Client.FetchChallenge(ctx)
	if err != nil {
		if client.IsTransport(err) && rt.Config.OTPFallback {
			rt.Session.SetChallenge(session.Challenge{
				Question: fallbackQuestion,
				Options:  fallbackOptions(),
				Answer:   fallbackAnswer,
				Offline:  true,
			})
			rt.Log.Warn("otp challenge unreachable, using offline fallback")
			return nil
		}
		return err
	}

	rt.Session.SetChallenge(session.Challenge{
		Question:  fetched.Question,
		Options:   fetched.Options,
		NewsTitle: fetched.NewsTitle,
	})
	return nil
}

func (s *otpStep) Act(ctx context.Context, rt *Runtime, in Input) (Evidence, error) {
	challenge, ok := rt.Session.Challenge()
	if !ok {
		return nil, &PreconditionError{Reason: "no quiz loaded; retry the challenge fetch"}
	}
	if in.Answer == "" {
		return nil, &PreconditionError{Reason: "select an answer"}
	}

	var passed bool
	if challenge.Offline {
		passed = in.Answer == challenge.Answer
	} else {
		var err error
		passed, err = rt.Client.VerifyOTP(ctx, in.Answer)
		if err != nil {
			return nil, err
		}
	}

	result := session.OTPFailed
	if passed {
		result = session.OTPPassed
	}
	rt.Log.Info("otp answered", "passed", passed, "offline", challenge.Offline)
	return func(st *session.Store) error {
		return st.SetOTPResult(result)
	}, nil
}

func (s *otpStep) Exit(rt *Runtime) {}
