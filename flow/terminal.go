package flow

import (
	"context"
	"fmt"
)

// sendingStep performs the staged terminal submission, logging each stage
// into the session's submission log. It is non-interruptible: the back
// transition is refused by the controller while this step is current.
// A failed notification dispatch is logged and shown but never prevents
// reaching the result step.
type sendingStep struct{}

func (s *sendingStep) ID() StepID { return StepSending }

func (s *sendingStep) Mode() Mode { return ServerVerified }

func (s *sendingStep) Enter(ctx context.Context, rt *Runtime) error { return nil }

func (s *sendingStep) Act(ctx context.Context, rt *Runtime, in Input) (Evidence, error) {
	st := rt.Session
	snap := st.Snapshot()

	st.AppendLog("assembling verification record")
	for _, f := range Summarize(snap) {
		if f.Captured {
			st.AppendLog(fmt.Sprintf("factor %s: captured", f.Factor))
		} else {
			st.AppendLog(fmt.Sprintf("factor %s: missing", f.Factor))
		}
	}
	st.AppendLog("submitting verification record")

	if snap.Record.Email != "" {
		result, err := rt.Client.SendMail(ctx, snap.Record.Email)
		switch {
		case err != nil:
			st.AppendLog(fmt.Sprintf("mail delivery failed: %s", userMessage(err)))
			rt.Log.Warn("mail delivery failed", "error", err.Error())
		case !result.IsSuccess:
			st.AppendLog(fmt.Sprintf("mail delivery failed: %s", result.Message))
			rt.Log.Warn("mail delivery rejected", "message", result.Message)
		default:
			st.AppendLog(fmt.Sprintf("mail delivered to %s", result.TargetMail))
		}
	} else {
		st.AppendLog("no notification address, skipping mail")
	}

	st.AppendLog("verification complete")
	return nil, nil
}

func (s *sendingStep) Exit(rt *Runtime) {}

// resultStep is terminal. The only way out is a session reset, which both
// the on-screen restart and the logout action route through.
type resultStep struct{}

func (s *resultStep) ID() StepID { return StepResult }

func (s *resultStep) Mode() Mode { return CaptureOnly }

func (s *resultStep) Enter(ctx context.Context, rt *Runtime) error {
	rt.Log.Info("verification finished",
		"log_id", loggedID(rt),
		"lines", len(rt.Session.LogLines()))
	return nil
}

func (s *resultStep) Act(ctx context.Context, rt *Runtime, in Input) (Evidence, error) {
	return nil, ErrTerminal
}

func (s *resultStep) Exit(rt *Runtime) {}

func loggedID(rt *Runtime) string {
	id, _ := rt.Session.SessionID()
	return id
}
