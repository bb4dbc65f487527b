package flow

import (
	"errors"

	"github.com/jmcleod/authbox/client"
)

var (
	// ErrSuperseded indicates an act completed after the user navigated
	// away; its result was discarded, not applied.
	ErrSuperseded = errors.New("step superseded during act")
	// ErrBackBlocked indicates back navigation from a non-interruptible
	// or terminal step.
	ErrBackBlocked = errors.New("back navigation not allowed from this step")
	// ErrTerminal indicates an act on the result step; only reset leaves it.
	ErrTerminal = errors.New("terminal step: reset to start a new session")
	// ErrGateBlocked indicates the strict readiness gate refused entry.
	ErrGateBlocked = errors.New("required sensors unavailable")
)

// connectivityMessage is the generic user-facing text for transport
// failures; the collaborator's own words are only shown for rejections.
const connectivityMessage = "unable to reach the verification server"

// PreconditionError reports invalid or missing input caught before any
// remote call. The step stays interactive and nothing is logged.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string { return e.Reason }

// IsPrecondition reports whether err is a local precondition failure,
// including a missing session id on the client side.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe) || client.IsMissingSession(err)
}

// userMessage converts an act error into the text shown on the step.
// Rejections surface the collaborator's reason verbatim; transport
// failures collapse to one generic connectivity message.
func userMessage(err error) string {
	var re *client.RejectionError
	if errors.As(err, &re) {
		return re.Reason()
	}
	if client.IsTransport(err) {
		return connectivityMessage
	}
	return err.Error()
}
