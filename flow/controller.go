package flow

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/jmcleod/authbox/client"
	"github.com/jmcleod/authbox/session"
)

// Runtime bundles the dependencies handed to each step. Steps never hold
// globals; tests instantiate independent runtimes side by side.
type Runtime struct {
	Session *session.Store
	Client  *client.Client
	Config  Config
	Log     *slog.Logger
}

// NewRuntime wires a runtime. A nil logger falls back to JSON on stderr.
func NewRuntime(store *session.Store, c *client.Client, cfg Config, logger *slog.Logger) *Runtime {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	return &Runtime{
		Session: store,
		Client:  c,
		Config:  cfg,
		Log:     logger.With("component", "flow"),
	}
}

// Controller owns the step cursor. All transitions go through it: steps
// read the session but never reposition themselves, and every entry is
// paired with an exit that cancels whatever the entry started.
type Controller struct {
	mu    sync.Mutex
	rt    *Runtime
	steps []Step
	cur   int

	// gen increments on every exit; acts that finish against an older
	// generation are discarded instead of applied.
	gen        uint64
	stepCtx    context.Context
	stepCancel context.CancelFunc
	entered    bool
	stepErr    string
}

// NewController builds a controller over the standard step sequence.
func NewController(rt *Runtime) *Controller {
	return &Controller{
		rt: rt,
		steps: []Step{
			&loginStep{},
			&standbyStep{},
			&checklistStep{},
			&fingerprintStep{},
			&cameraStep{},
			&otpStep{},
			&gpsStep{},
			&signatureStep{},
			&reviewStep{},
			&emailStep{},
			&sendingStep{},
			&resultStep{},
		},
	}
}

// Current returns the step the user is on.
func (c *Controller) Current() StepID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.steps[c.cur].ID()
}

// StepError returns the step-local error message from the last failed
// act or entry, empty once an act succeeds or the step changes.
func (c *Controller) StepError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stepErr
}

// Enter runs the current step's entry hook. Call once after construction;
// transitions re-enter automatically.
func (c *Controller) Enter(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enterLocked(ctx)
}

// enterLocked enters the current step, creating its scoped context.
// An entry error keeps the user on the step with the message surfaced.
func (c *Controller) enterLocked(ctx context.Context) error {
	if c.entered {
		return nil
	}
	c.stepCtx, c.stepCancel = context.WithCancel(context.WithoutCancel(ctx))
	c.entered = true

	step := c.steps[c.cur]
	if err := step.Enter(c.stepCtx, c.rt); err != nil {
		c.stepErr = userMessage(err)
		return err
	}
	return nil
}

// exitLocked cancels the step context, runs the exit hook, and bumps the
// generation so in-flight acts become stale.
func (c *Controller) exitLocked() {
	if !c.entered {
		return
	}
	c.stepCancel()
	c.steps[c.cur].Exit(c.rt)
	c.entered = false
	c.gen++
	c.stepErr = ""
}

// Act performs the current step's single user action. On success the
// evidence is recorded and the cursor advances; on failure the record is
// untouched and the user stays on the step with the message available
// through StepError. An act finishing after navigation is discarded.
func (c *Controller) Act(ctx context.Context, in Input) error {
	c.mu.Lock()
	if !c.entered {
		if err := c.enterLocked(ctx); err != nil {
			c.mu.Unlock()
			return err
		}
	}
	// A revisited step whose evidence already exists advances without
	// re-capturing: Back over a finished factor must not re-fire the
	// hardware, and a second write would trip the one-writer rule.
	if c.completedLocked() {
		c.exitLocked()
		c.cur++
		c.rt.Session.SetStep(c.cur)
		err := c.enterLocked(ctx)
		c.mu.Unlock()
		return err
	}
	step := c.steps[c.cur]
	gen := c.gen
	stepCtx := c.stepCtx
	c.mu.Unlock()

	// The remote call runs outside the lock under a context that dies
	// with either the caller or the step entry.
	actCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(stepCtx, cancel)
	ev, err := step.Act(actCtx, c.rt, in)
	stop()
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gen != gen {
		return ErrSuperseded
	}
	if err != nil {
		if !IsPrecondition(err) {
			c.rt.Log.Warn("act failed",
				slog.String("step", step.ID().String()),
				slog.String("error", err.Error()))
		}
		c.stepErr = userMessage(err)
		return err
	}
	if ev != nil {
		if err := ev(c.rt.Session); err != nil {
			c.stepErr = err.Error()
			return err
		}
	}
	c.stepErr = ""

	c.exitLocked()
	c.cur++
	c.rt.Session.SetStep(c.cur)
	return c.enterLocked(ctx)
}

// completedLocked reports whether the current step's write-once evidence
// is already recorded. Steps stay revisitable for display after Back, but
// their capture runs at most once per session.
func (c *Controller) completedLocked() bool {
	rec := c.rt.Session.Record()
	switch c.steps[c.cur].ID() {
	case StepStandby:
		_, live := c.rt.Session.SessionID()
		return live
	case StepChecklist:
		return rec.Timestamp != ""
	case StepFingerprint:
		return rec.Fingerprint != ""
	case StepCamera:
		return rec.Camera != ""
	case StepOTP:
		return rec.OTP != session.OTPNotTaken
	case StepGPS:
		return rec.GPS != nil
	case StepSignature:
		return rec.Signature != ""
	case StepEmail:
		return rec.Email != ""
	}
	return false
}

// Back moves to the immediate predecessor. Sending is non-interruptible
// and Result is terminal; neither permits back navigation.
func (c *Controller) Back(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.steps[c.cur].ID()
	if id == StepSending || id == StepResult {
		return ErrBackBlocked
	}
	if c.cur == 0 {
		return ErrBackBlocked
	}
	c.exitLocked()
	c.cur--
	c.rt.Session.SetStep(c.cur)
	return c.enterLocked(ctx)
}

// Reenter exits and re-enters the current step, e.g. to retry a failed
// entry-time fetch. Any in-flight act becomes stale.
func (c *Controller) Reenter(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exitLocked()
	return c.enterLocked(ctx)
}
