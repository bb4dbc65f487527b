package flow

import (
	"context"
	"sync"
	"time"

	"github.com/jmcleod/authbox/session"
)

// cameraStep shows a live preview while the user lines up, then captures
// and (by policy) verifies a face image. The preview poll starts on entry
// and dies with the step context; re-entering never stacks a second poll.
type cameraStep struct {
	mu      sync.Mutex
	polling bool
	preview string
}

func (s *cameraStep) ID() StepID { return StepCamera }

func (s *cameraStep) Mode() Mode { return ServerVerified }

func (s *cameraStep) Enter(ctx context.Context, rt *Runtime) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.polling {
		return nil
	}
	s.polling = true

	go func() {
		ticker := time.NewTicker(rt.Config.PollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				frame, err := rt.Client.LatestFrame(ctx)
				if err != nil || frame == "" {
					continue
				}
				s.mu.Lock()
				s.preview = frame
				s.mu.Unlock()
			}
		}
	}()
	return nil
}

// Preview returns the most recent polled frame (base64 JPEG), empty until
// the first poll lands.
func (s *cameraStep) Preview() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preview
}

func (s *cameraStep) Act(ctx context.Context, rt *Runtime, in Input) (Evidence, error) {
	if status, ok := rt.Session.SensorStatus(); ok && !status.Camera {
		return nil, &PreconditionError{Reason: "camera unavailable"}
	}

	if err := countdown(ctx, rt.Config.Countdown); err != nil {
		return nil, err
	}

	var ref string
	if rt.Config.VerifyFace {
		// The server judges against its latest pushed frame.
		detail, err := rt.Client.VerifyFace(ctx, "")
		if err != nil {
			return nil, err
		}
		ref = detail
		if ref == "" {
			ref = "face verified"
		}
	} else {
		frame := s.Preview()
		if frame == "" {
			var err error
			frame, err = rt.Client.LatestFrame(ctx)
			if err != nil {
				return nil, err
			}
		}
		if frame == "" {
			return nil, &PreconditionError{Reason: "no camera frame available yet"}
		}
		ref = frame
	}

	return func(st *session.Store) error {
		return st.SetCamera(ref)
	}, nil
}

func (s *cameraStep) Exit(rt *Runtime) {
	s.mu.Lock()
	s.polling = false
	s.preview = ""
	s.mu.Unlock()
}

// countdown waits the configured capture delay, aborting promptly when the
// user navigates away.
func countdown(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
