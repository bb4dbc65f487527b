package flow

import (
	"context"

	"github.com/jmcleod/authbox/session"
)

// gpsStep captures the latest pushed fix after the countdown and submits
// it for location verification.
type gpsStep struct{}

func (s *gpsStep) ID() StepID { return StepGPS }

func (s *gpsStep) Mode() Mode { return ServerVerified }

func (s *gpsStep) Enter(ctx context.Context, rt *Runtime) error { return nil }

func (s *gpsStep) Act(ctx context.Context, rt *Runtime, in Input) (Evidence, error) {
	if status, ok := rt.Session.SensorStatus(); ok && !status.GPS {
		return nil, &PreconditionError{Reason: "gps receiver unavailable"}
	}

	if err := countdown(ctx, rt.Config.Countdown); err != nil {
		return nil, err
	}

	lat, lon, err := rt.Client.LatestGPS(ctx)
	if err != nil {
		return nil, err
	}
	if err := rt.Client.VerifyGPS(ctx, lat, lon); err != nil {
		return nil, err
	}

	fix := session.Coordinates{Latitude: lat, Longitude: lon}
	return func(st *session.Store) error {
		return st.SetGPS(fix)
	}, nil
}

func (s *gpsStep) Exit(rt *Runtime) {}
