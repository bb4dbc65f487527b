package flow

import (
	"context"

	"github.com/jmcleod/authbox/session"
)

// checklistStep is the readiness gate. Entry probes sensor reachability
// once per session; the continue action applies the gate policy and, when
// the clock is up, captures the RTC timestamp as evidence.
type checklistStep struct{}

func (s *checklistStep) ID() StepID { return StepChecklist }

func (s *checklistStep) Mode() Mode { return CaptureOnly }

// Enter probes the sensor-status collaborator. A missing sensor comes
// back as false, never as an error; only an unreachable collaborator is
// an error, and then every sensor degrades to unreachable — the gate has
// exactly two outcomes, ready or not ready.
func (s *checklistStep) Enter(ctx context.Context, rt *Runtime) error {
	if _, ok := rt.Session.SensorStatus(); ok {
		return nil // probed earlier this session; re-entry is a no-op
	}

	probed, err := rt.Client.SensorStatus(ctx)
	if err != nil {
		if serr := rt.Session.SetSensorStatus(session.SensorStatus{}); serr != nil {
			return serr
		}
		rt.Log.Warn("readiness probe unreachable", "error", err.Error())
		return err
	}

	status := session.SensorStatus{
		RTC:         probed.RTC,
		Fingerprint: probed.Fingerprint,
		Camera:      probed.Camera,
		GPS:         probed.GPS,
		Signature:   probed.Signature,
	}
	if err := rt.Session.SetSensorStatus(status); err != nil {
		return err
	}
	rt.Log.Info("readiness probe",
		"rtc", status.RTC,
		"fingerprint", status.Fingerprint,
		"camera", status.Camera,
		"gps", status.GPS,
		"signature", status.Signature,
		"has_failed", status.HasFailed())
	return nil
}

func (s *checklistStep) Act(ctx context.Context, rt *Runtime, in Input) (Evidence, error) {
	status, ok := rt.Session.SensorStatus()
	if !ok {
		return nil, &PreconditionError{Reason: "sensor status not probed yet"}
	}

	if status.HasFailed() {
		if rt.Config.StrictGate {
			return nil, ErrGateBlocked
		}
		if !in.Acknowledge {
			return nil, &PreconditionError{Reason: "sensor check failed; acknowledge the warning to continue"}
		}
	}

	// Timestamp evidence is best-effort when the clock never answered
	// the probe; the record field simply stays unset.
	if !status.RTC {
		return nil, nil
	}
	reading, err := rt.Client.RTC(ctx)
	if err != nil {
		return nil, err
	}
	return func(st *session.Store) error {
		return st.SetTimestamp(reading.Timestamp)
	}, nil
}

func (s *checklistStep) Exit(rt *Runtime) {}
