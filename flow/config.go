package flow

import "time"

// Config fixes the deployment policies the source left implicit. Each
// field replaces a behavior that used to differ between duplicated step
// variants; pick one per deployment, not per code path.
type Config struct {
	// StrictGate blocks the checklist entirely when a gating sensor is
	// down. When false the user may acknowledge the warning and continue.
	StrictGate bool
	// OTPFallback substitutes the fixed local quiz when the challenge
	// fetch cannot reach the collaborator. When false the fetch failure
	// is an ordinary retryable error.
	OTPFallback bool
	// VerifyFace selects the server-verified camera path; when false the
	// step stores the captured frame without a server judgement.
	VerifyFace bool
	// VerifySignature selects the server-verified signature path; when
	// false the raw artifact is kept locally.
	VerifySignature bool
	// Countdown is the delay between pressing capture and the capture
	// itself on the fingerprint, camera and GPS steps. Navigating away
	// cancels it.
	Countdown time.Duration
	// PollInterval paces the camera preview poll started on step entry.
	PollInterval time.Duration
}

// DefaultConfig returns the policies the kiosk ships with.
func DefaultConfig() Config {
	return Config{
		StrictGate:      false,
		OTPFallback:     true,
		VerifyFace:      true,
		VerifySignature: true,
		Countdown:       3 * time.Second,
		PollInterval:    1500 * time.Millisecond,
	}
}
