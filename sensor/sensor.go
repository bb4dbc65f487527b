// Package sensor defines the collaborator surface for the hardware the
// façade orchestrates. Real driver implementations live outside this
// repository; the sim variants here stand in for them on development
// kiosks and in tests.
package sensor

import (
	"context"
	"time"
)

// Reading is one clock sample with its provenance ("rtc" when the
// hardware clock answered, "system" when the host clock substituted).
type Reading struct {
	Timestamp time.Time
	Source    string
}

// Clock reads the kiosk's real-time clock.
type Clock interface {
	Now(ctx context.Context) (Reading, error)
	Available() bool
}

// FingerprintReader triggers a scan and stores the captured image.
type FingerprintReader interface {
	// Capture blocks until a finger is read or ctx expires, writes the
	// image under dir, and returns the stored path.
	Capture(ctx context.Context, dir string) (string, error)
	Available() bool
}

// Frame is a camera capture pushed by the ESP32 uploader.
type Frame struct {
	ImageB64 string
	At       time.Time
}

// Fix is a GPS position pushed by the ESP32 uploader.
type Fix struct {
	Latitude  float64
	Longitude float64
	At        time.Time
}

// SignaturePad reports pad presence; the drawing itself arrives from the
// touchscreen as an image payload.
type SignaturePad interface {
	Available() bool
}
