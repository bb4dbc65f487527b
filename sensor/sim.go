package sensor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmcleod/authbox/internal/util"
)

// SystemClock satisfies Clock with the host clock, labeled "system" so a
// verifier can tell it apart from a battery-backed RTC reading.
type SystemClock struct{}

func (SystemClock) Now(ctx context.Context) (Reading, error) {
	if err := ctx.Err(); err != nil {
		return Reading{}, err
	}
	return Reading{Timestamp: time.Now().UTC(), Source: "system"}, nil
}

func (SystemClock) Available() bool { return true }

// SimReader simulates the serial fingerprint sensor: it waits a short
// scan delay and writes a placeholder PGM image.
type SimReader struct {
	// ScanDelay imitates the time a finger rests on the sensor.
	ScanDelay time.Duration
	// Present toggles reachability for outage drills.
	Present bool
}

// NewSimReader returns a reachable simulated reader with no scan delay.
func NewSimReader() *SimReader {
	return &SimReader{Present: true}
}

func (r *SimReader) Available() bool { return r.Present }

func (r *SimReader) Capture(ctx context.Context, dir string) (string, error) {
	if !r.Present {
		return "", fmt.Errorf("fingerprint sensor not connected")
	}
	if r.ScanDelay > 0 {
		t := time.NewTimer(r.ScanDelay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-t.C:
		}
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("creating fingerprint dir: %w", err)
	}
	// Random suffix keeps two scans within the same second apart.
	suffix, err := util.RandomChars(6)
	if err != nil {
		return "", fmt.Errorf("naming fingerprint image: %w", err)
	}
	name := fmt.Sprintf("fingerprint_%s_%s.pgm", time.Now().UTC().Format("20060102_150405"), suffix)
	path := filepath.Join(dir, name)
	// Minimal valid 1x1 PGM so downstream tooling can open the artifact.
	if err := os.WriteFile(path, []byte("P5\n1 1\n255\n\x00"), 0o600); err != nil {
		return "", fmt.Errorf("writing fingerprint image: %w", err)
	}
	return path, nil
}

// SimPad simulates the signature pad presence flag.
type SimPad struct {
	Present bool
}

func (p SimPad) Available() bool { return p.Present }
