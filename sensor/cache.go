package sensor

import (
	"sync"
	"time"
)

// FrameCache keeps the most recent camera frame pushed by the uploader.
// One writer (the upload endpoint), many readers.
type FrameCache struct {
	mu    sync.RWMutex
	frame *Frame
}

// NewFrameCache returns an empty cache.
func NewFrameCache() *FrameCache {
	return &FrameCache{}
}

// Set replaces the cached frame.
func (c *FrameCache) Set(imageB64 string) {
	c.mu.Lock()
	c.frame = &Frame{ImageB64: imageB64, At: time.Now().UTC()}
	c.mu.Unlock()
}

// Latest returns the cached frame; ok is false before the first push.
func (c *FrameCache) Latest() (Frame, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.frame == nil {
		return Frame{}, false
	}
	return *c.frame, true
}

// Available reports whether any frame arrived yet; the readiness gate
// treats a silent camera as unreachable.
func (c *FrameCache) Available() bool {
	_, ok := c.Latest()
	return ok
}

// FixCache keeps the most recent GPS fix pushed by the uploader.
type FixCache struct {
	mu  sync.RWMutex
	fix *Fix
}

// NewFixCache returns an empty cache.
func NewFixCache() *FixCache {
	return &FixCache{}
}

// Set replaces the cached fix.
func (c *FixCache) Set(lat, lon float64) {
	c.mu.Lock()
	c.fix = &Fix{Latitude: lat, Longitude: lon, At: time.Now().UTC()}
	c.mu.Unlock()
}

// Latest returns the cached fix; ok is false before the first push.
func (c *FixCache) Latest() (Fix, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.fix == nil {
		return Fix{}, false
	}
	return *c.fix, true
}

// Available reports whether any fix arrived yet.
func (c *FixCache) Available() bool {
	_, ok := c.Latest()
	return ok
}
