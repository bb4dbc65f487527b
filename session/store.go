package session

import (
	"sync"
	"time"
)

// Store is the single shared mutable resource of a kiosk run. It is owned
// by the flow controller; steps reach it only through these accessors so
// the one-writer-per-field rule survives re-entrant navigation.
//
// The store is safe for concurrent use so tests can drive independent
// sessions in parallel, but the flow itself is strictly sequential.
type Store struct {
	mu  sync.RWMutex
	s   Session
	now func() time.Time
}

// NewStore creates an empty session store positioned at step 0.
func NewStore() *Store {
	return &Store{now: time.Now}
}

// Begin installs the server-issued session id and the user it belongs to.
// It fails if a session is already live; reset first.
func (st *Store) Begin(id, userID string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.s.ID != "" {
		return ErrAlreadySet
	}
	st.s.ID = id
	st.s.UserID = userID
	return nil
}

// SessionID returns the live session id. ok is false before start and
// after reset; callers must treat that as a precondition failure, not
// retry silently.
func (st *Store) SessionID() (string, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.s.ID, st.s.ID != ""
}

// UserID returns the user the session belongs to ("" before login).
func (st *Store) UserID() string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.s.UserID
}

// SetUserID records the logged-in user. Written by the login step only.
func (st *Store) SetUserID(id string) {
	st.mu.Lock()
	st.s.UserID = id
	st.mu.Unlock()
}

// Step returns the current step index.
func (st *Store) Step() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.s.Step
}

// SetStep moves the step cursor. Only the flow controller calls this;
// steps never reposition themselves.
func (st *Store) SetStep(i int) {
	st.mu.Lock()
	st.s.Step = i
	st.mu.Unlock()
}

// SetSensorStatus records the readiness probe result. The gate probes once
// per session; a second write is a programming error.
func (st *Store) SetSensorStatus(s SensorStatus) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.s.Probed {
		return ErrAlreadyProbed
	}
	st.s.SensorStatus = s
	st.s.Probed = true
	return nil
}

// SensorStatus returns the probe result; ok is false until the gate ran.
func (st *Store) SensorStatus() (SensorStatus, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.s.SensorStatus, st.s.Probed
}

// SetChallenge installs the quiz payload for the OTP step, replacing any
// previous one. Unlike evidence fields this is overwritten on re-entry.
func (st *Store) SetChallenge(c Challenge) {
	st.mu.Lock()
	cc := c
	cc.Options = append([]string(nil), c.Options...)
	st.s.Challenge = &cc
	st.mu.Unlock()
}

// Challenge returns a copy of the current quiz payload.
func (st *Store) Challenge() (Challenge, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if st.s.Challenge == nil {
		return Challenge{}, false
	}
	c := *st.s.Challenge
	c.Options = append([]string(nil), c.Options...)
	return c, true
}

// Evidence setters require a live session id and write once; they return
// ErrNotStarted before Begin and ErrAlreadySet on a second write.

// SetFingerprint records the fingerprint evidence reference.
func (st *Store) SetFingerprint(ref string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.s.ID == "" {
		return ErrNotStarted
	}
	if st.s.Record.Fingerprint != "" {
		return ErrAlreadySet
	}
	st.s.Record.Fingerprint = ref
	return nil
}

// SetCamera records the face-capture evidence reference.
func (st *Store) SetCamera(ref string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.s.ID == "" {
		return ErrNotStarted
	}
	if st.s.Record.Camera != "" {
		return ErrAlreadySet
	}
	st.s.Record.Camera = ref
	return nil
}

// SetGPS records the verified location fix.
func (st *Store) SetGPS(c Coordinates) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.s.ID == "" {
		return ErrNotStarted
	}
	if st.s.Record.GPS != nil {
		return ErrAlreadySet
	}
	cc := c
	st.s.Record.GPS = &cc
	return nil
}

// SetSignature records the stored signature artifact path.
func (st *Store) SetSignature(path string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.s.ID == "" {
		return ErrNotStarted
	}
	if st.s.Record.Signature != "" {
		return ErrAlreadySet
	}
	st.s.Record.Signature = path
	return nil
}

// SetOTPResult records the quiz outcome. Both pass and fail are terminal
// for the factor; only the not-taken state accepts a write.
func (st *Store) SetOTPResult(r OTPResult) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.s.ID == "" {
		return ErrNotStarted
	}
	if st.s.Record.OTP != OTPNotTaken {
		return ErrAlreadySet
	}
	st.s.Record.OTP = r
	return nil
}

// SetTimestamp records the RTC timestamp captured at the checklist step.
func (st *Store) SetTimestamp(ts string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.s.ID == "" {
		return ErrNotStarted
	}
	if st.s.Record.Timestamp != "" {
		return ErrAlreadySet
	}
	st.s.Record.Timestamp = ts
	return nil
}

// SetEmail records the notification address entered at the email step.
func (st *Store) SetEmail(addr string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.s.ID == "" {
		return ErrNotStarted
	}
	if st.s.Record.Email != "" {
		return ErrAlreadySet
	}
	st.s.Record.Email = addr
	return nil
}

// Record returns a copy of the evidence accumulated so far.
func (st *Store) Record() Record {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return copyRecord(st.s.Record)
}

// AppendLog adds a timestamped line to the submission log.
func (st *Store) AppendLog(msg string) {
	st.mu.Lock()
	st.s.Log = append(st.s.Log, LogEntry{At: st.now().UTC(), Message: msg})
	st.mu.Unlock()
}

// LogLines returns the submission log messages in append order.
func (st *Store) LogLines() []string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	lines := make([]string, len(st.s.Log))
	for i, e := range st.s.Log {
		lines[i] = e.Message
	}
	return lines
}

// Snapshot returns a deep copy of the whole session for read-only
// aggregation (review and result steps).
func (st *Store) Snapshot() Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := st.s
	out.Record = copyRecord(st.s.Record)
	if st.s.Challenge != nil {
		c := *st.s.Challenge
		c.Options = append([]string(nil), c.Options...)
		out.Challenge = &c
	}
	out.Log = append([]LogEntry(nil), st.s.Log...)
	return out
}

// Reset restores the store to its initial empty state in one critical
// section; no reader can observe a partially cleared session. Resetting
// an already-empty store is a no-op.
func (st *Store) Reset() {
	st.mu.Lock()
	st.s = Session{}
	st.mu.Unlock()
}

func copyRecord(r Record) Record {
	out := r
	if r.GPS != nil {
		c := *r.GPS
		out.GPS = &c
	}
	return out
}
