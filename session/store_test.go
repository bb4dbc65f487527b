package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_BeginAndSessionID(t *testing.T) {
	st := NewStore()

	_, ok := st.SessionID()
	assert.False(t, ok)

	require.NoError(t, st.Begin("42", "0001"))
	id, ok := st.SessionID()
	assert.True(t, ok)
	assert.Equal(t, "42", id)
	assert.Equal(t, "0001", st.UserID())

	// A second start without reset is a programming error.
	require.ErrorIs(t, st.Begin("43", "0001"), ErrAlreadySet)
}

func TestStore_EvidenceWriteOnce(t *testing.T) {
	st := NewStore()
	require.NoError(t, st.Begin("42", "0001"))

	require.NoError(t, st.SetFingerprint("data/fp.pgm"))
	require.ErrorIs(t, st.SetFingerprint("data/other.pgm"), ErrAlreadySet)

	require.NoError(t, st.SetGPS(Coordinates{Latitude: 37.5665, Longitude: 126.9780}))
	require.ErrorIs(t, st.SetGPS(Coordinates{}), ErrAlreadySet)

	require.NoError(t, st.SetOTPResult(OTPPassed))
	require.ErrorIs(t, st.SetOTPResult(OTPFailed), ErrAlreadySet)

	rec := st.Record()
	assert.Equal(t, "data/fp.pgm", rec.Fingerprint)
	require.NotNil(t, rec.GPS)
	assert.InDelta(t, 37.5665, rec.GPS.Latitude, 1e-9)
	assert.Equal(t, OTPPassed, rec.OTP)
}

func TestStore_EvidenceRequiresLiveSession(t *testing.T) {
	st := NewStore()

	require.ErrorIs(t, st.SetFingerprint("data/fp.pgm"), ErrNotStarted)
	require.ErrorIs(t, st.SetCamera("data/face.jpg"), ErrNotStarted)
	require.ErrorIs(t, st.SetGPS(Coordinates{}), ErrNotStarted)
	require.ErrorIs(t, st.SetSignature("data/sig.png"), ErrNotStarted)
	require.ErrorIs(t, st.SetOTPResult(OTPPassed), ErrNotStarted)
	require.ErrorIs(t, st.SetTimestamp("2026-08-23T10:00:00Z"), ErrNotStarted)
	require.ErrorIs(t, st.SetEmail("op@example.com"), ErrNotStarted)

	assert.Equal(t, Record{}, st.Record(), "refused writes must leave no trace")
}

func TestStore_SensorStatusProbeOnce(t *testing.T) {
	st := NewStore()

	_, ok := st.SensorStatus()
	assert.False(t, ok)

	status := SensorStatus{RTC: true, Fingerprint: false, Camera: true, GPS: true, Signature: true}
	require.NoError(t, st.SetSensorStatus(status))
	require.ErrorIs(t, st.SetSensorStatus(SensorStatus{}), ErrAlreadyProbed)

	got, ok := st.SensorStatus()
	require.True(t, ok)
	assert.True(t, got.HasFailed())
}

func TestSensorStatus_HasFailed(t *testing.T) {
	all := SensorStatus{RTC: true, Fingerprint: true, Camera: true, GPS: true, Signature: true}
	assert.False(t, all.HasFailed())

	// The signature pad is tracked but does not gate.
	noPad := all
	noPad.Signature = false
	assert.False(t, noPad.HasFailed())

	noRTC := all
	noRTC.RTC = false
	assert.True(t, noRTC.HasFailed())
}

func TestStore_ChallengeReplacedOnReentry(t *testing.T) {
	st := NewStore()

	st.SetChallenge(Challenge{Question: "q1", Options: []string{"a", "b"}})
	st.SetChallenge(Challenge{Question: "q2", Options: []string{"c"}, Offline: true})

	c, ok := st.Challenge()
	require.True(t, ok)
	assert.Equal(t, "q2", c.Question)
	assert.True(t, c.Offline)
}

func TestStore_ResetIsAtomicAndIdempotent(t *testing.T) {
	st := NewStore()
	require.NoError(t, st.Begin("7", "0001"))
	require.NoError(t, st.SetSensorStatus(SensorStatus{RTC: true}))
	require.NoError(t, st.SetFingerprint("x"))
	st.SetChallenge(Challenge{Question: "q"})
	st.AppendLog("assembling record")
	st.SetStep(5)

	st.Reset()
	st.Reset() // idempotent

	snap := st.Snapshot()
	assert.Equal(t, Session{}, snap)
	assert.Equal(t, 0, snap.Step)
	assert.False(t, snap.Started())

	// The store is reusable after reset.
	require.NoError(t, st.Begin("8", "0002"))
	require.NoError(t, st.SetFingerprint("y"))
}

func TestStore_SnapshotIsDeepCopy(t *testing.T) {
	st := NewStore()
	require.NoError(t, st.Begin("9", "0001"))
	require.NoError(t, st.SetGPS(Coordinates{Latitude: 1, Longitude: 2}))
	st.SetChallenge(Challenge{Question: "q", Options: []string{"a"}})

	snap := st.Snapshot()
	snap.Record.GPS.Latitude = 99
	snap.Challenge.Options[0] = "mutated"

	rec := st.Record()
	assert.InDelta(t, 1.0, rec.GPS.Latitude, 1e-9)
	c, _ := st.Challenge()
	assert.Equal(t, "a", c.Options[0])
}
