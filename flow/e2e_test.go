package flow_test

import (
	"encoding/base64"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmcleod/authbox/api"
	"github.com/jmcleod/authbox/client"
	"github.com/jmcleod/authbox/flow"
	"github.com/jmcleod/authbox/sensor"
	"github.com/jmcleod/authbox/session"
	"github.com/jmcleod/authbox/storage/memory"
)

// TestEndToEndAgainstRealServer runs the full kiosk flow against the real
// api package instead of a scripted fake, covering the wire contract both
// sides actually speak.
func TestEndToEndAgainstRealServer(t *testing.T) {
	frames := sensor.NewFrameCache()
	fixes := sensor.NewFixCache()
	a := api.New(memory.NewRepository(), frames, fixes,
		api.WithDataDir(t.TempDir()),
		api.WithLogger(testLogger(t)))
	require.NoError(t, a.SeedUser("0001", "1111", "Kiosk Operator"))

	// Simulate the ESP32 uplinks having pushed once already.
	frames.Set(base64.StdEncoding.EncodeToString([]byte("frame")))
	fixes.Set(37.5665, 126.978)

	r := chi.NewRouter()
	r.Mount("/", a.Router())
	srv := httptest.NewServer(r)
	defer srv.Close()

	st := session.NewStore()
	rt := flow.NewRuntime(st, client.New(srv.URL, st), testConfig(), testLogger(t))
	ctrl := flow.NewController(rt)
	require.NoError(t, ctrl.Enter(t.Context()))

	steps := []struct {
		step flow.StepID
		in   flow.Input
	}{
		{flow.StepLogin, flow.Input{Credentials: testCredentials(t, "0001", "1111")}},
		{flow.StepStandby, flow.Input{}},
		{flow.StepChecklist, flow.Input{}},
		{flow.StepFingerprint, flow.Input{}},
		{flow.StepCamera, flow.Input{}},
		{flow.StepOTP, flow.Input{Answer: "B. Seoul"}},
		{flow.StepGPS, flow.Input{}},
		{flow.StepSignature, flow.Input{SignatureImage: testSignature}},
		{flow.StepReview, flow.Input{Consent: true}},
		{flow.StepEmail, flow.Input{Email: "operator@example.com"}},
		{flow.StepSending, flow.Input{}},
	}
	for _, s := range steps {
		require.Equal(t, s.step, ctrl.Current())
		require.NoError(t, ctrl.Act(t.Context(), s.in),
			"acting on %s: %s", s.step, ctrl.StepError())
	}
	require.Equal(t, flow.StepResult, ctrl.Current())

	snap := st.Snapshot()
	assert.Equal(t, "1", snap.ID, "first issued log id")
	assert.NotEmpty(t, snap.Record.Fingerprint)
	assert.NotEmpty(t, snap.Record.Camera)
	assert.Equal(t, session.OTPPassed, snap.Record.OTP)
	require.NotNil(t, snap.Record.GPS)
	assert.InDelta(t, 37.5665, snap.Record.GPS.Latitude, 1e-9)
	assert.NotEmpty(t, snap.Record.Signature)
	assert.NotEmpty(t, snap.Record.Timestamp)

	assert.Contains(t, st.LogLines(), "mail delivered to operator@example.com")
}
