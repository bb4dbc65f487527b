package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsLoginFailureSpike(t *testing.T) {
	var alerts []AlertEvent
	m := newMetricsCollector(func(e AlertEvent) { alerts = append(alerts, e) })
	m.loginThreshold = 3

	m.recordEvent(AuditLoginFailure)
	m.recordEvent(AuditLoginFailure)
	assert.Empty(t, alerts)

	m.recordEvent(AuditLoginFailure)
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertLoginFailureSpike, alerts[0].Type)
	assert.Equal(t, 3, alerts[0].Count)

	// Window resets after an alert; the next failure starts a new count.
	m.recordEvent(AuditLoginFailure)
	assert.Len(t, alerts, 1)
}

func TestMetricsFactorRejectSpike(t *testing.T) {
	var alerts []AlertEvent
	m := newMetricsCollector(func(e AlertEvent) { alerts = append(alerts, e) })
	m.rejectThreshold = 2

	m.recordEvent(AuditFactorRejected)
	m.recordEvent(AuditOTPFailed)
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertFactorRejectSpike, alerts[0].Type)
}

func TestMetricsIgnoresUnrelatedEvents(t *testing.T) {
	var alerts []AlertEvent
	m := newMetricsCollector(func(e AlertEvent) { alerts = append(alerts, e) })
	m.loginThreshold = 1

	m.recordEvent(AuditLoginSuccess)
	m.recordEvent(AuditFactorCaptured)
	assert.Empty(t, alerts)
}

func TestTrimWindow(t *testing.T) {
	now := time.Now()
	times := []time.Time{
		now.Add(-2 * time.Minute),
		now.Add(-30 * time.Second),
		now,
	}
	kept := trimWindow(times, now, time.Minute)
	assert.Len(t, kept, 2)
}
