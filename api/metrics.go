package api

import (
	"sync"
	"time"
)

// AlertType identifies the kind of anomaly detected.
type AlertType string

const (
	AlertLoginFailureSpike AlertType = "login_failure_spike"
	AlertFactorRejectSpike AlertType = "factor_reject_spike"
)

// AlertEvent describes an anomaly that triggered an alert.
type AlertEvent struct {
	Type      AlertType `json:"type"`
	Message   string    `json:"message"`
	Count     int       `json:"count"`
	Threshold int       `json:"threshold"`
	Timestamp time.Time `json:"timestamp"`
}

// AlertFunc is the callback invoked when an anomaly is detected.
type AlertFunc func(AlertEvent)

// metricsCollector tracks sliding window counters for anomaly detection.
// A kiosk sits in a public space; a burst of bad logins or rejected factor
// captures usually means someone is poking at it.
type metricsCollector struct {
	mu sync.Mutex

	loginFailures  []time.Time
	loginWindow    time.Duration
	loginThreshold int

	factorRejects   []time.Time
	rejectWindow    time.Duration
	rejectThreshold int

	alertFn AlertFunc
}

const (
	defaultLoginFailureWindow    = 1 * time.Minute
	defaultLoginFailureThreshold = 10
	defaultRejectWindow          = 5 * time.Minute
	defaultRejectThreshold       = 20
)

func newMetricsCollector(alertFn AlertFunc) *metricsCollector {
	return &metricsCollector{
		loginWindow:     defaultLoginFailureWindow,
		loginThreshold:  defaultLoginFailureThreshold,
		rejectWindow:    defaultRejectWindow,
		rejectThreshold: defaultRejectThreshold,
		alertFn:         alertFn,
	}
}

// recordEvent inspects an audit event and updates the relevant counters.
func (m *metricsCollector) recordEvent(event AuditEvent) {
	if m == nil || m.alertFn == nil {
		return
	}
	switch event {
	case AuditLoginFailure:
		m.recordLoginFailure()
	case AuditFactorRejected, AuditOTPFailed:
		m.recordFactorReject()
	}
}

func (m *metricsCollector) recordLoginFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	m.loginFailures = append(m.loginFailures, now)
	m.loginFailures = trimWindow(m.loginFailures, now, m.loginWindow)

	if len(m.loginFailures) >= m.loginThreshold {
		m.alertFn(AlertEvent{
			Type:      AlertLoginFailureSpike,
			Message:   "login failure rate exceeds threshold",
			Count:     len(m.loginFailures),
			Threshold: m.loginThreshold,
			Timestamp: now,
		})
		// Reset to avoid repeated alerts within the same spike.
		m.loginFailures = m.loginFailures[:0]
	}
}

func (m *metricsCollector) recordFactorReject() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	m.factorRejects = append(m.factorRejects, now)
	m.factorRejects = trimWindow(m.factorRejects, now, m.rejectWindow)

	if len(m.factorRejects) >= m.rejectThreshold {
		m.alertFn(AlertEvent{
			Type:      AlertFactorRejectSpike,
			Message:   "factor rejection rate exceeds threshold",
			Count:     len(m.factorRejects),
			Threshold: m.rejectThreshold,
			Timestamp: now,
		})
		m.factorRejects = m.factorRejects[:0]
	}
}

// trimWindow removes entries older than (now - window) from the sorted slice.
func trimWindow(times []time.Time, now time.Time, window time.Duration) []time.Time {
	cutoff := now.Add(-window)
	start := 0
	for start < len(times) && times[start].Before(cutoff) {
		start++
	}
	return times[start:]
}
