package api

import (
	"log/slog"
	"net/http"
	"time"
)

// AuditEvent identifies the type of security-relevant action being logged.
type AuditEvent string

const (
	AuditLoginSuccess        AuditEvent = "login_success"
	AuditLoginFailure        AuditEvent = "login_failure"
	AuditLoginRateLimited    AuditEvent = "login_rate_limited"
	AuditVerificationStarted AuditEvent = "verification_started"
	AuditFactorCaptured      AuditEvent = "factor_captured"
	AuditFactorRejected      AuditEvent = "factor_rejected"
	AuditOTPPassed           AuditEvent = "otp_passed"
	AuditOTPFailed           AuditEvent = "otp_failed"
	AuditMailSent            AuditEvent = "mail_sent"
	AuditMailFailed          AuditEvent = "mail_failed"
	AuditUplinkReceived      AuditEvent = "uplink_received"
)

// auditLogger wraps slog.Logger for structured security audit logging.
type auditLogger struct {
	logger  *slog.Logger
	metrics *metricsCollector
}

func newAuditLogger(logger *slog.Logger) *auditLogger {
	return &auditLogger{
		logger: logger.With("component", "audit"),
	}
}

// log writes a structured audit log entry. User ids are short operator
// codes, safe for logs; passwords and image payloads never pass through.
func (al *auditLogger) log(event AuditEvent, r *http.Request, attrs ...slog.Attr) {
	baseAttrs := []slog.Attr{
		slog.String("event", string(event)),
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}
	baseAttrs = append(baseAttrs, attrs...)

	al.logger.LogAttrs(r.Context(), slog.LevelInfo, "audit", baseAttrs...)
	if al.metrics != nil {
		al.metrics.recordEvent(event)
	}
}

// logEvent is a convenience for events tied to a verification log.
func (al *auditLogger) logEvent(event AuditEvent, r *http.Request, logID string, extra ...slog.Attr) {
	attrs := []slog.Attr{
		slog.String("log_id", logID),
	}
	attrs = append(attrs, extra...)
	al.log(event, r, attrs...)
}

// logFailure logs a rejected request with its reason.
func (al *auditLogger) logFailure(event AuditEvent, r *http.Request, reason string, extra ...slog.Attr) {
	attrs := []slog.Attr{
		slog.String("reason", reason),
	}
	attrs = append(attrs, extra...)
	al.log(event, r, attrs...)
}
