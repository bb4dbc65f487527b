package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
)

// Mailer delivers the verification result notification.
type Mailer interface {
	// Send delivers body to the recipient and returns the address it
	// actually targeted (relays may rewrite it).
	Send(ctx context.Context, recipient, subject, body string) (targetMail string, err error)
}

// logMailer records the notification instead of sending it. Used on kiosks
// without an SMTP relay so the flow still completes end to end.
type logMailer struct {
	logger *slog.Logger
}

func (m logMailer) Send(ctx context.Context, recipient, subject, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.logger.LogAttrs(ctx, slog.LevelInfo, "mail suppressed, no relay configured",
		slog.String("recipient", recipient),
		slog.String("subject", subject))
	return recipient, nil
}

// SMTPMailer sends through a plain SMTP relay.
type SMTPMailer struct {
	Addr string // host:port
	From string
	Auth smtp.Auth
}

func (m SMTPMailer) Send(ctx context.Context, recipient, subject, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	msg := strings.Join([]string{
		"From: " + m.From,
		"To: " + recipient,
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")
	if err := smtp.SendMail(m.Addr, m.Auth, m.From, []string{recipient}, []byte(msg)); err != nil {
		return "", fmt.Errorf("smtp send: %w", err)
	}
	return recipient, nil
}
