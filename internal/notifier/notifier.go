// Package notifier delivers operator emails.
package notifier

import (
	"context"

	"github.com/aleister1102/feedwatch/internal/common"
	"github.com/aleister1102/feedwatch/internal/config"
	"github.com/rs/zerolog"
)

// Notifier sends one HTML email to the configured operators.
type Notifier interface {
	SendEmail(ctx context.Context, subject, bodyHTML string) error
}

// NewNotifier picks SMTP delivery when it is configured and log-only
// delivery otherwise. A PGP key file wraps the result in PGPNotifier.
func NewNotifier(cfg config.NotificationConfig, logger zerolog.Logger) (Notifier, error) {
	var n Notifier
	if cfg.SMTPEnabled() {
		n = NewSMTPNotifier(cfg, logger)
	} else {
		logger.Warn().Msg("SMTP is not configured, notifications will only be logged")
		n = NewLogNotifier(cfg.SubjectPrefix, logger)
	}

	if cfg.PGPPublicKeyFile == "" {
		return n, nil
	}

	pgp, err := LoadPGPService(cfg.PGPPublicKeyFile)
	if err != nil {
		return nil, common.WrapError(err, "failed to load PGP keyring")
	}
	return NewPGPNotifier(n, pgp, cfg.Recipients), nil
}

// LogNotifier writes notifications to the log instead of sending them.
type LogNotifier struct {
	prefix string
	logger zerolog.Logger
}

// NewLogNotifier creates a log only notifier.
func NewLogNotifier(prefix string, logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{
		prefix: prefix,
		logger: logger.With().Str("component", "LogNotifier").Logger(),
	}
}

// SendEmail logs the subject and body.
func (n *LogNotifier) SendEmail(_ context.Context, subject, bodyHTML string) error {
	n.logger.Info().
		Str("subject", withPrefix(n.prefix, subject)).
		Str("body", bodyHTML).
		Msg("Notification")
	return nil
}

func withPrefix(prefix, subject string) string {
	if prefix == "" {
		return subject
	}
	return prefix + " " + subject
}
