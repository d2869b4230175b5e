package notifier

import (
	"context"
	"time"

	"github.com/aleister1102/feedwatch/internal/common"
	"github.com/aleister1102/feedwatch/internal/config"
	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"
)

// mailSender is the part of *mail.Client used for delivery.
type mailSender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// SMTPNotifier sends HTML mail over SMTP with mandatory STARTTLS.
type SMTPNotifier struct {
	cfg    config.NotificationConfig
	logger zerolog.Logger
	dial   func() (mailSender, error)
}

// NewSMTPNotifier creates a notifier from the notification_config section.
func NewSMTPNotifier(cfg config.NotificationConfig, logger zerolog.Logger) *SMTPNotifier {
	n := &SMTPNotifier{
		cfg:    cfg,
		logger: logger.With().Str("component", "SMTPNotifier").Logger(),
	}
	n.dial = n.newClient
	return n
}

func (n *SMTPNotifier) newClient() (mailSender, error) {
	opts := []mail.Option{
		mail.WithPort(n.cfg.SMTPPort),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTimeout(30 * time.Second),
	}
	if n.cfg.SMTPUsername != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(n.cfg.SMTPUsername),
			mail.WithPassword(n.cfg.SMTPPassword),
		)
	}

	client, err := mail.NewClient(n.cfg.SMTPHost, opts...)
	if err != nil {
		return nil, common.WrapError(err, "failed to create SMTP client")
	}
	return client, nil
}

// SendEmail delivers one message to every configured recipient.
func (n *SMTPNotifier) SendEmail(ctx context.Context, subject, bodyHTML string) error {
	msg, err := n.buildMessage(subject, bodyHTML)
	if err != nil {
		return err
	}

	client, err := n.dial()
	if err != nil {
		return err
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return common.WrapErrorf(err, "failed to send email %q", subject)
	}

	n.logger.Info().Str("subject", subject).Strs("recipients", n.cfg.Recipients).Msg("Email sent")
	return nil
}

func (n *SMTPNotifier) buildMessage(subject, bodyHTML string) (*mail.Msg, error) {
	msg := mail.NewMsg()

	sender := n.cfg.Sender
	if sender == "" {
		sender = n.cfg.SMTPUsername
	}
	if err := msg.From(sender); err != nil {
		return nil, common.WrapError(err, "invalid sender address")
	}
	if err := msg.To(n.cfg.Recipients...); err != nil {
		return nil, common.WrapError(err, "invalid recipient address")
	}

	msg.Subject(withPrefix(n.cfg.SubjectPrefix, subject))
	msg.SetDate()
	msg.SetBodyString(mail.TypeTextHTML, bodyHTML)
	return msg, nil
}
