package email

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"release_notifier/internal/domain/mailer"
	"release_notifier/internal/domain/release"

	"github.com/sirupsen/logrus"
	"github.com/wneessen/go-mail"
)

// Settings describes the SMTP relay. Connections use implicit TLS.
type Settings struct {
	Host     string
	Port     int
	Username string
	Password string
	Timeout  time.Duration
}

// sender is the part of *mail.Client the transport uses.
type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// SMTPTransport implements mailer.Transport with go-mail.
type SMTPTransport struct {
	settings  Settings
	newSender func(Settings) (sender, error)
	logger    logrus.FieldLogger
}

var _ mailer.Transport = (*SMTPTransport)(nil)

func NewSMTPTransport(settings Settings, logger logrus.FieldLogger) *SMTPTransport {
	return &SMTPTransport{
		settings:  settings,
		newSender: newClient,
		logger:    logger.WithField("component", "email"),
	}
}

func newClient(s Settings) (sender, error) {
	client, err := mail.NewClient(s.Host,
		mail.WithPort(s.Port),
		mail.WithSSL(),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.Username),
		mail.WithPassword(s.Password),
		mail.WithTimeout(s.Timeout),
	)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Send delivers msg to To, Cc and Bcc. Bcc addresses are part of the envelope only.
func (t *SMTPTransport) Send(ctx context.Context, msg *release.Message) error {
	m, err := BuildMsg(msg)
	if err != nil {
		return err
	}

	client, err := t.newSender(t.settings)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client for %s:%d: %w", t.settings.Host, t.settings.Port, err)
	}

	t.logger.WithFields(logrus.Fields{
		"host":       t.settings.Host,
		"port":       t.settings.Port,
		"recipients": len(msg.Recipients()),
	}).Debug("Connecting to mail relay")

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("failed to send via %s:%d: %w", t.settings.Host, t.settings.Port, err)
	}
	return nil
}

// BuildMsg converts a release message into a multipart go-mail message:
// plain text with an HTML alternative, plus the optional attachment.
func BuildMsg(msg *release.Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return nil, fmt.Errorf("invalid sender address %q: %w", msg.From, err)
	}
	if err := m.To(msg.To...); err != nil {
		return nil, fmt.Errorf("invalid To address: %w", err)
	}
	if len(msg.Cc) > 0 {
		if err := m.Cc(msg.Cc...); err != nil {
			return nil, fmt.Errorf("invalid Cc address: %w", err)
		}
	}
	if len(msg.Bcc) > 0 {
		if err := m.Bcc(msg.Bcc...); err != nil {
			return nil, fmt.Errorf("invalid Bcc address: %w", err)
		}
	}

	m.Subject(msg.Subject)
	if msg.CreatedAt.IsZero() {
		m.SetDate()
	} else {
		m.SetDateWithValue(msg.CreatedAt)
	}

	m.SetBodyString(mail.TypeTextPlain, msg.TextBody)
	m.AddAlternativeString(mail.TypeTextHTML, msg.HTMLBody)

	if a := msg.Attachment; a != nil {
		err := m.AttachReader(a.Filename, bytes.NewReader(a.Data), mail.WithFileContentType(mail.ContentType(a.ContentType)))
		if err != nil {
			return nil, fmt.Errorf("failed to attach %s: %w", a.Filename, err)
		}
	}
	return m, nil
}
