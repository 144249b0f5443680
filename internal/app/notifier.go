// internal/app/notifier.go
package app

import (
	"context"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf16"

	"release_notifier/internal/domain/mailer"
	"release_notifier/internal/domain/release"
	domainTelegram "release_notifier/internal/domain/telegram"
	"release_notifier/internal/infra/config"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const (
	subjectLabel     = "Website Release Note"
	telegramMaxUnits = 4096 // Telegram counts message length in UTF-16 code units
)

// Notifier emails the release note and, when configured, announces it in a Telegram chat.
type Notifier struct {
	cfg       config.EmailConfig
	transport mailer.Transport
	chat      domainTelegram.Client // nil disables the chat announcement
	chatID    int64
	readFile  func(string) ([]byte, error)
	now       func() time.Time
	logger    logrus.FieldLogger
}

func NewNotifier(cfg config.EmailConfig, transport mailer.Transport, logger logrus.FieldLogger) *Notifier {
	return &Notifier{
		cfg:       cfg,
		transport: transport,
		readFile:  os.ReadFile,
		now:       time.Now,
		logger:    logger.WithField("component", "notifier"),
	}
}

// WithTelegram enables the chat announcement sent after a successful email.
func (n *Notifier) WithTelegram(client domainTelegram.Client, chatID int64) *Notifier {
	n.chat = client
	n.chatID = chatID
	return n
}

// Validate checks the preconditions for sending. It performs no I/O.
func (n *Notifier) Validate() error {
	var missing []string
	if n.cfg.Sender == "" {
		missing = append(missing, "EMAIL_SENDER")
	}
	if n.cfg.Password == "" {
		missing = append(missing, "EMAIL_PASSWORD")
	}
	if len(n.cfg.To) == 0 {
		missing = append(missing, "EMAIL_RECEIVER")
	}
	if len(missing) > 0 {
		return &ConfigError{Missing: missing}
	}
	return nil
}

// RecipientCount is the size of the envelope: To, Cc and Bcc.
func (n *Notifier) RecipientCount() int {
	return len(n.cfg.To) + len(n.cfg.Cc) + len(n.cfg.Bcc)
}

// Notify sends the release email. Configuration and transport failures are fatal;
// an unreadable attachment only drops the attachment.
func (n *Notifier) Notify(ctx context.Context, tag release.Version, body, releaseDate, attachmentPath string) error {
	if err := n.Validate(); err != nil {
		n.logger.WithError(err).Error("Email configuration incomplete, not sending")
		return err
	}

	msg := n.BuildMessage(tag, body, releaseDate, attachmentPath)
	log := n.logger.WithFields(logrus.Fields{"tag": tag.String(), "recipients": len(msg.Recipients())})

	if err := n.transport.Send(ctx, msg); err != nil {
		log.WithError(err).Error("Email sending failed")
		return &DeliveryError{Err: err}
	}
	log.Infof("Email sent to: %s", strings.Join(msg.Recipients(), ", "))

	n.announce(tag, body, releaseDate)
	return nil
}

// BuildMessage assembles the release message from the configured sender and recipients.
func (n *Notifier) BuildMessage(tag release.Version, body, releaseDate, attachmentPath string) *release.Message {
	msg := &release.Message{
		Tag:         tag,
		ReleaseDate: releaseDate,
		Subject:     fmt.Sprintf("%s - %s", subjectLabel, tag),
		HTMLBody:    RenderHTMLBody(tag.String(), releaseDate, body),
		TextBody:    RenderTextBody(tag.String(), releaseDate, body),
		From:        n.cfg.Sender,
		To:          n.cfg.To,
		Cc:          n.cfg.Cc,
		Bcc:         n.cfg.Bcc,
		CreatedAt:   n.now(),
	}

	if attachmentPath == "" {
		return msg
	}
	data, err := n.readFile(attachmentPath)
	if err != nil {
		n.logger.WithError(err).WithField("path", attachmentPath).Warn("Failed to attach release note, sending without it")
		return msg
	}
	msg.Attachment = &release.Attachment{
		Filename:    filepath.Base(attachmentPath),
		ContentType: release.DocxContentType,
		Data:        data,
	}
	return msg
}

// RenderHTMLBody escapes all document text; newlines become <br>.
func RenderHTMLBody(tag, releaseDate, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>Version:</b> %s<br><b>Release Date:</b> %s<br><br>",
		html.EscapeString(tag), html.EscapeString(releaseDate))
	b.WriteString(strings.ReplaceAll(html.EscapeString(body), "\n", "<br>"))
	return b.String()
}

func RenderTextBody(tag, releaseDate, body string) string {
	return fmt.Sprintf("Version: %s\nRelease Date: %s\n\n%s\n", tag, releaseDate, body)
}

func (n *Notifier) announce(tag release.Version, body, releaseDate string) {
	if n.chat == nil {
		return
	}
	text := fmt.Sprintf("Release %s (%s)\n\n%s", tag, releaseDate, body)
	text = truncateUTF16(text, telegramMaxUnits)
	if err := n.chat.SendMessage(n.chatID, text, &telebot.SendOptions{DisableWebPagePreview: true}); err != nil {
		n.logger.WithError(err).WithField("chat_id", n.chatID).Warn("Telegram announcement failed")
		return
	}
	n.logger.WithField("chat_id", n.chatID).Info("Telegram announcement sent")
}

// truncateUTF16 cuts s so that it fits in maxUnits UTF-16 code units, ending with an ellipsis when cut.
func truncateUTF16(s string, maxUnits int) string {
	if utf16Len(s) <= maxUnits {
		return s
	}
	limit := maxUnits - 1 // room for "…"
	units := 0
	for i, r := range s {
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1 // invalid runes are sent as U+FFFD
		}
		if units+n > limit {
			return s[:i] + "…"
		}
		units += n
	}
	return s
}

func utf16Len(s string) int {
	units := 0
	for _, r := range s {
		if n := utf16.RuneLen(r); n > 0 {
			units += n
		} else {
			units++
		}
	}
	return units
}
