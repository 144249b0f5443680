package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"release_notifier/internal/domain/release"
	"release_notifier/internal/infra/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var v232 = release.NewVersion(2, 3, 2)

func validEmailConfig() config.EmailConfig {
	return config.EmailConfig{
		Sender:   "release@x.com",
		Password: "app-password",
		To:       config.SplitAddressList(" a@x.com, b@x.com ,"),
		Cc:       []string{"c@x.com"},
		Bcc:      []string{"hidden@x.com"},
	}
}

func newNotifier(cfg config.EmailConfig, tr *fakeTransport) *Notifier {
	logger, _ := nullLogger()
	return NewNotifier(cfg, tr, logger)
}

func TestNotifyMissingConfigMakesNoTransportCalls(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.EmailConfig)
		missing string
	}{
		{"sender", func(c *config.EmailConfig) { c.Sender = "" }, "EMAIL_SENDER"},
		{"password", func(c *config.EmailConfig) { c.Password = "" }, "EMAIL_PASSWORD"},
		{"receivers", func(c *config.EmailConfig) { c.To = config.SplitAddressList(" , ") }, "EMAIL_RECEIVER"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validEmailConfig()
			tt.mutate(&cfg)
			tr := &fakeTransport{}
			chat := &fakeChat{}

			err := newNotifier(cfg, tr).WithTelegram(chat, 42).Notify(context.Background(), v232, "body", "2025-01-01 10:00 IST", "")
			require.ErrorIs(t, err, ErrMissingEmailConfig)

			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, []string{tt.missing}, cfgErr.Missing)
			assert.Empty(t, tr.sent)
			assert.Empty(t, chat.texts)
		})
	}
}

func TestNotifyBuildsMessage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Website_Release_Note.docx")
	require.NoError(t, os.WriteFile(path, []byte("PK\x03\x04docx"), 0o600))
	tr := &fakeTransport{}

	err := newNotifier(validEmailConfig(), tr).Notify(context.Background(), v232, "Fixed login bug.\nImproved load time.", "2025-03-01 14:30 IST", path)
	require.NoError(t, err)
	require.Len(t, tr.sent, 1)

	msg := tr.sent[0]
	assert.Contains(t, msg.Subject, "v2.3.2")
	assert.Equal(t, "release@x.com", msg.From)
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, msg.To)
	assert.Equal(t, []string{"c@x.com"}, msg.Cc)
	assert.Equal(t, []string{"a@x.com", "b@x.com", "c@x.com", "hidden@x.com"}, msg.Recipients())
	assert.Contains(t, msg.HTMLBody, "<b>Version:</b> v2.3.2<br><b>Release Date:</b> 2025-03-01 14:30 IST<br><br>")
	assert.Contains(t, msg.HTMLBody, "Fixed login bug.<br>Improved load time.")
	assert.Contains(t, msg.TextBody, "Fixed login bug.\nImproved load time.")

	require.NotNil(t, msg.Attachment)
	assert.Equal(t, "Website_Release_Note.docx", msg.Attachment.Filename)
	assert.Equal(t, release.DocxContentType, msg.Attachment.ContentType)
	assert.Equal(t, []byte("PK\x03\x04docx"), msg.Attachment.Data)
}

func TestNotifyEscapesHTML(t *testing.T) {
	tr := &fakeTransport{}
	body := `<script>alert("x")</script> & more`

	require.NoError(t, newNotifier(validEmailConfig(), tr).Notify(context.Background(), v232, body, "today", ""))

	html := tr.sent[0].HTMLBody
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt; &amp; more")
	assert.Contains(t, tr.sent[0].TextBody, body)
}

func TestNotifyMissingAttachmentStillSends(t *testing.T) {
	tr := &fakeTransport{}

	err := newNotifier(validEmailConfig(), tr).Notify(context.Background(), v232, "body", "today", filepath.Join(t.TempDir(), "missing.docx"))
	require.NoError(t, err)
	require.Len(t, tr.sent, 1)
	assert.Nil(t, tr.sent[0].Attachment)
}

func TestNotifyTransportFailureIsFatal(t *testing.T) {
	authErr := errors.New("535 authentication failed")
	tr := &fakeTransport{err: authErr}
	chat := &fakeChat{}

	err := newNotifier(validEmailConfig(), tr).WithTelegram(chat, 42).Notify(context.Background(), v232, "body", "today", "")
	require.ErrorIs(t, err, ErrDelivery)
	require.ErrorIs(t, err, authErr)

	var delivery *DeliveryError
	require.ErrorAs(t, err, &delivery)
	assert.Len(t, tr.sent, 1, "no retry")
	assert.Empty(t, chat.texts)
}

func TestNotifyAnnouncesOnTelegram(t *testing.T) {
	chat := &fakeChat{}

	err := newNotifier(validEmailConfig(), &fakeTransport{}).WithTelegram(chat, -1001).
		Notify(context.Background(), v232, "Fixed login bug.", "2025-03-01 14:30 IST", "")
	require.NoError(t, err)
	require.Len(t, chat.texts, 1)
	assert.Equal(t, int64(-1001), chat.chatIDs[0])
	assert.Equal(t, "Release v2.3.2 (2025-03-01 14:30 IST)\n\nFixed login bug.", chat.texts[0])
}

func TestNotifyTelegramFailureIsNotFatal(t *testing.T) {
	chat := &fakeChat{err: errors.New("chat not found")}

	err := newNotifier(validEmailConfig(), &fakeTransport{}).WithTelegram(chat, 1).
		Notify(context.Background(), v232, strings.Repeat("x", 5000), "today", "")
	require.NoError(t, err)
	require.Len(t, chat.texts, 1)
	assert.Equal(t, telegramMaxUnits, utf16Len(chat.texts[0]))
}

func TestNotifyTelegramTruncatesByUTF16Units(t *testing.T) {
	chat := &fakeChat{}
	body := strings.Repeat("🚀", 3000) // 6000 UTF-16 units, 3000 runes

	err := newNotifier(validEmailConfig(), &fakeTransport{}).WithTelegram(chat, 1).
		Notify(context.Background(), v232, body, "today", "")
	require.NoError(t, err)
	require.Len(t, chat.texts, 1)

	text := chat.texts[0]
	assert.LessOrEqual(t, utf16Len(text), telegramMaxUnits)
	assert.True(t, strings.HasSuffix(text, "🚀…"), "surrogate pairs are never split")
}

func TestTruncateUTF16(t *testing.T) {
	assert.Equal(t, "short", truncateUTF16("short", 10))
	assert.Equal(t, "abcd…", truncateUTF16("abcdefgh", 5))
	assert.Equal(t, "a…", truncateUTF16("a😀b", 3), "emoji needs two units")
	assert.Equal(t, "a😀…", truncateUTF16("a😀bc", 4))
}
