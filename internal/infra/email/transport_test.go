package email

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"release_notifier/internal/domain/release"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

type fakeSender struct {
	sent []*mail.Msg
	err  error
}

func (f *fakeSender) DialAndSendWithContext(_ context.Context, messages ...*mail.Msg) error {
	f.sent = append(f.sent, messages...)
	return f.err
}

func sampleMessage() *release.Message {
	return &release.Message{
		Tag:       release.NewVersion(2, 3, 2),
		Subject:   "Website Release Note - v2.3.2",
		HTMLBody:  "<b>hi</b>",
		TextBody:  "hi",
		From:      "release@x.com",
		To:        []string{"a@x.com", "b@x.com"},
		Cc:        []string{"c@x.com"},
		Bcc:       []string{"hidden@x.com"},
		CreatedAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		Attachment: &release.Attachment{
			Filename:    "Website_Release_Note.docx",
			ContentType: release.DocxContentType,
			Data:        []byte("PK\x03\x04fake"),
		},
	}
}

func newTestTransport(s sender) *SMTPTransport {
	logger, _ := test.NewNullLogger()
	tr := NewSMTPTransport(Settings{Host: "smtp.example.com", Port: 465, Timeout: time.Second}, logger)
	tr.newSender = func(Settings) (sender, error) { return s, nil }
	return tr
}

func TestBuildMsgRendersHeadersAndAttachment(t *testing.T) {
	m, err := BuildMsg(sampleMessage())
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()

	assert.Contains(t, raw, "Subject: Website Release Note - v2.3.2")
	assert.Contains(t, raw, "a@x.com")
	assert.Contains(t, raw, "c@x.com")
	assert.NotContains(t, raw, "hidden@x.com")
	assert.Contains(t, raw, "text/plain")
	assert.Contains(t, raw, "text/html")
	assert.Contains(t, raw, release.DocxContentType)
	assert.Contains(t, raw, "Website_Release_Note.docx")
}

func TestBuildMsgWithoutAttachment(t *testing.T) {
	msg := sampleMessage()
	msg.Attachment = nil

	m, err := BuildMsg(msg)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "Website_Release_Note.docx")
}

func TestBuildMsgRejectsInvalidSender(t *testing.T) {
	msg := sampleMessage()
	msg.From = "not an address"

	_, err := BuildMsg(msg)
	require.Error(t, err)
}

func TestSendUsesFullEnvelope(t *testing.T) {
	fake := &fakeSender{}
	tr := newTestTransport(fake)

	require.NoError(t, tr.Send(context.Background(), sampleMessage()))
	require.Len(t, fake.sent, 1)

	rcpts, err := fake.sent[0].GetRecipients()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a@x.com", "b@x.com", "c@x.com", "hidden@x.com"}, rcpts)
}

func TestSendWrapsTransportError(t *testing.T) {
	authErr := errors.New("535 authentication failed")
	tr := newTestTransport(&fakeSender{err: authErr})

	err := tr.Send(context.Background(), sampleMessage())
	require.ErrorIs(t, err, authErr)
	assert.Contains(t, err.Error(), "smtp.example.com:465")
}
