// internal/domain/release/message.go
package release

import "time"

// DocxContentType is the MIME type of the release-notes document.
const DocxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Attachment is a binary file carried by a Message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is the release announcement assembled for a single send.
type Message struct {
	Tag         Version
	ReleaseDate string
	Subject     string
	HTMLBody    string
	TextBody    string
	From        string
	To          []string
	Cc          []string
	Bcc         []string
	Attachment  *Attachment // nil when the document could not be read
	CreatedAt   time.Time
}

// Recipients is the envelope list: To, then Cc, then Bcc.
func (m *Message) Recipients() []string {
	all := make([]string, 0, len(m.To)+len(m.Cc)+len(m.Bcc))
	all = append(all, m.To...)
	all = append(all, m.Cc...)
	all = append(all, m.Bcc...)
	return all
}
