// internal/app/note_extractor.go
package app

import (
	"strings"
	"time"

	"release_notifier/internal/infra/docx"

	"github.com/sirupsen/logrus"
)

const (
	PlaceholderNoContent = "(No content found in release note.)"
	PlaceholderReadError = "(Error reading release note.)"

	releaseDateLayout = "2006-01-02 15:04 IST"
)

// istZone is a fixed UTC+05:30 offset; release dates are always reported in it.
var istZone = time.FixedZone("IST", 5*60*60+30*60)

// NoteStatus tells whether Note.Text is document content or a placeholder.
type NoteStatus string

const (
	NoteContent    NoteStatus = "CONTENT"
	NoteEmpty      NoteStatus = "EMPTY"
	NoteUnreadable NoteStatus = "UNREADABLE"
)

// Note is the text pulled from the release-notes document.
type Note struct {
	Text   string
	Status NoteStatus
}

type NoteExtractor struct {
	readParagraphs func(path string) ([]string, error)
	modTime        func(path string) (time.Time, error)
	now            func() time.Time
	logger         logrus.FieldLogger
}

func NewNoteExtractor(logger logrus.FieldLogger) *NoteExtractor {
	return &NoteExtractor{
		readParagraphs: docx.ReadParagraphs,
		modTime:        docx.ModTime,
		now:            time.Now,
		logger:         logger.WithField("component", "note_extractor"),
	}
}

// Extract joins the non-blank paragraphs of the document with newlines.
// It never fails: unreadable or empty documents yield a placeholder.
func (e *NoteExtractor) Extract(path string) Note {
	log := e.logger.WithField("path", path)

	paragraphs, err := e.readParagraphs(path)
	if err != nil {
		log.WithError(err).Error("Failed to read release note")
		return Note{Text: PlaceholderReadError, Status: NoteUnreadable}
	}

	kept := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		log.Warn("Release note has no content")
		return Note{Text: PlaceholderNoContent, Status: NoteEmpty}
	}

	log.WithField("paragraphs", len(kept)).Info("Read release note content")
	return Note{Text: strings.Join(kept, "\n"), Status: NoteContent}
}

// ReleaseDate formats the document's modification time in IST.
// If the file cannot be stat'ed the current time is used.
func (e *NoteExtractor) ReleaseDate(path string) string {
	ts, err := e.modTime(path)
	if err != nil {
		e.logger.WithError(err).WithField("path", path).Warn("Could not read modification time, using current time")
		ts = e.now()
	}
	return FormatReleaseDate(ts)
}

func FormatReleaseDate(ts time.Time) string {
	return ts.In(istZone).Format(releaseDateLayout)
}
