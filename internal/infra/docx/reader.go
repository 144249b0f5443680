// Package docx reads paragraph text out of Office Open XML word-processing documents.
package docx

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

const (
	documentPart = "word/document.xml"
	wordNS       = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
)

// ErrNoDocumentPart is returned when the package has no main document part.
var ErrNoDocumentPart = errors.New("docx: package has no " + documentPart)

// ReadParagraphs returns the text of every body-level paragraph in document order,
// including empty ones. Tabs become '\t' and line breaks become '\n'.
func ReadParagraphs(path string) ([]string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document %s: %w", path, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != documentPart {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", documentPart, err)
		}
		defer rc.Close()
		return parseDocument(rc)
	}
	return nil, ErrNoDocumentPart
}

// ModTime reports the last-modification time of the file at path.
func ModTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return info.ModTime(), nil
}

func parseDocument(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)

	var (
		stack      []string
		paragraphs []string
		current    *strings.Builder
		pDepth     int
		inText     bool
		txbxDepth  int // >0 while inside a text box nested in the paragraph
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", documentPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			// Only run-level children carry paragraph text; w:pPr/w:tabs/w:tab is a tab stop.
			inRun := current != nil && txbxDepth == 0 && len(stack) > 0 && stack[len(stack)-1] == "r"
			if t.Name.Space == wordNS {
				switch t.Name.Local {
				case "txbxContent":
					txbxDepth++
				case "p":
					if current == nil && len(stack) > 0 && stack[len(stack)-1] == "body" {
						current = &strings.Builder{}
						pDepth = len(stack)
					}
				case "t":
					inText = inRun
				case "tab":
					if inRun {
						current.WriteByte('\t')
					}
				case "br", "cr":
					if inRun {
						current.WriteByte('\n')
					}
				}
			}
			stack = append(stack, t.Name.Local)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "txbxContent":
				if txbxDepth > 0 {
					txbxDepth--
				}
			case "t":
				inText = false
			case "p":
				if current != nil && len(stack) == pDepth {
					paragraphs = append(paragraphs, current.String())
					current = nil
				}
			}
		case xml.CharData:
			if inText && current != nil {
				current.Write(t)
			}
		}
	}
	return paragraphs, nil
}
