// Package docx extracts paragraph text from Word (.docx) documents.
package docx

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/secondbrain-labs/brain/internal/core/domain"
	"github.com/secondbrain-labs/brain/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

const documentPart = "word/document.xml"

// Extractor reads the main document part of a .docx archive.
type Extractor struct{}

// New creates a DOCX extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".docx"}
}

// Extract returns each body paragraph's text followed by a newline,
// in document order.
func (e *Extractor) Extract(_ context.Context, path string) (string, error) {
	name := filepath.Base(path)

	reader, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", domain.ErrExtraction, name, err)
	}
	defer reader.Close()

	part, err := reader.Open(documentPart)
	if err != nil {
		return "", fmt.Errorf("%w: %s: missing %s", domain.ErrExtraction, name, documentPart)
	}
	defer part.Close()

	text, err := paragraphs(part)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", domain.ErrExtraction, name, err)
	}
	return text, nil
}

// paragraphs walks word/document.xml and collects the text of paragraphs
// that are direct children of the body. Text inside runs, hyperlinks and
// smart tags counts toward its paragraph; tabs and breaks are preserved.
func paragraphs(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var (
		out    strings.Builder
		para   strings.Builder
		path   []string
		inPara bool
		inText bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse %s: %w", documentPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			local := t.Name.Local
			if local == "p" && len(path) == 2 && path[1] == "body" {
				inPara = true
				para.Reset()
			}
			if inPara {
				switch local {
				case "t":
					inText = true
				case "tab":
					para.WriteString("\t")
				case "br", "cr":
					para.WriteString("\n")
				}
			}
			path = append(path, local)

		case xml.EndElement:
			path = path[:len(path)-1]
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if inPara && len(path) == 2 {
					out.WriteString(para.String())
					out.WriteString("\n")
					inPara = false
				}
			}

		case xml.CharData:
			if inPara && inText {
				para.Write(t)
			}
		}
	}

	return out.String(), nil
}
