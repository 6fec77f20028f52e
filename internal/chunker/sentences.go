package chunker

import (
	"fmt"
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"

	"github.com/secondbrain-labs/brain/internal/core/ports/driven"
)

// Ensure SentenceSplitter implements the interface.
var _ driven.SentenceSplitter = (*SentenceSplitter)(nil)

// SentenceSplitter segments English text using a Punkt tokenizer.
type SentenceSplitter struct {
	tokenizer *sentences.DefaultSentenceTokenizer
}

// NewSentenceSplitter loads the bundled English Punkt model.
func NewSentenceSplitter() (*SentenceSplitter, error) {
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("load sentence tokenizer: %w", err)
	}
	return &SentenceSplitter{tokenizer: tokenizer}, nil
}

// Split returns the sentences of text. The pieces cover the input exactly:
// whitespace between two sentences leads the second piece.
func (s *SentenceSplitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var found []string
	for _, sent := range s.tokenizer.Tokenize(text) {
		found = append(found, sent.Text)
	}
	return cover(text, found)
}

// cover realigns tokenizer output onto the original text so that joining
// the result reproduces text byte for byte.
func cover(text string, found []string) []string {
	var (
		pieces []string
		cursor int
	)

	for _, sent := range found {
		trimmed := strings.TrimSpace(sent)
		if trimmed == "" {
			continue
		}
		idx := strings.Index(text[cursor:], trimmed)
		if idx < 0 {
			continue
		}
		end := cursor + idx + len(trimmed)
		pieces = append(pieces, text[cursor:end])
		cursor = end
	}

	if rest := text[cursor:]; rest != "" {
		if strings.TrimSpace(rest) == "" && len(pieces) > 0 {
			pieces[len(pieces)-1] += rest
		} else {
			pieces = append(pieces, rest)
		}
	}

	return pieces
}
