// Package chunker splits extracted text into sentence-aligned chunks.
//
// Sentences are accumulated greedily until the next one would push the
// chunk past the size limit. Sentences are never split: a sentence longer
// than the limit becomes its own oversized chunk. Lengths are counted in
// runes.
package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/secondbrain-labs/brain/internal/core/ports/driven"
)

// DefaultChunkSize is the default maximum chunk length in runes.
const DefaultChunkSize = 1000

// Ensure Chunker implements the interface.
var _ driven.Chunker = (*Chunker)(nil)

// Chunker aggregates sentences into bounded chunks.
type Chunker struct {
	splitter  driven.SentenceSplitter
	chunkSize int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the default chunk size in runes.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithSplitter replaces the sentence splitter.
func WithSplitter(s driven.SentenceSplitter) Option {
	return func(c *Chunker) {
		if s != nil {
			c.splitter = s
		}
	}
}

// New creates a chunker. Without WithSplitter the English sentence
// tokenizer is loaded, which can fail if its training data is corrupt.
func New(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.splitter == nil {
		s, err := NewSentenceSplitter()
		if err != nil {
			return nil, err
		}
		c.splitter = s
	}

	return c, nil
}

// ChunkSize returns the default chunk size in runes.
func (c *Chunker) ChunkSize() int {
	return c.chunkSize
}

// Chunk splits text into chunks of at most maxSize runes, in text order.
// maxSize <= 0 uses the chunker's default.
func (c *Chunker) Chunk(text string, maxSize int) []string {
	if maxSize <= 0 {
		maxSize = c.chunkSize
	}

	var (
		chunks []string
		buf    strings.Builder
		bufLen int
	)

	flush := func() {
		if s := strings.TrimSpace(buf.String()); s != "" {
			chunks = append(chunks, s)
		}
		buf.Reset()
		bufLen = 0
	}

	for _, sentence := range c.splitter.Split(text) {
		n := utf8.RuneCountInString(sentence)
		if bufLen > 0 && bufLen+n > maxSize {
			flush()
		}
		buf.WriteString(sentence)
		bufLen += n
	}
	flush()

	return chunks
}
