package driven

// SentenceSplitter segments text into sentences.
// Concatenating the returned sentences must reproduce the input text
// up to whitespace between sentences.
type SentenceSplitter interface {
	Split(text string) []string
}

// Chunker splits raw text into ordered, bounded-size chunks.
type Chunker interface {
	// Chunk splits text into pieces of at most maxSize runes.
	// A single sentence longer than maxSize is returned whole.
	Chunk(text string, maxSize int) []string
}
