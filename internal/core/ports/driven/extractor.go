package driven

import "context"

// Extractor converts a file of one supported type into raw text.
type Extractor interface {
	// Extensions returns the lowercased extensions handled, with leading dot.
	Extensions() []string

	// Extract reads the file at path and returns its text content.
	// A file that cannot be parsed yields an error wrapping domain.ErrExtraction.
	Extract(ctx context.Context, path string) (string, error)
}

// ExtractorRegistry dispatches files to extractors by extension.
type ExtractorRegistry interface {
	// Register adds an extractor for each of its extensions.
	// Later registrations replace earlier ones for the same extension.
	Register(e Extractor)

	// Lookup returns the extractor for path's extension (case-insensitive).
	// Returns false if the extension is not supported.
	Lookup(path string) (Extractor, bool)

	// Extensions returns all supported extensions, sorted.
	Extensions() []string
}
