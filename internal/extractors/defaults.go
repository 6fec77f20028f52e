package extractors

import (
	"github.com/secondbrain-labs/brain/internal/extractors/docx"
	"github.com/secondbrain-labs/brain/internal/extractors/pdf"
	"github.com/secondbrain-labs/brain/internal/extractors/plaintext"
)

// DefaultRegistry returns a registry with the built-in extractors:
// .pdf, .docx and .txt.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(pdf.New())
	r.Register(docx.New())
	r.Register(plaintext.New())
	return r
}
