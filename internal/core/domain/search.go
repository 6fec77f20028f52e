package domain

// DefaultTopK is the number of chunks retrieved per query.
const DefaultTopK = 5

// QueryResult is one ranked hit from a nearest-neighbour query.
type QueryResult struct {
	// ID is the matched chunk's identifier.
	ID string `json:"id"`

	// Text is the matched chunk's text.
	Text string `json:"text"`

	// Metadata is the matched chunk's metadata.
	Metadata map[string]any `json:"metadata"`

	// Distance is the cosine distance to the query (0 = identical).
	// Lower is closer.
	Distance float64 `json:"distance"`
}

// Source returns the originating file's base name, or "" if absent.
func (r QueryResult) Source() string {
	s, _ := r.Metadata[MetaSource].(string)
	return s
}

// Answer is the outcome of the query pipeline.
type Answer struct {
	// Question is the user's original query.
	Question string `json:"question"`

	// Text is the language model's response, verbatim.
	Text string `json:"answer"`

	// Sources are the retrieved chunks in rank order.
	Sources []QueryResult `json:"sources"`

	// Prompt is the exact prompt sent to the model.
	Prompt string `json:"-"`
}
