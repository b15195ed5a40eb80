package domain

// Bounds for the number of chunks used to ground an answer.
const (
	MinTopK     = 3
	MaxTopK     = 12
	DefaultTopK = 5
)

// Citation maps an inline marker [n] to its source URL.
type Citation struct {
	Number int    `json:"number"`
	URL    string `json:"url"`
	Title  string `json:"title,omitempty"`
}

// Prompt is a grounded prompt ready for the chat completion endpoint.
type Prompt struct {
	// Text is the full user message.
	Text string

	// Citations lists the distinct sources in citation order.
	Citations []Citation
}

// AskRequest is a question about one company.
type AskRequest struct {
	Question string
	Company  string
	TopK     int
}

// Answer is a cited answer composed from retrieved chunks.
type Answer struct {
	Question  string        `json:"question"`
	Company   string        `json:"company"`
	Text      string        `json:"answer"`
	Citations []Citation    `json:"citations"`
	Chunks    []ScoredChunk `json:"chunks,omitempty"`
	Model     string        `json:"model"`
}
