package driven

// Normaliser cleans raw scraped text before chunking.
type Normaliser interface {
	// Normalise returns the cleaned text. Empty input yields "".
	// Implementations must be pure and idempotent.
	Normalise(raw string) string
}
