package text

import (
	"strings"

	"github.com/custodia-labs/dossier/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser cleans scraped text.
type Normaliser struct{}

// New creates a new text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Normalise implements driven.Normaliser.
func (n *Normaliser) Normalise(raw string) string {
	return Normalise(raw)
}

// Normalise collapses every whitespace run, newlines included, to one
// space and trims. Empty input yields "".
func Normalise(raw string) string {
	if raw == "" {
		return ""
	}
	return strings.Join(strings.Fields(raw), " ")
}
