package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/dossier/internal/core/domain"
)

const (
	promptPreamble = "Answer the user's question using ONLY the following context. " +
		"Cite sources inline like [1], [2]."
	blockSeparator = "\n\n---\n\n"
	noSources      = "None"
)

// BuildPrompt composes the grounded user message for a question.
//
// Distinct non-empty sources are numbered from 1 in first-occurrence order.
// Each chunk becomes a context block followed by its citation marker; chunks
// without a source get no marker.
func BuildPrompt(question string, chunks []domain.ScoredChunk) domain.Prompt {
	numbers := make(map[string]int)
	var citations []domain.Citation

	for _, c := range chunks {
		src := c.Metadata.Source
		if src == "" {
			continue
		}
		if _, seen := numbers[src]; seen {
			continue
		}
		numbers[src] = len(citations) + 1
		citations = append(citations, domain.Citation{
			Number: len(citations) + 1,
			URL:    src,
			Title:  c.Metadata.Title,
		})
	}

	blocks := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if n, ok := numbers[c.Metadata.Source]; ok {
			blocks = append(blocks, fmt.Sprintf("%s [%d]", c.Text, n))
		} else {
			blocks = append(blocks, c.Text)
		}
	}

	sources := noSources
	if len(citations) > 0 {
		lines := make([]string, len(citations))
		for i, c := range citations {
			lines[i] = fmt.Sprintf("[%d] %s", c.Number, c.URL)
		}
		sources = strings.Join(lines, "\n")
	}

	var b strings.Builder
	b.WriteString(promptPreamble)
	b.WriteString("\n\nQuestion:\n")
	b.WriteString(question)
	b.WriteString("\n\nContext:\n")
	b.WriteString(strings.Join(blocks, blockSeparator))
	b.WriteString("\n\nSources:\n")
	b.WriteString(sources)
	b.WriteString("\n")

	return domain.Prompt{Text: b.String(), Citations: citations}
}
