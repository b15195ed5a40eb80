// Package text provides the Normaliser applied to scraped article text.
// Any run of Unicode whitespace becomes a single space.
package text
