// Package normalisers holds Normaliser implementations that clean scraped
// article text before it is chunked.
package normalisers
