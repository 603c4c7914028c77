package analyzer

import (
	"regexp"
	"strings"
)

var (
	whitespaceRE = regexp.MustCompile(`\s+`)
	nonWordRE    = regexp.MustCompile(`\W+`)
)

// NormalizeWhitespace collapses runs of whitespace into single spaces and
// trims the ends. Useful for one-line rendering of extracted text.
func NormalizeWhitespace(text string) string {
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(text, " "))
}

// Preprocess lowercases text and replaces every non-word run with a single
// space, leaving only searchable word tokens.
func Preprocess(text string) string {
	text = strings.ToLower(text)
	text = nonWordRE.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
