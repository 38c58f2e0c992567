// Package slug derives URL-safe identifiers from post titles.
package slug

import (
	"regexp"
	"strings"
)

var (
	// nonWord matches anything that is not a word character or whitespace.
	nonWord = regexp.MustCompile(`[^\w\s]+`)
	// whitespace matches runs of whitespace to collapse into one hyphen.
	whitespace = regexp.MustCompile(`\s+`)
)

// Generate lowercases s, strips non-word characters and joins the remaining
// words with single hyphens.
// Example: "Hello, World! 2026" → "hello-world-2026"
func Generate(s string) string {
	result := strings.ToLower(s)
	result = nonWord.ReplaceAllString(result, "")
	result = strings.TrimSpace(result)
	return whitespace.ReplaceAllString(result, "-")
}
