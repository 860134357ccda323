package pipeline

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	deaccent    = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	nonAlnumRun = regexp.MustCompile(`[^a-z0-9]+`)
)

// Slugify derives a URL slug from a title: diacritics stripped, lowercased,
// non-alphanumeric runs collapsed to single hyphens, edges trimmed.
func Slugify(title string) string {
	if out, _, err := transform.String(deaccent, title); err == nil {
		title = out
	}
	title = strings.ToLower(title)
	title = nonAlnumRun.ReplaceAllString(title, "-")
	return strings.Trim(title, "-")
}

// WordCount counts whitespace-separated words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// ReadingTime estimates reading time in minutes at 200 words per minute,
// clamped to at least 1.
func ReadingTime(content string) int {
	minutes := (WordCount(content) + 199) / 200
	if minutes < 1 {
		return 1
	}
	return minutes
}
