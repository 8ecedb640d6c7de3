package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// StripDiacritics decomposes s and drops combining marks ("João" -> "Joao").
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// FileSlug turns a person name into a file name part: diacritics stripped,
// whitespace runs replaced by "_", lower-cased.
func FileSlug(s string) string {
	s = StripDiacritics(s)
	s = whitespaceRun.ReplaceAllString(s, "_")
	return strings.ToLower(s)
}

// SafeFilenamePart replaces characters that break file names on common systems.
func SafeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	return replacer.Replace(s)
}
