package utils

import (
	"regexp"
	"strings"
	"time"
)

const (
	layoutDate   = "2006-01-02"
	layoutDateBR = "02/01/2006"
)

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d(:[0-5]\d)?$`)

// MinSignatureDate is the earliest date the form accepts.
var MinSignatureDate = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.Local)

// ParseDate parses YYYY-MM-DD in local timezone.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(layoutDate, strings.TrimSpace(s), time.Local)
}

// FormatDateBR formats time as dd/MM/yyyy.
func FormatDateBR(t time.Time) string {
	return t.Format(layoutDateBR)
}

// IsClock reports whether s is an HH:MM or HH:MM:SS time of day.
func IsClock(s string) bool {
	return clockPattern.MatchString(strings.TrimSpace(s))
}

// FileTimestamp renders t as an ISO-8601 UTC timestamp with ':' and '.'
// replaced by '-', e.g. 2024-05-01T10-20-30-123Z.
func FileTimestamp(t time.Time) string {
	iso := t.UTC().Format("2006-01-02T15:04:05.000Z")
	return strings.NewReplacer(":", "-", ".", "-").Replace(iso)
}

// SameOrBeforeDay reports whether a falls on or before b's calendar day.
func SameOrBeforeDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad <= bd
}
