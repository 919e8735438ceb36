package common

import (
	"strings"
	"time"
	"unicode/utf8"
)

const dateLayout = "02.01.2006"

// FormatDate renders t in loc as a day-precision date.
func FormatDate(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(dateLayout)
}

// Truncate shortens text to at most n runes, appending an ellipsis when cut.
func Truncate(text string, n int) string {
	text = strings.TrimSpace(text)
	if n <= 0 || utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:n])) + "…"
}
