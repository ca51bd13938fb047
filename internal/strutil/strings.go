package strutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Fold trims the string and applies Unicode case folding, so that two strings that differ
// only in case compare equal. A cases.Caser is stateful, hence a new one per call
func Fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// UpperTrim trims the string and converts it to upper case
// For example UpperTrim(" usd\t") return "USD"
func UpperTrim(s string) string {
	return cases.Upper(language.Und).String(strings.TrimSpace(s))
}

// OrDefault returns def when s is blank
func OrDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}

	return s
}
