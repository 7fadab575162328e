package temporal

import (
	"strings"

	"golang.org/x/text/width"
)

// NormalizeDigits folds full-width numerals (０-９) to their ASCII
// counterparts and leaves every other rune untouched. It is a total
// function: there is no failure mode for any input string.
func NormalizeDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if n := width.LookupRune(r).Narrow(); n >= '0' && n <= '9' {
			return n
		}
		return r
	}, s)
}
