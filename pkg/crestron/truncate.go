package crestron

import (
	"fmt"
	"unicode/utf8"
)

// CharacterLimit is the maximum size of a serialized tool response, measured
// in characters. Device listings on a large system can run far past what a
// consumer can use in one turn, so anything longer is cut and annotated
// rather than returned whole.
const CharacterLimit = 25000

// Truncate caps s at CharacterLimit characters. The cut falls on a rune
// boundary so multibyte text stays valid UTF-8. When the cap is exceeded the
// returned string is the prefix plus a notice carrying the original and
// truncated sizes and a suggestion to narrow the request; itemCount > 0
// selects the wording that mentions filters and limits.
func Truncate(s string, itemCount int) string {
	total := utf8.RuneCountInString(s)
	if total <= CharacterLimit {
		return s
	}

	cut := len(s)
	runes := 0
	for i := range s {
		if runes == CharacterLimit {
			cut = i

			break
		}
		runes++
	}

	notice := fmt.Sprintf(
		"\n\n**Response Truncated**\nThe response was truncated from %d to %d characters. ",
		total, CharacterLimit,
	)
	if itemCount > 0 {
		notice += "Try using filters, reducing the limit parameter, or requesting specific items to see more details."
	} else {
		notice += "Try requesting specific items or using filters to reduce the response size."
	}

	return s[:cut] + notice
}
