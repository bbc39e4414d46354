package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonKeyChars = regexp.MustCompile(`[^a-z0-9]`)

// A transform.Chain keeps internal buffers, so each call builds its own.
func diacriticStripper() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.Predicate(isCombiningMark)))
}

// Combining Diacritical Marks block, U+0300–U+036F. Vietnamese tone and vowel
// marks all decompose into this range.
func isCombiningMark(r rune) bool {
	return r >= 0x0300 && r <= 0x036F
}

// Key folds a header cell or alias to a comparable form: lowercased,
// decomposed with combining diacritics removed, and reduced to [a-z0-9].
// "Thành Tiền" and "thanh_tien" both become "thanhtien".
func Key(s string) string {
	s = strings.ToLower(s)
	if folded, _, err := transform.String(diacriticStripper(), s); err == nil {
		s = folded
	}
	s = nonKeyChars.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
