package normalize

import (
	"regexp"
	"strconv"
)

var (
	nonAmountChars = regexp.MustCompile(`[^0-9.\-]`)
	// leadingNumber matches the longest decimal prefix, so "1.250.000" reads as 1.25
	// the way a spreadsheet's float parser does.
	leadingNumber = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)`)
)

// Revenue coerces a raw money cell to a number. Every character other than
// digits, '.' and '-' is dropped first ("150.000 đ" -> "150.000"), then the
// longest leading decimal is parsed. Absent or unparseable input gives 0.
// Negative and fractional values pass through unchanged.
func Revenue(raw string) float64 {
	if raw == "" {
		raw = "0"
	}
	cleaned := nonAmountChars.ReplaceAllString(raw, "")
	num := leadingNumber.FindString(cleaned)
	if num == "" {
		return 0
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil || v == 0 {
		return 0
	}
	return v
}
