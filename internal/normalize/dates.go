package normalize

import (
	"regexp"
	"strings"
	"time"
)

// ISODate is the layout of every Record.Date.
const ISODate = "2006-01-02"

var dateSeparators = regexp.MustCompile(`[/.\-]`)

// Today formats now as the processing date used for missing or malformed dates.
func Today(now time.Time) string {
	return now.UTC().Format(ISODate)
}

// Date converts a raw date cell to YYYY-MM-DD. A time of day after a space,
// tab or 'T' is dropped. The rest is split on '/', '.' or '-'; a 4-character
// first part means year-first, anything else means day-month-year. Month and
// day are zero-padded. Parts are not validated as a calendar date (month 13
// passes through). Absent input, a split that is not exactly three parts, or a
// part that is not a run of digits yields today.
func Date(raw, today string) string {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexAny(raw, " \tT"); i >= 0 {
		raw = raw[:i]
	}
	if raw == "" {
		return today
	}
	p := dateSeparators.Split(raw, -1)
	if len(p) != 3 || !allDigits(p) {
		return today
	}
	if len(p[0]) == 4 {
		return p[0] + "-" + padTwo(p[1]) + "-" + padTwo(p[2])
	}
	return p[2] + "-" + padTwo(p[1]) + "-" + padTwo(p[0])
}

func padTwo(s string) string {
	if len(s) >= 2 {
		return s
	}
	return strings.Repeat("0", 2-len(s)) + s
}

func allDigits(parts []string) bool {
	for _, p := range parts {
		if p == "" {
			return false
		}
		for i := 0; i < len(p); i++ {
			if p[i] < '0' || p[i] > '9' {
				return false
			}
		}
	}
	return true
}
