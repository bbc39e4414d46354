// Package csvtext splits loosely formatted spreadsheet exports into rows of
// string fields.
//
// It is not an RFC 4180 reader. Both ',' and ';' delimit fields, '\n', '\r'
// and "\r\n" all end a row, and malformed quoting degrades into best-effort
// field boundaries instead of an error. Rows with fewer than two fields are
// dropped, which discards blank lines and stray single-cell notes.
package csvtext

import (
	"context"
	"strings"
	"unicode"
)

// Row is one tokenized line. Rows in one file may differ in length.
type Row []string

// ContextCheckInterval is how many input bytes are scanned between checks of
// the context. Checking on every byte would dominate the scan.
var ContextCheckInterval = 64 * 1024

type state int

const (
	stateUnquoted state = iota
	stateQuoted
)

// Tokenizer holds the options for one scan.
type Tokenizer struct {
	// FlushTrailingRow emits the final row when the input does not end with a
	// line terminator. The dashboard exports historically dropped that row, so
	// the default keeps that behavior.
	FlushTrailingRow bool
}

// Tokenize splits text using the default Tokenizer.
func Tokenize(text string) []Row {
	rows, _ := Tokenizer{}.Tokenize(context.Background(), text)
	return rows
}

// Tokenize scans text one byte at a time through a two-state machine. The
// only error it returns is ctx.Err() when the scan is cancelled.
//
// All delimiters, quotes and terminators are ASCII, so a byte scan never
// splits a multi-byte UTF-8 sequence.
func (t Tokenizer) Tokenize(ctx context.Context, text string) ([]Row, error) {
	var (
		rows  []Row
		row   Row
		field strings.Builder
		st    = stateUnquoted
	)

	endField := func() {
		row = append(row, trimField(field.String()))
		field.Reset()
	}
	endRow := func() {
		endField()
		if len(row) > 1 {
			rows = append(rows, row)
		}
		row = nil
	}

	for i := 0; i < len(text); i++ {
		if i > 0 && i%ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		c := text[i]

		switch st {
		case stateQuoted:
			switch {
			case c == '"' && i+1 < len(text) && text[i+1] == '"':
				field.WriteByte('"')
				i++
			case c == '"':
				st = stateUnquoted
			default:
				field.WriteByte(c)
			}

		case stateUnquoted:
			switch c {
			case '"':
				st = stateQuoted
			case ',', ';':
				endField()
			case '\n', '\r':
				endRow()
				if c == '\r' && i+1 < len(text) && text[i+1] == '\n' {
					i++
				}
			default:
				field.WriteByte(c)
			}
		}
	}

	if t.FlushTrailingRow && (field.Len() > 0 || len(row) > 0) {
		endRow()
	}
	return rows, nil
}

// trimField trims Unicode whitespace and the byte order mark, which
// spreadsheet exports leave on the first header cell.
func trimField(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}
