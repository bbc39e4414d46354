// Package header maps the columns of a spreadsheet export onto logical fields
// through a synonym table.
package header

import (
	"sort"

	"github.com/gyeh/deptstats/internal/csvtext"
	"github.com/gyeh/deptstats/internal/model"
	"github.com/gyeh/deptstats/internal/normalize"
)

// Map is the resolved header for one ingestion: normalized header text to
// column index, plus the normalized aliases of each logical field.
type Map struct {
	Columns map[string]int
	aliases map[model.Field][]string
}

// Resolve normalizes the header row and the synonym table. When two header
// cells normalize to the same key the later column wins.
func Resolve(headerRow csvtext.Row, synonyms model.SynonymTable) *Map {
	m := &Map{
		Columns: make(map[string]int, len(headerRow)),
		aliases: make(map[model.Field][]string, len(synonyms)),
	}
	for i, cell := range headerRow {
		m.Columns[normalize.Key(cell)] = i
	}
	for f, aliases := range synonyms {
		keys := make([]string, len(aliases))
		for i, a := range aliases {
			keys[i] = normalize.Key(a)
		}
		m.aliases[f] = keys
	}
	return m
}

// Lookup returns the value of field f in row: the cell under the first alias,
// in declared order, that names a header column and holds a non-empty value.
// A short row simply has no value for its missing columns.
func (m *Map) Lookup(row csvtext.Row, f model.Field) (string, bool) {
	for _, key := range m.aliases[f] {
		idx, ok := m.Columns[key]
		if !ok || idx >= len(row) {
			continue
		}
		if v := row[idx]; v != "" {
			return v, true
		}
	}
	return "", false
}

// Binding records which header column, if any, can feed a logical field.
type Binding struct {
	Field  model.Field `json:"field"`
	Alias  string      `json:"alias,omitempty"`
	Column int         `json:"column"`
}

// Matched reports whether the field found any header column.
func (b Binding) Matched() bool {
	return b.Column >= 0
}

// Coverage returns, for every logical field in canonical order, the first
// alias present in the header. Column is -1 for fields with no matching
// column; those fields will always take their default.
func (m *Map) Coverage() []Binding {
	out := make([]Binding, 0, len(model.AllFields))
	for _, f := range model.AllFields {
		b := Binding{Field: f, Column: -1}
		for _, key := range m.aliases[f] {
			if idx, ok := m.Columns[key]; ok {
				b.Alias = key
				b.Column = idx
				break
			}
		}
		out = append(out, b)
	}
	return out
}

// Unused returns the normalized header keys that no alias refers to, sorted.
func (m *Map) Unused() []string {
	used := make(map[string]bool)
	for _, keys := range m.aliases {
		for _, k := range keys {
			used[k] = true
		}
	}
	var out []string
	for key := range m.Columns {
		if !used[key] {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}
