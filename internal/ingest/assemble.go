package ingest

import (
	"context"
	"strconv"
	"time"

	"github.com/gyeh/deptstats/internal/csvtext"
	"github.com/gyeh/deptstats/internal/header"
	"github.com/gyeh/deptstats/internal/model"
	"github.com/gyeh/deptstats/internal/normalize"
)

// ContextCheckInterval is how often (in rows) assembly checks for cancellation.
var ContextCheckInterval = 100

// Assembler turns tokenized rows into Records.
type Assembler struct {
	Synonyms model.SynonymTable
	Defaults model.Defaults
	// Now supplies the processing date for rows without a usable date.
	// Nil means time.Now.
	Now func() time.Time
}

// Assemble consumes rows[0] as the header and emits one Record per remaining
// row, in input order, with id "r-<row index>". Empty input or a header with
// no data rows yields an empty, non-nil slice. The only error is ctx.Err().
func (a *Assembler) Assemble(ctx context.Context, rows []csvtext.Row) ([]model.Record, error) {
	if len(rows) == 0 {
		return []model.Record{}, nil
	}

	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	today := normalize.Today(now())

	hm := header.Resolve(rows[0], a.Synonyms)
	out := make([]model.Record, 0, len(rows)-1)

	for i := 1; i < len(rows); i++ {
		if i%ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		row := rows[i]
		lookup := func(f model.Field) (string, bool) {
			return hm.Lookup(row, f)
		}
		out = append(out, normalize.ToRecord("r-"+strconv.Itoa(i), lookup, today, a.Defaults))
	}
	return out, nil
}
