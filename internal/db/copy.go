package db

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gyeh/deptstats/internal/model"
)

// RecordSource implements pgx.CopyFromSource by reading Records from a
// channel. The producer and the COPY writer run concurrently, and the channel
// gives backpressure between them.
type RecordSource struct {
	ch      <-chan *model.Record
	batchID uuid.UUID
	current *model.Record
	rowNum  int64
}

// NewRecordSource creates a CopyFromSource for one batch.
func NewRecordSource(batchID uuid.UUID, ch <-chan *model.Record) *RecordSource {
	return &RecordSource{ch: ch, batchID: batchID}
}

// Next advances to the next record. Returns false when the channel is closed.
func (s *RecordSource) Next() bool {
	rec, ok := <-s.ch
	if !ok {
		return false
	}
	s.current = rec
	s.rowNum++
	return true
}

// Values returns the current record in COPY column order. Row numbers start
// at 1 and follow channel order.
func (s *RecordSource) Values() ([]any, error) {
	return s.current.CopyValues(s.batchID, s.rowNum), nil
}

// Err always returns nil; producer failures travel on their own channel.
func (s *RecordSource) Err() error {
	return nil
}

// Rows returns how many records have been handed to COPY.
func (s *RecordSource) Rows() int64 {
	return s.rowNum
}

var _ pgx.CopyFromSource = (*RecordSource)(nil)
