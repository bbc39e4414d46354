package parquetio

import (
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/gyeh/deptstats/internal/model"
)

const sourceIDKey = "source_id"

// Writer streams Records into a zstd-compressed Parquet file.
type Writer struct {
	file   *os.File
	writer *parquet.GenericWriter[model.Record]
	rows   int64
}

// NewRecordWriter creates path and tags the file with sourceID.
func NewRecordWriter(path, sourceID string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create parquet file: %w", err)
	}
	w := parquet.NewGenericWriter[model.Record](f,
		parquet.Compression(&parquet.Zstd),
		parquet.KeyValueMetadata(sourceIDKey, sourceID),
	)
	return &Writer{file: f, writer: w}, nil
}

// Write appends records in order.
func (w *Writer) Write(records []model.Record) error {
	n, err := w.writer.Write(records)
	w.rows += int64(n)
	if err != nil {
		return fmt.Errorf("write parquet rows: %w", err)
	}
	return nil
}

// Rows returns how many records have been written.
func (w *Writer) Rows() int64 {
	return w.rows
}

// Close flushes the footer and closes the file.
func (w *Writer) Close() error {
	if err := w.writer.Close(); err != nil {
		w.file.Close()
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return w.file.Close()
}

// WriteFile writes records to path in one call.
func WriteFile(path, sourceID string, records []model.Record) error {
	w, err := NewRecordWriter(path, sourceID)
	if err != nil {
		return err
	}
	if err := w.Write(records); err != nil {
		w.Close()
		return err
	}
	if w.Rows() != int64(len(records)) {
		w.Close()
		return fmt.Errorf("write parquet rows: wrote %d of %d", w.Rows(), len(records))
	}
	return w.Close()
}
