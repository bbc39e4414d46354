package parquetio

import (
	"fmt"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/gyeh/deptstats/internal/model"
)

// requiredColumns are the columns every record export must carry.
var requiredColumns = []string{
	"id", "date", "dept_code", "service_name", "doctor_name",
	"icd10", "patient_type", "admission_type", "revenue",
}

// ValidateSchema checks that the Parquet schema contains every record column.
func ValidateSchema(schema *parquet.Schema) error {
	columns := make(map[string]bool)
	for _, field := range schema.Fields() {
		columns[strings.ToLower(field.Name())] = true
	}

	var missing []string
	for _, col := range requiredColumns {
		if !columns[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Verify re-opens a written export and checks it against what was meant to
// be written: the schema, the source_id metadata and every record in order.
func Verify(path, sourceID string, want []model.Record) error {
	r, err := Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	if err := ValidateSchema(r.Schema()); err != nil {
		return fmt.Errorf("verify %s: %w", path, err)
	}
	if got := r.SourceID(); got != sourceID {
		return fmt.Errorf("verify %s: source_id %q, want %q", path, got, sourceID)
	}
	if n := r.NumRows(); n != int64(len(want)) {
		return fmt.Errorf("verify %s: %d rows, want %d", path, n, len(want))
	}

	got, err := r.ReadAll()
	if err != nil {
		return fmt.Errorf("verify %s: %w", path, err)
	}
	if len(got) != len(want) {
		return fmt.Errorf("verify %s: read %d records, want %d", path, len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			return fmt.Errorf("verify %s: record %d differs (id %q, want %q)", path, i, got[i].ID, want[i].ID)
		}
	}
	return nil
}
