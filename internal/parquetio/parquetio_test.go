package parquetio

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"

	"github.com/gyeh/deptstats/internal/model"
)

func TestWriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.parquet")
	records := []model.Record{
		{ID: "r-1", Date: "2026-03-05", DeptCode: "NOI", ServiceName: "Khám", DoctorName: "BS. A",
			ICD10: "J00", PatientType: "BHYT", AdmissionType: "NGOAI_TRU", Revenue: 150000},
		{ID: "r-2", Date: "2026-03-06", DeptCode: "NHI", ServiceName: "Xét nghiệm", DoctorName: "BS. B",
			ICD10: "Z00", PatientType: "VIEN_PHI", AdmissionType: "NOI_TRU", Revenue: -20.5},
	}

	if err := WriteFile(path, "khoa", records); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	if err := ValidateSchema(r.Schema()); err != nil {
		t.Fatalf("ValidateSchema: %v", err)
	}
	if r.NumRows() != 2 {
		t.Errorf("NumRows = %d", r.NumRows())
	}
	if r.SourceID() != "khoa" {
		t.Errorf("SourceID = %q", r.SourceID())
	}

	got, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(got) != len(records) {
		t.Fatalf("read %d records, want %d", len(got), len(records))
	}
	for i := range records {
		if got[i] != records[i] {
			t.Errorf("record %d:\n got %+v\nwant %+v", i, got[i], records[i])
		}
	}
}

func TestWriter_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.parquet")
	w, err := NewRecordWriter(path, "none")
	if err != nil {
		t.Fatalf("NewRecordWriter: %v", err)
	}
	if w.Rows() != 0 {
		t.Errorf("Rows = %d before any write", w.Rows())
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()
	got, err := r.ReadAll()
	if err != nil || len(got) != 0 {
		t.Fatalf("ReadAll = %d records, %v", len(got), err)
	}
}

func TestValidateSchema_Missing(t *testing.T) {
	type partial struct {
		ID   string `parquet:"id"`
		Date string `parquet:"date"`
	}
	err := ValidateSchema(parquet.SchemaOf(partial{}))
	if err == nil {
		t.Fatal("expected error for missing columns")
	}
	if !strings.Contains(err.Error(), "revenue") || !strings.Contains(err.Error(), "dept_code") {
		t.Errorf("error should name the missing columns: %v", err)
	}
}

func TestVerify(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.parquet")
	records := []model.Record{
		{ID: "r-1", Date: "2026-03-05", DeptCode: "NOI", Revenue: 100},
		{ID: "r-2", Date: "2026-03-06", DeptCode: "NHI", Revenue: 200},
	}
	if err := WriteFile(path, "khoa", records); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	changed := []model.Record{records[0], records[1]}
	changed[1].Revenue = 201

	tests := []struct {
		name     string
		path     string
		sourceID string
		want     []model.Record
		errPart  string
	}{
		{"matches", path, "khoa", records, ""},
		{"other source", path, "other", records, "source_id"},
		{"fewer rows expected", path, "khoa", records[:1], "rows"},
		{"record differs", path, "khoa", changed, "record 1"},
		{"missing file", filepath.Join(t.TempDir(), "none.parquet"), "khoa", records, "open parquet file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Verify(tt.path, tt.sourceID, tt.want)
			if tt.errPart == "" {
				if err != nil {
					t.Fatalf("Verify: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errPart) {
				t.Errorf("Verify error = %v, want containing %q", err, tt.errPart)
			}
		})
	}
}
