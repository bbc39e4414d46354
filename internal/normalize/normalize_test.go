package normalize

import (
	"testing"

	"github.com/gyeh/deptstats/internal/model"
)

func TestToRecord_AllDefaults(t *testing.T) {
	d := model.StandardDefaults()
	none := func(model.Field) (string, bool) { return "", false }

	rec := ToRecord("r-1", none, "2026-10-16", d)

	want := model.Record{
		ID:            "r-1",
		Date:          "2026-10-16",
		DeptCode:      d.DeptCode,
		ServiceName:   d.ServiceName,
		DoctorName:    d.DoctorName,
		ICD10:         d.ICD10,
		PatientType:   d.PatientType,
		AdmissionType: d.AdmissionType,
		Revenue:       0,
	}
	if rec != want {
		t.Errorf("ToRecord with no values:\n got  %+v\n want %+v", rec, want)
	}
}

func TestToRecord_Values(t *testing.T) {
	values := map[model.Field]string{
		model.FieldDate:          "05/03/2026",
		model.FieldDeptCode:      "NOI",
		model.FieldDoctorName:    "BS. A",
		model.FieldRevenue:       "150,000 đ",
		model.FieldAdmissionType: "NOI_TRU",
	}
	lookup := func(f model.Field) (string, bool) {
		v, ok := values[f]
		return v, ok
	}

	rec := ToRecord("r-7", lookup, "2026-10-16", model.StandardDefaults())

	if rec.Date != "2026-03-05" {
		t.Errorf("Date = %q", rec.Date)
	}
	if rec.DeptCode != "NOI" || rec.DoctorName != "BS. A" || rec.AdmissionType != "NOI_TRU" {
		t.Errorf("text fields not carried through: %+v", rec)
	}
	if rec.Revenue != 150000 {
		t.Errorf("Revenue = %v, want 150000", rec.Revenue)
	}
	if rec.ICD10 != "Z00" {
		t.Errorf("ICD10 = %q, want default Z00", rec.ICD10)
	}
}

func TestTextHash(t *testing.T) {
	a := TextHash([]byte("Ngay,Tien\n"))
	b := TextHash([]byte("Ngay,Tien\n"))
	c := TextHash([]byte("Ngay,Tien\r\n"))
	if a != b {
		t.Error("same input should hash the same")
	}
	if a == c {
		t.Error("different input should hash differently")
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
}
