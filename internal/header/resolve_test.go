package header

import (
	"reflect"
	"testing"

	"github.com/gyeh/deptstats/internal/csvtext"
	"github.com/gyeh/deptstats/internal/model"
)

func TestResolve_NormalizesHeaders(t *testing.T) {
	m := Resolve(csvtext.Row{"Ngày", "Tên BS", "Thành Tiền"}, model.SynonymTable{})

	want := map[string]int{"ngay": 0, "tenbs": 1, "thanhtien": 2}
	if !reflect.DeepEqual(m.Columns, want) {
		t.Errorf("Columns = %v, want %v", m.Columns, want)
	}
}

func TestResolve_DuplicateHeaderLastWins(t *testing.T) {
	m := Resolve(csvtext.Row{"Doanh thu", "Khoa", "DOANH-THU"}, model.SynonymTable{})
	if m.Columns["doanhthu"] != 2 {
		t.Errorf("expected last duplicate column (2), got %d", m.Columns["doanhthu"])
	}
}

func TestLookup_AliasPrecedence(t *testing.T) {
	syn := model.SynonymTable{model.FieldRevenue: {"revenue", "doanhthu"}}

	t.Run("only later alias present and empty", func(t *testing.T) {
		m := Resolve(csvtext.Row{"Ngay", "Doanh Thu"}, syn)
		if v, ok := m.Lookup(csvtext.Row{"05/03/2026", ""}, model.FieldRevenue); ok {
			t.Errorf("expected absent, got %q", v)
		}
	})

	t.Run("only later alias present with value", func(t *testing.T) {
		m := Resolve(csvtext.Row{"Ngay", "Doanh Thu"}, syn)
		v, ok := m.Lookup(csvtext.Row{"05/03/2026", "500"}, model.FieldRevenue)
		if !ok || v != "500" {
			t.Errorf("got (%q, %v), want (500, true)", v, ok)
		}
	})

	t.Run("both present earlier alias wins", func(t *testing.T) {
		m := Resolve(csvtext.Row{"Doanh Thu", "Revenue"}, syn)
		v, ok := m.Lookup(csvtext.Row{"100", "200"}, model.FieldRevenue)
		if !ok || v != "200" {
			t.Errorf("got (%q, %v), want (200, true)", v, ok)
		}
	})

	t.Run("earlier alias empty falls through", func(t *testing.T) {
		m := Resolve(csvtext.Row{"Doanh Thu", "Revenue"}, syn)
		v, ok := m.Lookup(csvtext.Row{"100", ""}, model.FieldRevenue)
		if !ok || v != "100" {
			t.Errorf("got (%q, %v), want (100, true)", v, ok)
		}
	})
}

func TestLookup_ShortRow(t *testing.T) {
	syn := model.SynonymTable{model.FieldDoctorName: {"tenbs"}}
	m := Resolve(csvtext.Row{"Ngay", "Thanh Tien", "Ten BS"}, syn)

	if _, ok := m.Lookup(csvtext.Row{"05/03/2026", "1000"}, model.FieldDoctorName); ok {
		t.Error("expected absent value for column past the end of a short row")
	}
}

func TestLookup_UnknownField(t *testing.T) {
	m := Resolve(csvtext.Row{"a", "b"}, model.SynonymTable{})
	if _, ok := m.Lookup(csvtext.Row{"1", "2"}, model.FieldICD10); ok {
		t.Error("field without aliases should be absent")
	}
}

func TestCoverage(t *testing.T) {
	m := Resolve(csvtext.Row{"Ngay", "Ten BS", "Thanh Tien", "Ghi chu"}, model.DefaultSynonyms())

	cov := m.Coverage()
	if len(cov) != len(model.AllFields) {
		t.Fatalf("expected %d bindings, got %d", len(model.AllFields), len(cov))
	}
	byField := make(map[model.Field]Binding)
	for _, b := range cov {
		byField[b.Field] = b
	}
	if b := byField[model.FieldRevenue]; b.Column != 2 || b.Alias != "thanhtien" {
		t.Errorf("revenue binding = %+v", b)
	}
	if b := byField[model.FieldICD10]; b.Matched() {
		t.Errorf("icd10 should be unmatched, got %+v", b)
	}
	if unused := m.Unused(); !reflect.DeepEqual(unused, []string{"ghichu"}) {
		t.Errorf("Unused() = %v, want [ghichu]", unused)
	}
}
