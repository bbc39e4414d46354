// Package report filters cached records and rolls them up for the dashboard.
package report

import "github.com/gyeh/deptstats/internal/model"

// Any is the filter value that matches every record.
const Any = "ALL"

// Filter selects records. Dates are ISO strings compared lexically and both
// bounds are inclusive. An empty or Any value leaves a dimension unconstrained.
type Filter struct {
	From        string `json:"from,omitempty"`
	To          string `json:"to,omitempty"`
	DeptCode    string `json:"deptCode,omitempty"`
	Doctor      string `json:"doctor,omitempty"`
	PatientType string `json:"patientType,omitempty"`
}

// Match reports whether r passes every constraint of f.
func (f Filter) Match(r *model.Record) bool {
	if f.From != "" && r.Date < f.From {
		return false
	}
	if f.To != "" && r.Date > f.To {
		return false
	}
	return matches(f.DeptCode, r.DeptCode) &&
		matches(f.Doctor, r.DoctorName) &&
		matches(f.PatientType, r.PatientType)
}

// Apply returns the records that match f, in their original order.
func (f Filter) Apply(records []model.Record) []model.Record {
	out := make([]model.Record, 0, len(records))
	for i := range records {
		if f.Match(&records[i]) {
			out = append(out, records[i])
		}
	}
	return out
}

func matches(want, got string) bool {
	return want == "" || want == Any || want == got
}
