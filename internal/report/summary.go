package report

import (
	"cmp"
	"slices"

	"github.com/gyeh/deptstats/internal/model"
)

const (
	// TotalTargetKey is the revenue_targets key for the hospital-wide target.
	TotalTargetKey = "TONG"
	// LaggingPercent is the progress below which a department is flagged.
	LaggingPercent = 75.0
	// TopDoctors caps the per-doctor ranking.
	TopDoctors = 10
)

// Summary is the rolled-up view of a record set.
type Summary struct {
	Records      int           `json:"records"`
	Revenue      float64       `json:"revenue"`
	Target       float64       `json:"target,omitempty"`
	Progress     float64       `json:"progress,omitempty"`
	Departments  []DeptSummary `json:"departments"`
	PatientTypes []Bucket      `json:"patientTypes"`
	Doctors      []Bucket      `json:"doctors"`
}

// DeptSummary is the revenue of one department against its yearly target.
type DeptSummary struct {
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	Records  int     `json:"records"`
	Revenue  float64 `json:"revenue"`
	Target   float64 `json:"target,omitempty"`
	Progress float64 `json:"progress,omitempty"` // percent of Target
	Lagging  bool    `json:"lagging"`
}

// Bucket is revenue grouped under one key.
type Bucket struct {
	Key     string  `json:"key"`
	Records int     `json:"records"`
	Revenue float64 `json:"revenue"`
}

// Summarize totals records overall, per department, per patient type and per
// doctor. targets maps department codes (and TotalTargetKey) to yearly
// revenue plans; departments without a target get no progress figure.
// Every known department is listed even with no records. Unknown codes found
// in the data are listed under their code. Departments and buckets are sorted
// by revenue descending, then by key.
func Summarize(records []model.Record, targets map[string]float64) *Summary {
	s := &Summary{Records: len(records)}

	depts := make(map[string]*DeptSummary)
	var order []string
	dept := func(code string) *DeptSummary {
		if d, ok := depts[code]; ok {
			return d
		}
		d := &DeptSummary{Code: code, Name: code}
		if known, ok := model.DepartmentByCode(code); ok {
			d.Name = known.Name
		}
		depts[code] = d
		order = append(order, code)
		return d
	}

	patientTypes := make(map[string]*Bucket)
	doctors := make(map[string]*Bucket)

	for i := range records {
		r := &records[i]
		s.Revenue += r.Revenue

		d := dept(r.DeptCode)
		d.Records++
		d.Revenue += r.Revenue

		add(patientTypes, r.PatientType, r.Revenue)
		add(doctors, r.DoctorName, r.Revenue)
	}

	for _, d := range model.AllDepartments {
		dept(string(d.Code))
	}

	if t := targets[TotalTargetKey]; t > 0 {
		s.Target = t
		s.Progress = s.Revenue / t * 100
	}

	s.Departments = make([]DeptSummary, 0, len(order))
	for _, code := range order {
		d := depts[code]
		if t := targets[code]; t > 0 {
			d.Target = t
			d.Progress = d.Revenue / t * 100
			d.Lagging = d.Progress < LaggingPercent
		}
		s.Departments = append(s.Departments, *d)
	}
	slices.SortStableFunc(s.Departments, func(a, b DeptSummary) int {
		if c := cmp.Compare(b.Revenue, a.Revenue); c != 0 {
			return c
		}
		return cmp.Compare(a.Code, b.Code)
	})

	s.PatientTypes = sortedBuckets(patientTypes)
	s.Doctors = sortedBuckets(doctors)
	if len(s.Doctors) > TopDoctors {
		s.Doctors = s.Doctors[:TopDoctors]
	}
	return s
}

// Lagging returns the departments below LaggingPercent of their target,
// weakest first.
func (s *Summary) Lagging() []DeptSummary {
	var out []DeptSummary
	for _, d := range s.Departments {
		if d.Lagging {
			out = append(out, d)
		}
	}
	slices.SortStableFunc(out, func(a, b DeptSummary) int {
		return cmp.Compare(a.Progress, b.Progress)
	})
	return out
}

func add(m map[string]*Bucket, key string, revenue float64) {
	b, ok := m[key]
	if !ok {
		b = &Bucket{Key: key}
		m[key] = b
	}
	b.Records++
	b.Revenue += revenue
}

func sortedBuckets(m map[string]*Bucket) []Bucket {
	out := make([]Bucket, 0, len(m))
	for _, b := range m {
		out = append(out, *b)
	}
	slices.SortFunc(out, func(a, b Bucket) int {
		if c := cmp.Compare(b.Revenue, a.Revenue); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return out
}
