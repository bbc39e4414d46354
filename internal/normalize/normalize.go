package normalize

import "github.com/gyeh/deptstats/internal/model"

// LookupFunc returns the resolved raw value of a logical field for one row,
// or ok=false when no alias produced a non-empty cell.
type LookupFunc func(f model.Field) (string, bool)

// ToRecord coerces every logical field of one row into a Record. It never
// fails: each absent or malformed value is replaced by its default.
func ToRecord(id string, lookup LookupFunc, today string, d model.Defaults) model.Record {
	get := func(f model.Field) string {
		v, _ := lookup(f)
		return v
	}
	return model.Record{
		ID:            id,
		Date:          Date(get(model.FieldDate), today),
		DeptCode:      Text(get(model.FieldDeptCode), d.DeptCode),
		ServiceName:   Text(get(model.FieldServiceName), d.ServiceName),
		DoctorName:    Text(get(model.FieldDoctorName), d.DoctorName),
		ICD10:         Text(get(model.FieldICD10), d.ICD10),
		PatientType:   Text(get(model.FieldPatientType), d.PatientType),
		AdmissionType: Text(get(model.FieldAdmissionType), d.AdmissionType),
		Revenue:       Revenue(get(model.FieldRevenue)),
	}
}
