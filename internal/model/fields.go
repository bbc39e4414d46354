package model

// Field is one of the canonical logical attributes every ingested record carries,
// whatever the source column happens to be called.
type Field string

const (
	FieldRevenue       Field = "revenue"
	FieldDate          Field = "date"
	FieldDeptCode      Field = "deptCode"
	FieldServiceName   Field = "serviceName"
	FieldDoctorName    Field = "doctorName"
	FieldICD10         Field = "icd10"
	FieldPatientType   Field = "patientType"
	FieldAdmissionType Field = "admissionType"
)

// AllFields lists the logical fields in canonical order.
var AllFields = []Field{
	FieldRevenue,
	FieldDate,
	FieldDeptCode,
	FieldServiceName,
	FieldDoctorName,
	FieldICD10,
	FieldPatientType,
	FieldAdmissionType,
}

// FieldByName returns the Field for the given name, or ok=false.
func FieldByName(name string) (Field, bool) {
	for _, f := range AllFields {
		if string(f) == name {
			return f, true
		}
	}
	return "", false
}
