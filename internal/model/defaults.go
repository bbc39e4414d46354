package model

// Defaults holds the fallback literal substituted for each free-text field
// when the source row has no usable value.
type Defaults struct {
	DeptCode      string `yaml:"dept_code"`
	ServiceName   string `yaml:"service_name"`
	DoctorName    string `yaml:"doctor_name"`
	ICD10         string `yaml:"icd10"`
	PatientType   string `yaml:"patient_type"`
	AdmissionType string `yaml:"admission_type"`
}

// StandardDefaults returns the fallbacks used by the dashboard.
func StandardDefaults() Defaults {
	return Defaults{
		DeptCode:      string(DeptKhamBenh),
		ServiceName:   "Dịch vụ y tế",
		DoctorName:    "Bác sĩ",
		ICD10:         "Z00",
		PatientType:   "BHYT",
		AdmissionType: "NGOAI_TRU",
	}
}

// WithFallbacks fills every empty value in d from base.
func (d Defaults) WithFallbacks(base Defaults) Defaults {
	pick := func(v, fallback string) string {
		if v == "" {
			return fallback
		}
		return v
	}
	return Defaults{
		DeptCode:      pick(d.DeptCode, base.DeptCode),
		ServiceName:   pick(d.ServiceName, base.ServiceName),
		DoctorName:    pick(d.DoctorName, base.DoctorName),
		ICD10:         pick(d.ICD10, base.ICD10),
		PatientType:   pick(d.PatientType, base.PatientType),
		AdmissionType: pick(d.AdmissionType, base.AdmissionType),
	}
}

// For returns the fallback for a free-text field. Revenue and date have
// computed defaults and return "".
func (d Defaults) For(f Field) string {
	switch f {
	case FieldDeptCode:
		return d.DeptCode
	case FieldServiceName:
		return d.ServiceName
	case FieldDoctorName:
		return d.DoctorName
	case FieldICD10:
		return d.ICD10
	case FieldPatientType:
		return d.PatientType
	case FieldAdmissionType:
		return d.AdmissionType
	}
	return ""
}
