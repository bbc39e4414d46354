package model

import "github.com/google/uuid"

// Record is one normalized billing/visit line. Every field is always
// populated; missing source values are replaced by defaults during assembly.
type Record struct {
	ID            string  `json:"id" parquet:"id"`
	Date          string  `json:"date" parquet:"date"` // YYYY-MM-DD
	DeptCode      string  `json:"deptCode" parquet:"dept_code"`
	ServiceName   string  `json:"serviceName" parquet:"service_name"`
	DoctorName    string  `json:"doctorName" parquet:"doctor_name"`
	ICD10         string  `json:"icd10" parquet:"icd10"`
	PatientType   string  `json:"patientType" parquet:"patient_type"`
	AdmissionType string  `json:"admissionType" parquet:"admission_type"`
	Revenue       float64 `json:"revenue" parquet:"revenue"`
}

// RecordColumns returns the ordered column names for COPY into dash.records.
func RecordColumns() []string {
	return []string{
		"batch_id",
		"row_number",
		"record_id",
		"date",
		"dept_code",
		"service_name",
		"doctor_name",
		"icd10",
		"patient_type",
		"admission_type",
		"revenue",
	}
}

// CopyValues returns the record values in the same order as RecordColumns(),
// suitable for pgx CopyFromSource. rowNum keeps the batch order stable on read-back.
func (r *Record) CopyValues(batchID uuid.UUID, rowNum int64) []any {
	return []any{
		batchID,
		rowNum,
		r.ID,
		r.Date,
		r.DeptCode,
		r.ServiceName,
		r.DoctorName,
		r.ICD10,
		r.PatientType,
		r.AdmissionType,
		r.Revenue,
	}
}
