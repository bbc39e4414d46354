package model

// SynonymTable maps a logical field to the header aliases that may carry it,
// in preference order. Aliases are human-readable; they are normalized before
// matching so case, spacing and diacritics do not matter.
type SynonymTable map[Field][]string

// DefaultSynonyms returns the alias table used when no config overrides it.
// It covers the column names seen in the department billing exports.
func DefaultSynonyms() SynonymTable {
	return SynonymTable{
		FieldRevenue:       {"revenue", "doanhthu", "thanhtien", "tien", "amount", "tongtien"},
		FieldDate:          {"date", "ngay", "thoigian", "ngaykham", "ngayct"},
		FieldDeptCode:      {"deptcode", "makhoa", "khoa", "phongban", "idkhoa"},
		FieldServiceName:   {"servicename", "tendv", "tendichvu", "dichvu", "service"},
		FieldDoctorName:    {"doctorname", "tenbs", "tenbacsi", "bacsi", "doctor"},
		FieldICD10:         {"icd10", "maicd", "benh", "icd", "diagnosis"},
		FieldPatientType:   {"patienttype", "doituong", "loaibn", "type"},
		FieldAdmissionType: {"admissiontype", "loaidieutri", "hinhthucdieutri", "noitrungoaitru"},
	}
}

// Clone returns a deep copy so a worker can own its table outright.
func (t SynonymTable) Clone() SynonymTable {
	out := make(SynonymTable, len(t))
	for f, aliases := range t {
		out[f] = append([]string(nil), aliases...)
	}
	return out
}

// Merge returns a copy of t with every field present in override replacing t's aliases.
func (t SynonymTable) Merge(override SynonymTable) SynonymTable {
	out := t.Clone()
	for f, aliases := range override {
		out[f] = append([]string(nil), aliases...)
	}
	return out
}
