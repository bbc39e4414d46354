package model

// DeptCode identifies a hospital department.
type DeptCode string

const (
	DeptKhamBenh    DeptCode = "KHAM_BENH"
	DeptNoi         DeptCode = "NOI"
	DeptNgoai       DeptCode = "NGOAI"
	DeptNhi         DeptCode = "NHI"
	DeptSan         DeptCode = "SAN"
	DeptTruyenNhiem DeptCode = "TRUYEN_NHIEM"
	DeptCapCuu      DeptCode = "CAP_CUU"
	DeptYHCTPHCN    DeptCode = "YHCT_PHCN"
	DeptXetNghiem   DeptCode = "XET_NGHIEM"
	DeptCDHA        DeptCode = "CDHA"
)

// Department pairs a code with its display name.
type Department struct {
	Code DeptCode
	Name string
}

// AllDepartments lists the departments in display order.
var AllDepartments = []Department{
	{Code: DeptKhamBenh, Name: "Khoa Khám bệnh"},
	{Code: DeptNoi, Name: "Khoa Nội"},
	{Code: DeptNgoai, Name: "Khoa Ngoại - PT - GMHS"},
	{Code: DeptNhi, Name: "Khoa Nhi"},
	{Code: DeptSan, Name: "Khoa CSSKSS và Phụ sản"},
	{Code: DeptTruyenNhiem, Name: "Khoa Truyền nhiễm"},
	{Code: DeptCapCuu, Name: "Khoa Hồi sức cấp cứu - HSTC - CĐ"},
	{Code: DeptYHCTPHCN, Name: "Khoa YHCT-PHCN"},
	{Code: DeptXetNghiem, Name: "Khoa Xét nghiệm - KSNK"},
	{Code: DeptCDHA, Name: "Khoa Chẩn đoán hình ảnh"},
}

// DepartmentByCode returns the Department for code, or ok=false.
func DepartmentByCode(code string) (Department, bool) {
	for _, d := range AllDepartments {
		if string(d.Code) == code {
			return d, true
		}
	}
	return Department{}, false
}
