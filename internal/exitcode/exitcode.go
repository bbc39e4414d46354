package exitcode

const (
	Success         = 0
	UsageError      = 1
	ValidationError = 2
	DBConnError     = 3
	CopyError       = 4
	IngestError     = 5
	SourceError     = 6
	Timeout         = 7
	Busy            = 8
)
