package model

import "time"

// IngestSummary captures metrics from a single ingestion batch.
type IngestSummary struct {
	SourceID       string        `json:"sourceId"`
	SourceSHA256   string        `json:"sourceSha256"`
	BatchID        string        `json:"batchId"`
	BytesRead      int64         `json:"bytesRead"`
	RowsTokenized  int64         `json:"rowsTokenized"`
	RecordsBuilt   int64         `json:"recordsBuilt"`
	RecordsStaged  int64         `json:"recordsStaged"`
	RecordsPruned  int64         `json:"recordsPruned"`
	AlreadyLoaded  bool          `json:"alreadyLoaded"`
	Persisted      bool          `json:"persisted"`
	DurationParse  time.Duration `json:"durationParse"`
	DurationCopy   time.Duration `json:"durationCopy"`
	DurationCommit time.Duration `json:"durationCommit"`
	DurationTotal  time.Duration `json:"durationTotal"`
}
