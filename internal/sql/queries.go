package sql

import (
	"embed"
)

// Migrations holds the schema DDL, applied in filename order.
//
//go:embed migrations/*.sql
var Migrations embed.FS

//go:embed queries/register_batch.sql
var RegisterBatch string

//go:embed queries/lookup_active_batch.sql
var LookupActiveBatch string

//go:embed queries/update_batch_status.sql
var UpdateBatchStatus string

//go:embed queries/deactivate_older_batches.sql
var DeactivateOlderBatches string

//go:embed queries/activate_batch.sql
var ActivateBatch string

//go:embed queries/delete_inactive_records.sql
var DeleteInactiveRecords string

//go:embed queries/select_active_records.sql
var SelectActiveRecords string

//go:embed queries/analyze_records.sql
var AnalyzeRecords string

//go:embed queries/lock_source.sql
var LockSource string
