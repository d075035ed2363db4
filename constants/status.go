package constants

// JobStatus is the canonical status for rows in the run ledger.
type JobStatus string

// Stable values (store these exact strings in the ledger).
const (
	JobStatusQueued  JobStatus = "QUEUED"  // queued for processing
	JobStatusRunning JobStatus = "RUNNING" // in progress
	JobStatusOK      JobStatus = "OK"      // folder processed end to end
	JobStatusFailed  JobStatus = "FAILED"  // terminal failure for this folder
)
