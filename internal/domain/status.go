package domain

// Run status values recorded in freshness and audit rows.
const (
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)
