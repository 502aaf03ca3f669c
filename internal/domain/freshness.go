package domain

import (
	"time"

	"github.com/google/uuid"
)

// DataFreshness tracks the most recent ETL run per dataset. Exactly one row
// exists per dataset name; every run overwrites it.
type DataFreshness struct {
	ID          uuid.UUID `json:"id"`
	DatasetName string    `json:"dataset_name"`
	LastRun     time.Time `json:"last_run"`
	RowCount    int       `json:"row_count"`
	Status      string    `json:"status"`
}
