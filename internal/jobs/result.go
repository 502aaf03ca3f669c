package jobs

// EtlResult summarizes one dataset ETL run for the dispatcher.
type EtlResult struct {
	DatasetName string `json:"dataset_name"`
	Status      string `json:"status"`
	RowCount    int    `json:"row_count"`
	Country     string `json:"country"`
	City        string `json:"city"`
}

// ToMap flattens the result for the queue/HTTP boundary.
func (r EtlResult) ToMap() map[string]any {
	return map[string]any{
		"dataset_name": r.DatasetName,
		"status":       r.Status,
		"row_count":    r.RowCount,
		"country":      r.Country,
		"city":         r.City,
	}
}

// RebuildEmbeddingsResult summarizes one embedding rebuild run.
type RebuildEmbeddingsResult struct {
	JobName     string `json:"job_name"`
	Status      string `json:"status"`
	RowCount    int    `json:"row_count"`
	Country     string `json:"country"`
	City        string `json:"city"`
	RegionCount int    `json:"region_count"`
}

// ToMap flattens the result for the queue/HTTP boundary.
func (r RebuildEmbeddingsResult) ToMap() map[string]any {
	return map[string]any{
		"job_name":     r.JobName,
		"status":       r.Status,
		"row_count":    r.RowCount,
		"country":      r.Country,
		"city":         r.City,
		"region_count": r.RegionCount,
	}
}
