package model

// Status is the advisory ledger written to status.json after each pipeline
// run. It is observability-only: absence or corruption never blocks
// partitioning or catalog building.
type Status struct {
	LastUpdate         string           `json:"last_update"`
	StatusLine         string           `json:"status"`
	TotalDataSizeBytes int64            `json:"total_data_size_bytes"`
	TotalAddedBytes    int64            `json:"total_added_bytes"`
	Details            map[string]int64 `json:"details,omitempty"`
}
