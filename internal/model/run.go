package model

import "time"

// RunStatus is the lifecycle state of one pipeline run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusPartial  RunStatus = "partial" // at least one vertical failed
	RunStatusFailed   RunStatus = "failed"
)

// VerticalOutcome records what one pipeline run did for one vertical.
type VerticalOutcome struct {
	Slug       string `json:"slug"`
	Backfilled bool   `json:"backfilled,omitempty"`
	StoreRows  int    `json:"store_rows"`
	Partitions int    `json:"partitions"`
	Error      string `json:"error,omitempty"`
}

// Run is one recorded pipeline run.
type Run struct {
	ID              string            `json:"id"`
	Status          RunStatus         `json:"status"`
	StartedAt       time.Time         `json:"started_at"`
	FinishedAt      time.Time         `json:"finished_at,omitempty"`
	TotalAddedBytes int64             `json:"total_added_bytes"`
	Details         map[string]int64  `json:"details,omitempty"`
	Verticals       []VerticalOutcome `json:"verticals,omitempty"`
}
