package model

// CatalogEntry is the read-model record for one materialized product file.
// Entries are recomputed from disk on every catalog request, never persisted.
type CatalogEntry struct {
	Filename    string `json:"filename"`
	Vertical    string `json:"vertical,omitempty"` // slug; empty when the prefix matches no vertical
	Tier        Tier   `json:"type"`
	Period      string `json:"period"`
	Rows        int    `json:"rows"`
	SizeBytes   int64  `json:"size_bytes"`
	Price       int    `json:"price"`
	Description string `json:"description"`
	DownloadURL string `json:"download_url"`

	// RowsEstimated marks entries whose row count came from a size-based
	// estimate because no sidecar metadata was found.
	RowsEstimated bool `json:"rows_estimated,omitempty"`
}

// PartitionMeta is the sidecar record written next to each product file so
// the catalog builder never re-reads data files for row counts.
type PartitionMeta struct {
	Tier   Tier   `json:"tier"`
	Period string `json:"period"`
	Rows   int    `json:"rows"`
}
