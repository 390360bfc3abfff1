package models

// ImportError describes one rejected line of a bulk import
type ImportError struct {
	Line    int         `json:"line"`
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// ImportReport is the result of a bulk story import
type ImportReport struct {
	Origin          Origin        `json:"origin"`
	TotalRecords    int           `json:"total_records"`
	SuccessfulCount int           `json:"successful"`
	FailedCount     int           `json:"failed"`
	DurationMs      int64         `json:"duration_ms"`
	RowsPerSec      float64       `json:"rows_per_sec,omitempty"`
	CreatedIDs      []string      `json:"created_ids"`
	Errors          []ImportError `json:"errors,omitempty"`
}

// ExportFormat is the encoding of a story export stream
type ExportFormat string

const (
	ExportNDJSON ExportFormat = "ndjson"
	ExportJSON   ExportFormat = "json"
)
