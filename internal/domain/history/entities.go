package history

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Record is one calculation performed through the service or the CLI.
type Record struct {
	ID        uuid.UUID       `json:"id"`
	Kind      string          `json:"kind"`
	Input     json.RawMessage `json:"input"`
	Output    json.RawMessage `json:"output"`
	CreatedAt time.Time       `json:"createdAt"`
}

// StoredObject describes an uploaded report.
type StoredObject struct {
	Key      string
	Size     int64
	MimeType string
	ETag     string
}

// ReportRequest selects how many recent records go into a report.
type ReportRequest struct {
	Limit int `json:"limit"`
}

// ReportResponse points at an exported report.
type ReportResponse struct {
	Key         string `json:"key"`
	Size        int64  `json:"size"`
	ETag        string `json:"etag"`
	ContentType string `json:"contentType"`
	Records     int    `json:"records"`
}

// Config holds runtime knobs for the history service.
type Config struct {
	DefaultLimit int
	MaxLimit     int
	ReportPrefix string
}
