package history

import "context"

// Repository persists calculation records.
type Repository interface {
	Save(ctx context.Context, record Record) error
	// ListRecent returns up to limit records, newest first.
	ListRecent(ctx context.Context, limit int) ([]Record, error)
}

// ReportRenderer turns records into a downloadable document.
type ReportRenderer interface {
	Render(records []Record) ([]byte, error)
	ContentType() string
	Extension() string
}

// ObjectStorage stores rendered reports.
type ObjectStorage interface {
	Put(ctx context.Context, key string, data []byte, mimeType string) (StoredObject, error)
}
