package historyrepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/yanqian/agrocalc/internal/domain/history"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS calculation_records (
	id         TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	input      TEXT NOT NULL,
	output     TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS calculation_records_created_at ON calculation_records (created_at DESC);
`

// SQLiteRepository stores records in a local SQLite file. Used by the CLI and
// single-node deployments.
type SQLiteRepository struct {
	db *sql.DB
}

// OpenSQLiteRepository opens (or creates) the database at path and applies the schema.
func OpenSQLiteRepository(ctx context.Context, path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, record history.Record) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO calculation_records (id, kind, input, output, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, record.ID.String(), record.Kind, string(record.Input), string(record.Output), record.CreatedAt.UnixNano())
	return err
}

func (r *SQLiteRepository) ListRecent(ctx context.Context, limit int) ([]history.Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, kind, input, output, created_at
		FROM calculation_records
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []history.Record
	for rows.Next() {
		var (
			id, kind, input, output string
			createdAt               int64
		)
		if err := rows.Scan(&id, &kind, &input, &output, &createdAt); err != nil {
			return nil, err
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("record %q: %w", id, err)
		}
		out = append(out, history.Record{
			ID:        parsed,
			Kind:      kind,
			Input:     []byte(input),
			Output:    []byte(output),
			CreatedAt: time.Unix(0, createdAt).UTC(),
		})
	}
	return out, rows.Err()
}

// Close releases the underlying database handle.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

var _ history.Repository = (*SQLiteRepository)(nil)
