package historyrepo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/agrocalc/internal/domain/history"
)

// PostgresRepository implements history.Repository using pgx.
//
// Expected schema:
//
//	CREATE TABLE calculation_records (
//	    id         UUID PRIMARY KEY,
//	    kind       TEXT NOT NULL,
//	    input      JSONB NOT NULL,
//	    output     JSONB NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL
//	);
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Save(ctx context.Context, record history.Record) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO calculation_records (id, kind, input, output, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, record.ID, record.Kind, []byte(record.Input), []byte(record.Output), record.CreatedAt)
	return err
}

func (r *PostgresRepository) ListRecent(ctx context.Context, limit int) ([]history.Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, kind, input, output, created_at
		FROM calculation_records
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []history.Record
	for rows.Next() {
		var (
			record        history.Record
			input, output []byte
		)
		if err := rows.Scan(&record.ID, &record.Kind, &input, &output, &record.CreatedAt); err != nil {
			return nil, err
		}
		record.Input = input
		record.Output = output
		out = append(out, record)
	}
	return out, rows.Err()
}

var _ history.Repository = (*PostgresRepository)(nil)
