package metadata

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const repoTimeout = 5 * time.Second

const createTableSQL = `
CREATE TABLE IF NOT EXISTS file_metadata (
    record_id           TEXT PRIMARY KEY,
    object_name         TEXT NOT NULL,
    container           TEXT NOT NULL,
    size_bytes          BIGINT NOT NULL CHECK (size_bytes >= 0),
    content_type        TEXT NOT NULL,
    file_extension      TEXT NOT NULL,
    upload_timestamp    TEXT NOT NULL,
    store_last_modified TEXT,
    processed_by        TEXT NOT NULL
);`

// PostgresRepository stores metadata records in the file_metadata table.
type PostgresRepository struct {
	pool     *pgxpool.Pool
	pageSize int
}

// NewPostgresRepository builds a repository reading pageSize rows per scan.
func NewPostgresRepository(pool *pgxpool.Pool, pageSize int) *PostgresRepository {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &PostgresRepository{pool: pool, pageSize: pageSize}
}

// EnsureSchema creates the file_metadata table when it is missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	if _, err := r.pool.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create file_metadata table: %w", err)
	}
	return nil
}

// Upsert inserts the record or overwrites the row sharing its record_id.
func (r *PostgresRepository) Upsert(ctx context.Context, rec Record) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
INSERT INTO file_metadata (record_id, object_name, container, size_bytes, content_type, file_extension, upload_timestamp, store_last_modified, processed_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (record_id)
DO UPDATE SET
    object_name         = EXCLUDED.object_name,
    container           = EXCLUDED.container,
    size_bytes          = EXCLUDED.size_bytes,
    content_type        = EXCLUDED.content_type,
    file_extension      = EXCLUDED.file_extension,
    upload_timestamp    = EXCLUDED.upload_timestamp,
    store_last_modified = EXCLUDED.store_last_modified,
    processed_by        = EXCLUDED.processed_by;`

	_, err := r.pool.Exec(ctx, query,
		rec.RecordID,
		rec.ObjectName,
		rec.Container,
		rec.SizeBytes,
		rec.ContentType,
		rec.FileExtension,
		rec.UploadTimestamp,
		rec.StoreLastModified,
		rec.ProcessedBy,
	)
	if err != nil {
		return fmt.Errorf("upsert file metadata: %w", err)
	}
	return nil
}

// Scan returns up to pageSize rows with record_id greater than token. The
// last record_id of a full page is the next token.
func (r *PostgresRepository) Scan(ctx context.Context, token string) (Page, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
SELECT record_id, object_name, container, size_bytes, content_type, file_extension, upload_timestamp, store_last_modified, processed_by
FROM file_metadata
WHERE record_id > $1
ORDER BY record_id
LIMIT $2;`

	rows, err := r.pool.Query(ctx, query, token, r.pageSize)
	if err != nil {
		return Page{}, fmt.Errorf("scan file metadata: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0, r.pageSize)
	for rows.Next() {
		var rec Record
		if err := rows.Scan(
			&rec.RecordID,
			&rec.ObjectName,
			&rec.Container,
			&rec.SizeBytes,
			&rec.ContentType,
			&rec.FileExtension,
			&rec.UploadTimestamp,
			&rec.StoreLastModified,
			&rec.ProcessedBy,
		); err != nil {
			return Page{}, fmt.Errorf("%w: scan row: %v", ErrMalformedPage, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return Page{}, fmt.Errorf("iterate file metadata: %w", err)
	}

	page := Page{Records: records}
	if len(records) == r.pageSize {
		page.NextToken = records[len(records)-1].RecordID
	}
	return page, nil
}

// Ping checks database connectivity.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()
	return r.pool.Ping(ctx)
}
