package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dataset-artifact-service/internal/core/domain"
	output "dataset-artifact-service/internal/core/ports/output"
)

const schema = `
	CREATE TABLE IF NOT EXISTS dataset_upload (
		id            UUID PRIMARY KEY,
		filename      TEXT NOT NULL,
		namespace     TEXT NOT NULL DEFAULT '',
		status        TEXT NOT NULL,
		stage         TEXT NOT NULL,
		category      TEXT NOT NULL DEFAULT '',
		error_message TEXT NOT NULL DEFAULT '',
		artifacts     JSONB NOT NULL DEFAULT '{}',
		size_bytes    BIGINT NOT NULL DEFAULT 0,
		columns_count INTEGER NOT NULL DEFAULT 0,
		rows_count    INTEGER NOT NULL DEFAULT 0,
		created_at    TIMESTAMPTZ NOT NULL,
		completed_at  TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS dataset_upload_created_at_idx ON dataset_upload (created_at DESC);
`

const uploadColumns = `id, filename, namespace, status, stage, category, error_message,
	artifacts, size_bytes, columns_count, rows_count, created_at, completed_at`

type uploadRepo struct {
	pool *pgxpool.Pool
}

// NewUploadRepository creates the upload catalog backed by the dataset_upload table.
func NewUploadRepository(pool *pgxpool.Pool) output.UploadRepository {
	return &uploadRepo{pool: pool}
}

// Migrate creates the dataset_upload table if it does not exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate dataset_upload: %w", err)
	}
	return nil
}

func (r *uploadRepo) Create(ctx context.Context, rec *domain.UploadRecord) error {
	artifactsJSON, err := json.Marshal(rec.Artifacts)
	if err != nil {
		return fmt.Errorf("marshal artifacts: %w", err)
	}

	query := `
		INSERT INTO dataset_upload (` + uploadColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = r.pool.Exec(ctx, query,
		rec.ID,
		rec.Filename,
		rec.Namespace,
		string(rec.Status),
		string(rec.Stage),
		string(rec.Category),
		rec.ErrorMessage,
		artifactsJSON,
		rec.SizeBytes,
		rec.Columns,
		rec.Rows,
		rec.CreatedAt,
		rec.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert dataset_upload: %w", err)
	}
	return nil
}

func (r *uploadRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.UploadRecord, error) {
	query := `SELECT ` + uploadColumns + ` FROM dataset_upload WHERE id = $1`
	rec, err := scanUpload(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUploadRecordNotFound
		}
		return nil, fmt.Errorf("get dataset_upload by id: %w", err)
	}
	return rec, nil
}

func (r *uploadRepo) List(ctx context.Context, filter output.UploadListFilter) ([]*domain.UploadRecord, int, error) {
	whereClause := "1=1"
	args := []interface{}{}
	argPos := 1
	if filter.Status != "" {
		whereClause = fmt.Sprintf("status = $%d", argPos)
		args = append(args, string(filter.Status))
		argPos++
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM dataset_upload WHERE " + whereClause
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count dataset uploads: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM dataset_upload
		WHERE %s
		ORDER BY created_at DESC, id
		LIMIT $%d OFFSET $%d
	`, uploadColumns, whereClause, argPos, argPos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list dataset uploads: %w", err)
	}
	defer rows.Close()

	var records []*domain.UploadRecord
	for rows.Next() {
		rec, err := scanUpload(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan dataset_upload row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate dataset_upload rows: %w", err)
	}

	return records, total, nil
}

func scanUpload(row pgx.Row) (*domain.UploadRecord, error) {
	rec := &domain.UploadRecord{}
	var status, stage, category string
	var artifactsJSON []byte

	err := row.Scan(
		&rec.ID, &rec.Filename, &rec.Namespace, &status, &stage, &category, &rec.ErrorMessage,
		&artifactsJSON, &rec.SizeBytes, &rec.Columns, &rec.Rows, &rec.CreatedAt, &rec.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.Status = domain.UploadStatus(status)
	rec.Stage = domain.UploadStage(stage)
	rec.Category = domain.Category(category)

	rec.Artifacts = map[string]string{}
	if len(artifactsJSON) > 0 {
		if err := json.Unmarshal(artifactsJSON, &rec.Artifacts); err != nil {
			return nil, fmt.Errorf("unmarshal artifacts: %w", err)
		}
	}
	return rec, nil
}
