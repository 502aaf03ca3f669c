package repository

import (
	"context"
	"fmt"

	"github.com/localbizintel/backend/internal/db"
	"github.com/localbizintel/backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type etlLogRepository struct{}

// NewEtlLogRepository creates the pgx-backed audit log repository.
func NewEtlLogRepository() EtlLogRepository {
	return &etlLogRepository{}
}

// Append records one job invocation. Rows are append-only.
func (r *etlLogRepository) Append(ctx context.Context, q db.Executor, entry domain.EtlLogEntry) error {
	payload, err := marshalJSONB(entry.Payload)
	if err != nil {
		return err
	}

	_, err = q.Exec(ctx,
		`INSERT INTO etl_logs (id, job_name, payload, status, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		uuid.New(),
		entry.JobName,
		payload,
		entry.Status,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append etl log: %w", err)
	}
	return nil
}

// ListRecent lists the most recent run records, newest first.
func (r *etlLogRepository) ListRecent(ctx context.Context, q db.Executor, limit int) ([]domain.EtlLogEntry, error) {
	if limit <= 0 {
		limit = 200
	}

	rows, err := q.Query(ctx,
		`SELECT id, job_name, payload, status, created_at
		 FROM etl_logs
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list etl logs: %w", err)
	}
	defer rows.Close()

	logs := []domain.EtlLogEntry{}
	for rows.Next() {
		var (
			entry     domain.EtlLogEntry
			payload   []byte
			status    pgtype.Text
			createdAt pgtype.Timestamptz
		)
		if err := rows.Scan(&entry.ID, &entry.JobName, &payload, &status, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan etl log: %w", err)
		}
		if entry.Payload, err = unmarshalJSONBMap(payload); err != nil {
			return nil, err
		}
		if status.Valid {
			entry.Status = status.String
		}
		if createdAt.Valid {
			entry.CreatedAt = createdAt.Time
		}
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate etl logs: %w", err)
	}
	return logs, nil
}
