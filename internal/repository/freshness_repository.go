package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/localbizintel/backend/internal/db"
	"github.com/localbizintel/backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type freshnessRepository struct{}

// NewFreshnessRepository creates the pgx-backed freshness repository.
func NewFreshnessRepository() FreshnessRepository {
	return &freshnessRepository{}
}

// UpsertStatus inserts or overwrites the single status row for a dataset.
// The table never holds more than one row per dataset name.
func (r *freshnessRepository) UpsertStatus(ctx context.Context, q db.Executor, datasetName string, lastRun time.Time, rowCount int, status string) error {
	_, err := q.Exec(ctx,
		`INSERT INTO data_freshness (id, dataset_name, last_run, row_count, status)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (dataset_name) DO UPDATE SET
			last_run = EXCLUDED.last_run,
			row_count = EXCLUDED.row_count,
			status = EXCLUDED.status`,
		uuid.New(),
		datasetName,
		lastRun,
		rowCount,
		status,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert freshness for %s: %w", datasetName, err)
	}
	return nil
}

// ListAll lists dataset freshness records ordered by dataset name.
func (r *freshnessRepository) ListAll(ctx context.Context, q db.Executor) ([]domain.DataFreshness, error) {
	rows, err := q.Query(ctx,
		`SELECT id, dataset_name, last_run, row_count, status
		 FROM data_freshness
		 ORDER BY dataset_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list freshness records: %w", err)
	}
	defer rows.Close()

	out := []domain.DataFreshness{}
	for rows.Next() {
		var (
			record   domain.DataFreshness
			lastRun  pgtype.Timestamptz
			rowCount pgtype.Int4
			status   pgtype.Text
		)
		if err := rows.Scan(&record.ID, &record.DatasetName, &lastRun, &rowCount, &status); err != nil {
			return nil, fmt.Errorf("failed to scan freshness record: %w", err)
		}
		if lastRun.Valid {
			record.LastRun = lastRun.Time
		}
		if rowCount.Valid {
			record.RowCount = int(rowCount.Int32)
		}
		if status.Valid {
			record.Status = status.String
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate freshness records: %w", err)
	}
	return out, nil
}
