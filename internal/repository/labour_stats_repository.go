package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/localbizintel/backend/internal/db"
	"github.com/localbizintel/backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

type labourStatsRepository struct{}

// NewLabourStatsRepository creates the pgx-backed labour stats repository.
func NewLabourStatsRepository() LabourStatsRepository {
	return &labourStatsRepository{}
}

const labourStatsUpsertSQL = `
	INSERT INTO labour_stats (
		id, tenant_id, geo_id, country, city, unemployment_rate,
		job_openings, median_salary, labour_force_participation, last_updated
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (geo_id, city, country) DO UPDATE SET
		unemployment_rate = EXCLUDED.unemployment_rate,
		job_openings = EXCLUDED.job_openings,
		median_salary = EXCLUDED.median_salary,
		labour_force_participation = EXCLUDED.labour_force_participation,
		last_updated = EXCLUDED.last_updated`

// UpsertMany inserts or updates rows keyed by (geo_id, city, country).
// Returns the number of input rows processed.
func (r *labourStatsRepository) UpsertMany(ctx context.Context, q db.Executor, rows []domain.LabourStats, lastUpdated time.Time) (int, error) {
	affected := 0
	for _, row := range rows {
		_, err := q.Exec(ctx, labourStatsUpsertSQL,
			uuid.New(),
			row.TenantID,
			row.GeoID,
			row.Country,
			row.City,
			row.UnemploymentRate,
			row.JobOpenings,
			row.MedianSalary,
			row.LabourForceParticipation,
			lastUpdated,
		)
		if err != nil {
			return affected, fmt.Errorf("failed to upsert labour stats row %s: %w", row.GeoID, err)
		}
		affected++
	}
	return affected, nil
}

// GetForRegions lists labour stats rows for all regions in a city ordered by
// geo_id. An empty country means no country filter.
func (r *labourStatsRepository) GetForRegions(ctx context.Context, q db.Executor, city string, country string) ([]domain.LabourStats, error) {
	query := `SELECT id, tenant_id, geo_id, country, city, unemployment_rate,
		job_openings, median_salary, labour_force_participation, last_updated
		FROM labour_stats WHERE city = $1`
	args := []any{city}
	if country != "" {
		query += ` AND country = $2`
		args = append(args, country)
	}
	query += ` ORDER BY geo_id`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list labour stats: %w", err)
	}
	defer rows.Close()

	out := []domain.LabourStats{}
	for rows.Next() {
		var (
			row           domain.LabourStats
			unemployment  decimal.NullDecimal
			jobOpenings   pgtype.Int4
			medianSalary  decimal.NullDecimal
			participation decimal.NullDecimal
			lastUpdated   pgtype.Timestamptz
		)
		if err := rows.Scan(
			&row.ID,
			&row.TenantID,
			&row.GeoID,
			&row.Country,
			&row.City,
			&unemployment,
			&jobOpenings,
			&medianSalary,
			&participation,
			&lastUpdated,
		); err != nil {
			return nil, fmt.Errorf("failed to scan labour stats row: %w", err)
		}
		if unemployment.Valid {
			row.UnemploymentRate = &unemployment.Decimal
		}
		if jobOpenings.Valid {
			value := int(jobOpenings.Int32)
			row.JobOpenings = &value
		}
		if medianSalary.Valid {
			row.MedianSalary = &medianSalary.Decimal
		}
		if participation.Valid {
			row.LabourForceParticipation = &participation.Decimal
		}
		if lastUpdated.Valid {
			row.LastUpdated = lastUpdated.Time
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate labour stats rows: %w", err)
	}
	return out, nil
}
