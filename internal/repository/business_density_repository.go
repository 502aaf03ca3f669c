package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/localbizintel/backend/internal/db"
	"github.com/localbizintel/backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

type businessDensityRepository struct{}

// NewBusinessDensityRepository creates the pgx-backed business density repository.
func NewBusinessDensityRepository() BusinessDensityRepository {
	return &businessDensityRepository{}
}

const businessDensityUpsertSQL = `
	INSERT INTO business_density (
		id, tenant_id, geo_id, country, city, business_type,
		count, density_score, coordinates, last_updated
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (geo_id, city, country, business_type) DO UPDATE SET
		count = EXCLUDED.count,
		density_score = EXCLUDED.density_score,
		coordinates = EXCLUDED.coordinates,
		last_updated = EXCLUDED.last_updated`

// UpsertMany inserts or updates rows keyed by (geo_id, city, country,
// business_type). Returns the number of input rows processed.
func (r *businessDensityRepository) UpsertMany(ctx context.Context, q db.Executor, rows []domain.BusinessDensity, lastUpdated time.Time) (int, error) {
	affected := 0
	for _, row := range rows {
		var coordinates any
		if len(row.Coordinates) > 0 {
			data, err := json.Marshal(row.Coordinates)
			if err != nil {
				return affected, fmt.Errorf("failed to marshal coordinates for %s: %w", row.GeoID, err)
			}
			coordinates = data
		}

		_, err := q.Exec(ctx, businessDensityUpsertSQL,
			uuid.New(),
			row.TenantID,
			row.GeoID,
			row.Country,
			row.City,
			row.BusinessType,
			row.Count,
			row.DensityScore,
			coordinates,
			lastUpdated,
		)
		if err != nil {
			return affected, fmt.Errorf("failed to upsert business density row %s/%s: %w", row.GeoID, row.BusinessType, err)
		}
		affected++
	}
	return affected, nil
}

// ListByCityAndType lists business density rows for a city ordered by
// business type. Empty country and businessType mean no filter.
func (r *businessDensityRepository) ListByCityAndType(ctx context.Context, q db.Executor, city string, country string, businessType string) ([]domain.BusinessDensity, error) {
	query := `SELECT id, tenant_id, geo_id, country, city, business_type,
		count, density_score, coordinates, last_updated
		FROM business_density WHERE city = $1`
	args := []any{city}
	if country != "" {
		args = append(args, country)
		query += fmt.Sprintf(` AND country = $%d`, len(args))
	}
	if businessType != "" {
		args = append(args, businessType)
		query += fmt.Sprintf(` AND business_type = $%d`, len(args))
	}
	query += ` ORDER BY business_type`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list business density: %w", err)
	}
	defer rows.Close()

	out := []domain.BusinessDensity{}
	for rows.Next() {
		var (
			row          domain.BusinessDensity
			count        pgtype.Int4
			densityScore decimal.NullDecimal
			coordinates  []byte
			lastUpdated  pgtype.Timestamptz
		)
		if err := rows.Scan(
			&row.ID,
			&row.TenantID,
			&row.GeoID,
			&row.Country,
			&row.City,
			&row.BusinessType,
			&count,
			&densityScore,
			&coordinates,
			&lastUpdated,
		); err != nil {
			return nil, fmt.Errorf("failed to scan business density row: %w", err)
		}
		if count.Valid {
			value := int(count.Int32)
			row.Count = &value
		}
		if densityScore.Valid {
			row.DensityScore = &densityScore.Decimal
		}
		if len(coordinates) > 0 {
			if err := json.Unmarshal(coordinates, &row.Coordinates); err != nil {
				return nil, fmt.Errorf("failed to unmarshal coordinates: %w", err)
			}
		}
		if lastUpdated.Valid {
			row.LastUpdated = lastUpdated.Time
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate business density rows: %w", err)
	}
	return out, nil
}
