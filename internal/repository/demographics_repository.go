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

type demographicsRepository struct{}

// NewDemographicsRepository creates the pgx-backed demographics repository.
func NewDemographicsRepository() DemographicsRepository {
	return &demographicsRepository{}
}

const demographicsUpsertSQL = `
	INSERT INTO demographics (
		id, tenant_id, geo_id, country, city, population_total, median_income,
		age_distribution, education_levels, household_size_avg, immigration_ratio,
		coordinates, last_updated
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	ON CONFLICT (geo_id, city, country) DO UPDATE SET
		population_total = EXCLUDED.population_total,
		median_income = EXCLUDED.median_income,
		age_distribution = EXCLUDED.age_distribution,
		education_levels = EXCLUDED.education_levels,
		household_size_avg = EXCLUDED.household_size_avg,
		immigration_ratio = EXCLUDED.immigration_ratio,
		coordinates = EXCLUDED.coordinates,
		last_updated = EXCLUDED.last_updated`

// UpsertMany inserts or updates rows keyed by (geo_id, city, country). Key
// fields and tenant_id of an existing row are never overwritten. Returns the
// number of input rows processed.
func (r *demographicsRepository) UpsertMany(ctx context.Context, q db.Executor, rows []domain.Demographics, lastUpdated time.Time) (int, error) {
	affected := 0
	for _, row := range rows {
		ageDistribution, err := marshalJSONB(row.AgeDistribution)
		if err != nil {
			return affected, err
		}
		educationLevels, err := marshalJSONB(row.EducationLevels)
		if err != nil {
			return affected, err
		}
		coordinates, err := marshalJSONB(row.Coordinates)
		if err != nil {
			return affected, err
		}

		_, err = q.Exec(ctx, demographicsUpsertSQL,
			uuid.New(),
			row.TenantID,
			row.GeoID,
			row.Country,
			row.City,
			row.PopulationTotal,
			row.MedianIncome,
			ageDistribution,
			educationLevels,
			row.HouseholdSizeAvg,
			row.ImmigrationRatio,
			coordinates,
			lastUpdated,
		)
		if err != nil {
			return affected, fmt.Errorf("failed to upsert demographics row %s: %w", row.GeoID, err)
		}
		affected++
	}
	return affected, nil
}

// GetForRegions lists demographics rows for all regions in a city, oldest
// geo_id first. An empty country means no country filter.
func (r *demographicsRepository) GetForRegions(ctx context.Context, q db.Executor, city string, country string) ([]domain.Demographics, error) {
	query := `SELECT id, tenant_id, geo_id, country, city, population_total, median_income,
		age_distribution, education_levels, household_size_avg, immigration_ratio, last_updated
		FROM demographics WHERE city = $1`
	args := []any{city}
	if country != "" {
		query += ` AND country = $2`
		args = append(args, country)
	}
	query += ` ORDER BY geo_id`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list demographics: %w", err)
	}
	defer rows.Close()

	out := []domain.Demographics{}
	for rows.Next() {
		var (
			row             domain.Demographics
			ageDistribution []byte
			educationLevels []byte
			medianIncome    decimal.Decimal
			householdSize   decimal.NullDecimal
			immigration     decimal.NullDecimal
			lastUpdated     pgtype.Timestamptz
		)
		if err := rows.Scan(
			&row.ID,
			&row.TenantID,
			&row.GeoID,
			&row.Country,
			&row.City,
			&row.PopulationTotal,
			&medianIncome,
			&ageDistribution,
			&educationLevels,
			&householdSize,
			&immigration,
			&lastUpdated,
		); err != nil {
			return nil, fmt.Errorf("failed to scan demographics row: %w", err)
		}

		row.MedianIncome = medianIncome
		if row.AgeDistribution, err = unmarshalJSONBMap(ageDistribution); err != nil {
			return nil, err
		}
		if row.EducationLevels, err = unmarshalJSONBMap(educationLevels); err != nil {
			return nil, err
		}
		if householdSize.Valid {
			row.HouseholdSizeAvg = &householdSize.Decimal
		}
		if immigration.Valid {
			row.ImmigrationRatio = &immigration.Decimal
		}
		if lastUpdated.Valid {
			row.LastUpdated = lastUpdated.Time
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate demographics rows: %w", err)
	}
	return out, nil
}
