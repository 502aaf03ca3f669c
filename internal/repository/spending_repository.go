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

type spendingRepository struct{}

// NewSpendingRepository creates the pgx-backed spending repository.
func NewSpendingRepository() SpendingRepository {
	return &spendingRepository{}
}

const spendingUpsertSQL = `
	INSERT INTO spending (
		id, tenant_id, geo_id, country, city, category,
		avg_monthly_spend, spend_index, last_updated
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (geo_id, city, country, category) DO UPDATE SET
		avg_monthly_spend = EXCLUDED.avg_monthly_spend,
		spend_index = EXCLUDED.spend_index,
		last_updated = EXCLUDED.last_updated`

// UpsertMany inserts or updates rows keyed by (geo_id, city, country,
// category). Returns the number of input rows processed.
func (r *spendingRepository) UpsertMany(ctx context.Context, q db.Executor, rows []domain.Spending, lastUpdated time.Time) (int, error) {
	affected := 0
	for _, row := range rows {
		_, err := q.Exec(ctx, spendingUpsertSQL,
			uuid.New(),
			row.TenantID,
			row.GeoID,
			row.Country,
			row.City,
			row.Category,
			row.AvgMonthlySpend,
			row.SpendIndex,
			lastUpdated,
		)
		if err != nil {
			return affected, fmt.Errorf("failed to upsert spending row %s/%s: %w", row.GeoID, row.Category, err)
		}
		affected++
	}
	return affected, nil
}

// GetForRegions lists spending rows for all regions in a city ordered by
// category. An empty country means no country filter.
func (r *spendingRepository) GetForRegions(ctx context.Context, q db.Executor, city string, country string) ([]domain.Spending, error) {
	query := `SELECT id, tenant_id, geo_id, country, city, category,
		avg_monthly_spend, spend_index, last_updated
		FROM spending WHERE city = $1`
	args := []any{city}
	if country != "" {
		query += ` AND country = $2`
		args = append(args, country)
	}
	query += ` ORDER BY category`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list spending: %w", err)
	}
	defer rows.Close()

	out := []domain.Spending{}
	for rows.Next() {
		var (
			row         domain.Spending
			avgSpend    decimal.NullDecimal
			spendIndex  decimal.NullDecimal
			lastUpdated pgtype.Timestamptz
		)
		if err := rows.Scan(
			&row.ID,
			&row.TenantID,
			&row.GeoID,
			&row.Country,
			&row.City,
			&row.Category,
			&avgSpend,
			&spendIndex,
			&lastUpdated,
		); err != nil {
			return nil, fmt.Errorf("failed to scan spending row: %w", err)
		}
		if avgSpend.Valid {
			row.AvgMonthlySpend = &avgSpend.Decimal
		}
		if spendIndex.Valid {
			row.SpendIndex = &spendIndex.Decimal
		}
		if lastUpdated.Valid {
			row.LastUpdated = lastUpdated.Time
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate spending rows: %w", err)
	}
	return out, nil
}
