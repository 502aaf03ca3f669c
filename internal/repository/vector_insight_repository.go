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

type vectorInsightRepository struct{}

// NewVectorInsightRepository creates the pgx-backed vector store repository.
func NewVectorInsightRepository() VectorInsightRepository {
	return &vectorInsightRepository{}
}

const vectorInsightUpsertSQL = `
	INSERT INTO vector_insights (id, tenant_id, geo_id, embedding, metadata, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (tenant_id, geo_id) DO UPDATE SET
		embedding = EXCLUDED.embedding,
		metadata = EXCLUDED.metadata,
		created_at = EXCLUDED.created_at`

// UpsertMany inserts or updates embeddings keyed by (tenant_id, geo_id). A
// NULL tenant_id matches the NULLS NOT DISTINCT unique index, so shared
// (tenant-less) insights also overwrite in place. Returns the number of input
// rows processed.
func (r *vectorInsightRepository) UpsertMany(ctx context.Context, q db.Executor, rows []domain.VectorInsight, createdAt time.Time) (int, error) {
	affected := 0
	for _, row := range rows {
		metadata, err := marshalJSONB(row.Metadata)
		if err != nil {
			return affected, err
		}

		_, err = q.Exec(ctx, vectorInsightUpsertSQL,
			uuid.New(),
			row.TenantID,
			row.GeoID,
			row.Embedding,
			metadata,
			createdAt,
		)
		if err != nil {
			return affected, fmt.Errorf("failed to upsert vector insight %s: %w", row.GeoID, err)
		}
		affected++
	}
	return affected, nil
}

// ListByGeoIDs lists vector insights for the given regions, scoped to one
// tenant (nil for the shared rows).
func (r *vectorInsightRepository) ListByGeoIDs(ctx context.Context, q db.Executor, geoIDs []string, tenantID *uuid.UUID) ([]domain.VectorInsight, error) {
	if len(geoIDs) == 0 {
		return []domain.VectorInsight{}, nil
	}

	query := `SELECT id, tenant_id, geo_id, embedding, metadata, created_at
		FROM vector_insights WHERE geo_id = ANY($1)`
	args := []any{geoIDs}
	if tenantID == nil {
		query += ` AND tenant_id IS NULL`
	} else {
		query += ` AND tenant_id = $2`
		args = append(args, *tenantID)
	}
	query += ` ORDER BY geo_id`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list vector insights: %w", err)
	}
	defer rows.Close()

	out := []domain.VectorInsight{}
	for rows.Next() {
		var (
			row       domain.VectorInsight
			metadata  []byte
			createdAt pgtype.Timestamptz
		)
		if err := rows.Scan(&row.ID, &row.TenantID, &row.GeoID, &row.Embedding, &metadata, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan vector insight: %w", err)
		}
		if row.Metadata, err = unmarshalJSONBMap(metadata); err != nil {
			return nil, err
		}
		if createdAt.Valid {
			row.CreatedAt = createdAt.Time
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vector insights: %w", err)
	}
	return out, nil
}
