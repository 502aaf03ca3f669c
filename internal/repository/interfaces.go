package repository

import (
	"context"
	"time"

	"github.com/localbizintel/backend/internal/db"
	"github.com/localbizintel/backend/internal/domain"

	"github.com/google/uuid"
)

// Every method takes the caller's storage handle (pool or open transaction)
// so the enclosing worker boundary decides the commit scope.

// DemographicsRepository defines persistence for the demographics dataset.
type DemographicsRepository interface {
	UpsertMany(ctx context.Context, q db.Executor, rows []domain.Demographics, lastUpdated time.Time) (int, error)
	GetForRegions(ctx context.Context, q db.Executor, city string, country string) ([]domain.Demographics, error)
}

// SpendingRepository defines persistence for the spending dataset.
type SpendingRepository interface {
	UpsertMany(ctx context.Context, q db.Executor, rows []domain.Spending, lastUpdated time.Time) (int, error)
	GetForRegions(ctx context.Context, q db.Executor, city string, country string) ([]domain.Spending, error)
}

// LabourStatsRepository defines persistence for the labour stats dataset.
type LabourStatsRepository interface {
	UpsertMany(ctx context.Context, q db.Executor, rows []domain.LabourStats, lastUpdated time.Time) (int, error)
	GetForRegions(ctx context.Context, q db.Executor, city string, country string) ([]domain.LabourStats, error)
}

// BusinessDensityRepository defines persistence for the business density dataset.
type BusinessDensityRepository interface {
	UpsertMany(ctx context.Context, q db.Executor, rows []domain.BusinessDensity, lastUpdated time.Time) (int, error)
	ListByCityAndType(ctx context.Context, q db.Executor, city string, country string, businessType string) ([]domain.BusinessDensity, error)
}

// FreshnessRepository tracks the single per-dataset status row.
type FreshnessRepository interface {
	UpsertStatus(ctx context.Context, q db.Executor, datasetName string, lastRun time.Time, rowCount int, status string) error
	ListAll(ctx context.Context, q db.Executor) ([]domain.DataFreshness, error)
}

// EtlLogRepository appends immutable job run records.
type EtlLogRepository interface {
	Append(ctx context.Context, q db.Executor, entry domain.EtlLogEntry) error
	ListRecent(ctx context.Context, q db.Executor, limit int) ([]domain.EtlLogEntry, error)
}

// VectorInsightRepository persists region embeddings keyed by (tenant_id, geo_id).
type VectorInsightRepository interface {
	UpsertMany(ctx context.Context, q db.Executor, rows []domain.VectorInsight, createdAt time.Time) (int, error)
	ListByGeoIDs(ctx context.Context, q db.Executor, geoIDs []string, tenantID *uuid.UUID) ([]domain.VectorInsight, error)
}
