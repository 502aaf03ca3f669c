package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/localbizintel/backend/internal/db"
	"github.com/localbizintel/backend/internal/domain"
	"github.com/localbizintel/backend/internal/repository"
	"github.com/localbizintel/backend/internal/source"
)

// DatasetNameBusinessDensity is the canonical dataset identifier for
// business density runs.
const DatasetNameBusinessDensity = "business_density"

// BusinessDensityEtlJob loads per-business-type density rows into the database.
type BusinessDensityEtlJob struct {
	source    source.BusinessDensitySource
	repo      repository.BusinessDensityRepository
	freshness repository.FreshnessRepository
	etlLog    repository.EtlLogRepository
}

// NewBusinessDensityEtlJob wires a business density ETL job.
func NewBusinessDensityEtlJob(
	src source.BusinessDensitySource,
	repo repository.BusinessDensityRepository,
	freshness repository.FreshnessRepository,
	etlLog repository.EtlLogRepository,
) *BusinessDensityEtlJob {
	return &BusinessDensityEtlJob{
		source:    src,
		repo:      repo,
		freshness: freshness,
		etlLog:    etlLog,
	}
}

// Run executes one business density ETL attempt. A provider error on any
// business type aborts the whole run before any rows are written.
func (j *BusinessDensityEtlJob) Run(ctx context.Context, q db.Executor, country string, city string, options map[string]any) (EtlResult, error) {
	now := time.Now().UTC()
	if options == nil {
		options = map[string]any{}
	}
	payload := etlPayload(country, city, options)

	rows, err := j.source.FetchBusinessDensity(ctx, country, city, options)
	if err != nil {
		return EtlResult{}, recordFailed(ctx, q, j.freshness, j.etlLog, DatasetNameBusinessDensity, now, payload,
			fmt.Errorf("business density fetch failed: %w", err))
	}

	affected, err := j.repo.UpsertMany(ctx, q, rows, now)
	if err != nil {
		return EtlResult{}, recordFailed(ctx, q, j.freshness, j.etlLog, DatasetNameBusinessDensity, now, payload, err)
	}

	if err := recordCompleted(ctx, q, j.freshness, j.etlLog, DatasetNameBusinessDensity, now, affected, payload); err != nil {
		return EtlResult{}, err
	}

	log.Printf("[ETL] dataset=%s country=%s city=%s row_count=%d status=%s",
		DatasetNameBusinessDensity, country, city, affected, domain.StatusCompleted)
	return EtlResult{
		DatasetName: DatasetNameBusinessDensity,
		Status:      domain.StatusCompleted,
		RowCount:    affected,
		Country:     country,
		City:        city,
	}, nil
}
