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

// DatasetNameLabourStats is the canonical dataset identifier for labour
// statistics runs.
const DatasetNameLabourStats = "labour_stats"

// LabourStatsEtlJob loads labour market rows into the database.
type LabourStatsEtlJob struct {
	source    source.LabourStatsSource
	repo      repository.LabourStatsRepository
	freshness repository.FreshnessRepository
	etlLog    repository.EtlLogRepository
}

// NewLabourStatsEtlJob wires a labour stats ETL job.
func NewLabourStatsEtlJob(
	src source.LabourStatsSource,
	repo repository.LabourStatsRepository,
	freshness repository.FreshnessRepository,
	etlLog repository.EtlLogRepository,
) *LabourStatsEtlJob {
	return &LabourStatsEtlJob{
		source:    src,
		repo:      repo,
		freshness: freshness,
		etlLog:    etlLog,
	}
}

// Run executes one labour stats ETL attempt.
func (j *LabourStatsEtlJob) Run(ctx context.Context, q db.Executor, country string, city string, options map[string]any) (EtlResult, error) {
	now := time.Now().UTC()
	if options == nil {
		options = map[string]any{}
	}
	payload := etlPayload(country, city, options)

	rows, err := j.source.FetchLabourStats(ctx, country, city, options)
	if err != nil {
		return EtlResult{}, recordFailed(ctx, q, j.freshness, j.etlLog, DatasetNameLabourStats, now, payload,
			fmt.Errorf("labour stats fetch failed: %w", err))
	}

	affected, err := j.repo.UpsertMany(ctx, q, rows, now)
	if err != nil {
		return EtlResult{}, recordFailed(ctx, q, j.freshness, j.etlLog, DatasetNameLabourStats, now, payload, err)
	}

	if err := recordCompleted(ctx, q, j.freshness, j.etlLog, DatasetNameLabourStats, now, affected, payload); err != nil {
		return EtlResult{}, err
	}

	log.Printf("[ETL] dataset=%s country=%s city=%s row_count=%d status=%s",
		DatasetNameLabourStats, country, city, affected, domain.StatusCompleted)
	return EtlResult{
		DatasetName: DatasetNameLabourStats,
		Status:      domain.StatusCompleted,
		RowCount:    affected,
		Country:     country,
		City:        city,
	}, nil
}
