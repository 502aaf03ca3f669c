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

// DatasetNameSpending is the canonical dataset identifier for spending runs.
const DatasetNameSpending = "spending"

// SpendingEtlJob loads consumer spending rows into the database.
type SpendingEtlJob struct {
	source    source.SpendingSource
	repo      repository.SpendingRepository
	freshness repository.FreshnessRepository
	etlLog    repository.EtlLogRepository
}

// NewSpendingEtlJob wires a spending ETL job.
func NewSpendingEtlJob(
	src source.SpendingSource,
	repo repository.SpendingRepository,
	freshness repository.FreshnessRepository,
	etlLog repository.EtlLogRepository,
) *SpendingEtlJob {
	return &SpendingEtlJob{
		source:    src,
		repo:      repo,
		freshness: freshness,
		etlLog:    etlLog,
	}
}

// Run executes one spending ETL attempt.
func (j *SpendingEtlJob) Run(ctx context.Context, q db.Executor, country string, city string, options map[string]any) (EtlResult, error) {
	now := time.Now().UTC()
	if options == nil {
		options = map[string]any{}
	}
	payload := etlPayload(country, city, options)

	rows, err := j.source.FetchSpending(ctx, country, city, options)
	if err != nil {
		return EtlResult{}, recordFailed(ctx, q, j.freshness, j.etlLog, DatasetNameSpending, now, payload,
			fmt.Errorf("spending fetch failed: %w", err))
	}

	affected, err := j.repo.UpsertMany(ctx, q, rows, now)
	if err != nil {
		return EtlResult{}, recordFailed(ctx, q, j.freshness, j.etlLog, DatasetNameSpending, now, payload, err)
	}

	if err := recordCompleted(ctx, q, j.freshness, j.etlLog, DatasetNameSpending, now, affected, payload); err != nil {
		return EtlResult{}, err
	}

	log.Printf("[ETL] dataset=%s country=%s city=%s row_count=%d status=%s",
		DatasetNameSpending, country, city, affected, domain.StatusCompleted)
	return EtlResult{
		DatasetName: DatasetNameSpending,
		Status:      domain.StatusCompleted,
		RowCount:    affected,
		Country:     country,
		City:        city,
	}, nil
}
