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

// DatasetNameDemographics is the canonical dataset identifier for
// demographics runs.
const DatasetNameDemographics = "demographics"

// DemographicsEtlJob loads demographics rows into the database.
type DemographicsEtlJob struct {
	source    source.DemographicsSource
	repo      repository.DemographicsRepository
	freshness repository.FreshnessRepository
	etlLog    repository.EtlLogRepository
}

// NewDemographicsEtlJob wires a demographics ETL job.
func NewDemographicsEtlJob(
	src source.DemographicsSource,
	repo repository.DemographicsRepository,
	freshness repository.FreshnessRepository,
	etlLog repository.EtlLogRepository,
) *DemographicsEtlJob {
	return &DemographicsEtlJob{
		source:    src,
		repo:      repo,
		freshness: freshness,
		etlLog:    etlLog,
	}
}

// Run executes one demographics ETL attempt: fetch, upsert, freshness, audit.
// Success or failure, exactly one freshness upsert and one audit append are
// issued before returning.
func (j *DemographicsEtlJob) Run(ctx context.Context, q db.Executor, country string, city string, options map[string]any) (EtlResult, error) {
	now := time.Now().UTC()
	if options == nil {
		options = map[string]any{}
	}
	payload := etlPayload(country, city, options)

	rows, err := j.source.FetchDemographics(ctx, country, city, options)
	if err != nil {
		return EtlResult{}, recordFailed(ctx, q, j.freshness, j.etlLog, DatasetNameDemographics, now, payload,
			fmt.Errorf("demographics fetch failed: %w", err))
	}

	affected, err := j.repo.UpsertMany(ctx, q, rows, now)
	if err != nil {
		return EtlResult{}, recordFailed(ctx, q, j.freshness, j.etlLog, DatasetNameDemographics, now, payload, err)
	}

	if err := recordCompleted(ctx, q, j.freshness, j.etlLog, DatasetNameDemographics, now, affected, payload); err != nil {
		return EtlResult{}, err
	}

	log.Printf("[ETL] dataset=%s country=%s city=%s row_count=%d status=%s",
		DatasetNameDemographics, country, city, affected, domain.StatusCompleted)
	return EtlResult{
		DatasetName: DatasetNameDemographics,
		Status:      domain.StatusCompleted,
		RowCount:    affected,
		Country:     country,
		City:        city,
	}, nil
}
