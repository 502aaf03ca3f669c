package jobs

import (
	"context"
	"log"
	"time"

	"github.com/localbizintel/backend/internal/db"
	"github.com/localbizintel/backend/internal/domain"
	"github.com/localbizintel/backend/internal/repository"
)

// etlPayload is the audit payload shape shared by the four dataset jobs.
func etlPayload(country string, city string, options map[string]any) map[string]any {
	return map[string]any{
		"country": country,
		"city":    city,
		"options": options,
	}
}

// recordCompleted writes the success freshness record and audit entry. Both
// carry the same run timestamp.
func recordCompleted(ctx context.Context, q db.Executor, freshness repository.FreshnessRepository, etlLog repository.EtlLogRepository, datasetName string, now time.Time, rowCount int, payload map[string]any) error {
	if err := freshness.UpsertStatus(ctx, q, datasetName, now, rowCount, domain.StatusCompleted); err != nil {
		return err
	}
	return etlLog.Append(ctx, q, domain.EtlLogEntry{
		JobName:   datasetName,
		Payload:   payload,
		Status:    domain.StatusCompleted,
		CreatedAt: now,
	})
}

// recordFailed writes the FAILED freshness record and audit entry, then
// returns the original cause so the caller observes both the side effects and
// the failure signal. Bookkeeping errors are logged but never mask the cause.
func recordFailed(ctx context.Context, q db.Executor, freshness repository.FreshnessRepository, etlLog repository.EtlLogRepository, datasetName string, now time.Time, payload map[string]any, cause error) error {
	if err := freshness.UpsertStatus(ctx, q, datasetName, now, 0, domain.StatusFailed); err != nil {
		log.Printf("[ETL] failed to record FAILED freshness for %s: %v", datasetName, err)
	}
	if err := etlLog.Append(ctx, q, domain.EtlLogEntry{
		JobName:   datasetName,
		Payload:   payload,
		Status:    domain.StatusFailed,
		CreatedAt: now,
	}); err != nil {
		log.Printf("[ETL] failed to append FAILED audit entry for %s: %v", datasetName, err)
	}
	return cause
}
