package jobs

import (
	"context"
	"log"
	"strings"

	"github.com/localbizintel/backend/internal/db"
)

// Dataset is a canonical dataset name the ingestion worker can run.
type Dataset string

const (
	DatasetDemographics    Dataset = Dataset(DatasetNameDemographics)
	DatasetSpending        Dataset = Dataset(DatasetNameSpending)
	DatasetLabourStats     Dataset = Dataset(DatasetNameLabourStats)
	DatasetBusinessDensity Dataset = Dataset(DatasetNameBusinessDensity)
)

// datasetAliases maps normalized identifiers to canonical datasets. Keys are
// post-normalization, so producers may send hyphens or mixed case.
var datasetAliases = map[string]Dataset{
	"demographics":                DatasetDemographics,
	"census_demographics_refresh": DatasetDemographics,
	"spending":                    DatasetSpending,
	"spending_stats_refresh":      DatasetSpending,
	"labour_stats":                DatasetLabourStats,
	"labour_stats_refresh":        DatasetLabourStats,
	"business_density":            DatasetBusinessDensity,
	"business_density_refresh":    DatasetBusinessDensity,
}

// normalizeIdentifier lowers the identifier, folds hyphens into underscores,
// then trims whitespace.
func normalizeIdentifier(identifier string) string {
	normalized := strings.ToLower(identifier)
	normalized = strings.ReplaceAll(normalized, "-", "_")
	return strings.TrimSpace(normalized)
}

// ResolveDataset maps a raw identifier to its canonical dataset.
func ResolveDataset(identifier string) (Dataset, bool) {
	dataset, ok := datasetAliases[normalizeIdentifier(identifier)]
	return dataset, ok
}

// EtlJob is one runnable dataset job registered with the worker.
type EtlJob interface {
	Run(ctx context.Context, q db.Executor, country string, city string, options map[string]any) (EtlResult, error)
}

// IngestionWorker dispatches decoded queue envelopes to the dataset jobs.
type IngestionWorker struct {
	handlers map[Dataset]EtlJob
}

// NewIngestionWorker registers the four dataset jobs.
func NewIngestionWorker(
	demographics *DemographicsEtlJob,
	spending *SpendingEtlJob,
	labourStats *LabourStatsEtlJob,
	businessDensity *BusinessDensityEtlJob,
) *IngestionWorker {
	return &IngestionWorker{
		handlers: map[Dataset]EtlJob{
			DatasetDemographics:    demographics,
			DatasetSpending:        spending,
			DatasetLabourStats:     labourStats,
			DatasetBusinessDensity: businessDensity,
		},
	}
}

// Dispatch resolves the envelope's identifier and runs the matching dataset
// job on the caller's storage handle. An unknown identifier returns
// *UnsupportedJobError carrying the identifier exactly as received.
func (w *IngestionWorker) Dispatch(ctx context.Context, q db.Executor, payload map[string]any) (EtlResult, error) {
	message := MessageFromPayload(payload)

	dataset, ok := ResolveDataset(message.Dataset)
	if !ok {
		return EtlResult{}, &UnsupportedJobError{Identifier: message.Dataset}
	}
	handler := w.handlers[dataset]

	log.Printf("[INGEST] dispatch dataset=%s country=%s city=%s", dataset, message.Country, message.City)
	result, err := handler.Run(ctx, q, message.Country, message.City, message.Options)
	if err != nil {
		log.Printf("[INGEST] dataset=%s failed: %v", dataset, err)
		return EtlResult{}, err
	}
	return result, nil
}
