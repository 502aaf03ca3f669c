package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/localbizintel/backend/internal/db"
	"github.com/localbizintel/backend/internal/domain"
	"github.com/localbizintel/backend/internal/embedding"
	"github.com/localbizintel/backend/internal/repository"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/shopspring/decimal"
)

// JobNameRebuildEmbeddings is the canonical identifier for embedding
// rebuild runs.
const JobNameRebuildEmbeddings = "rebuild-embeddings"

// RebuildEmbeddingsJob regenerates region embeddings from the current
// dataset rows. It reads all four datasets for a city, folds each region
// into one canonical document, embeds the batch, and overwrites the stored
// vectors keyed by (tenant_id, geo_id).
type RebuildEmbeddingsJob struct {
	demographics    repository.DemographicsRepository
	spending        repository.SpendingRepository
	labourStats     repository.LabourStatsRepository
	businessDensity repository.BusinessDensityRepository
	vectors         repository.VectorInsightRepository
	etlLog          repository.EtlLogRepository
	embedder        embedding.Client
	dimensions      int
}

// NewRebuildEmbeddingsJob wires an embedding rebuild job. dimensions is the
// vector width the storage schema expects.
func NewRebuildEmbeddingsJob(
	demographics repository.DemographicsRepository,
	spending repository.SpendingRepository,
	labourStats repository.LabourStatsRepository,
	businessDensity repository.BusinessDensityRepository,
	vectors repository.VectorInsightRepository,
	etlLog repository.EtlLogRepository,
	embedder embedding.Client,
	dimensions int,
) *RebuildEmbeddingsJob {
	return &RebuildEmbeddingsJob{
		demographics:    demographics,
		spending:        spending,
		labourStats:     labourStats,
		businessDensity: businessDensity,
		vectors:         vectors,
		etlLog:          etlLog,
		embedder:        embedder,
		dimensions:      dimensions,
	}
}

// Run executes one rebuild attempt. The rebuild is an audit-only job: it
// appends an etl_logs entry but never touches data_freshness, which tracks
// source datasets rather than derived artifacts.
func (j *RebuildEmbeddingsJob) Run(ctx context.Context, q db.Executor, country string, city string, regions []string, options map[string]any, tenantID *uuid.UUID) (RebuildEmbeddingsResult, error) {
	if city == "" {
		return RebuildEmbeddingsResult{}, fmt.Errorf("rebuild embeddings requires a city")
	}
	now := time.Now().UTC()
	if options == nil {
		options = map[string]any{}
	}
	payload := map[string]any{
		"country": country,
		"city":    city,
		"regions": regions,
		"options": options,
	}

	rows, err := j.rebuild(ctx, q, country, city, regions, options, tenantID, now)
	if err != nil {
		if logErr := j.etlLog.Append(ctx, q, domain.EtlLogEntry{
			JobName:   JobNameRebuildEmbeddings,
			Payload:   payload,
			Status:    domain.StatusFailed,
			CreatedAt: now,
		}); logErr != nil {
			log.Printf("[EMBED] failed to append FAILED audit entry: %v", logErr)
		}
		return RebuildEmbeddingsResult{}, err
	}

	affected, err := j.vectors.UpsertMany(ctx, q, rows, now)
	if err != nil {
		if logErr := j.etlLog.Append(ctx, q, domain.EtlLogEntry{
			JobName:   JobNameRebuildEmbeddings,
			Payload:   payload,
			Status:    domain.StatusFailed,
			CreatedAt: now,
		}); logErr != nil {
			log.Printf("[EMBED] failed to append FAILED audit entry: %v", logErr)
		}
		return RebuildEmbeddingsResult{}, err
	}

	if err := j.etlLog.Append(ctx, q, domain.EtlLogEntry{
		JobName:   JobNameRebuildEmbeddings,
		Payload:   payload,
		Status:    domain.StatusCompleted,
		CreatedAt: now,
	}); err != nil {
		return RebuildEmbeddingsResult{}, err
	}

	log.Printf("[EMBED] job=%s city=%s country=%s regions=%d row_count=%d status=%s",
		JobNameRebuildEmbeddings, city, country, len(rows), affected, domain.StatusCompleted)
	return RebuildEmbeddingsResult{
		JobName:     JobNameRebuildEmbeddings,
		Status:      domain.StatusCompleted,
		RowCount:    affected,
		Country:     country,
		City:        city,
		RegionCount: len(rows),
	}, nil
}

// rebuild loads the datasets, builds one document per region, and embeds
// them. It returns the vector rows ready for upsert.
func (j *RebuildEmbeddingsJob) rebuild(ctx context.Context, q db.Executor, country string, city string, regions []string, options map[string]any, tenantID *uuid.UUID, now time.Time) ([]domain.VectorInsight, error) {
	demoRows, err := j.demographics.GetForRegions(ctx, q, city, country)
	if err != nil {
		return nil, err
	}
	spendRows, err := j.spending.GetForRegions(ctx, q, city, country)
	if err != nil {
		return nil, err
	}
	labourRows, err := j.labourStats.GetForRegions(ctx, q, city, country)
	if err != nil {
		return nil, err
	}
	densityRows, err := j.businessDensity.ListByCityAndType(ctx, q, city, country, "")
	if err != nil {
		return nil, err
	}

	demoByGeo := make(map[string]domain.Demographics, len(demoRows))
	for _, row := range demoRows {
		demoByGeo[row.GeoID] = row
	}
	labourByGeo := make(map[string]domain.LabourStats, len(labourRows))
	for _, row := range labourRows {
		labourByGeo[row.GeoID] = row
	}
	spendByGeo := make(map[string][]domain.Spending, len(spendRows))
	for _, row := range spendRows {
		spendByGeo[row.GeoID] = append(spendByGeo[row.GeoID], row)
	}
	densityByGeo := make(map[string][]domain.BusinessDensity, len(densityRows))
	for _, row := range densityRows {
		densityByGeo[row.GeoID] = append(densityByGeo[row.GeoID], row)
	}

	geoIDs := unionGeoIDs(regions, demoByGeo, labourByGeo, spendByGeo, densityByGeo)
	if len(geoIDs) == 0 {
		return []domain.VectorInsight{}, nil
	}

	documents := make([]string, 0, len(geoIDs))
	for _, geoID := range geoIDs {
		doc, err := buildRegionDocument(geoID, city, country, options,
			demoByGeo, labourByGeo, spendByGeo, densityByGeo)
		if err != nil {
			return nil, err
		}
		documents = append(documents, doc)
	}

	vectors, err := j.embedder.EmbedTexts(ctx, documents)
	if err != nil {
		return nil, fmt.Errorf("embedding provider failed: %w", err)
	}
	if len(vectors) != len(documents) {
		return nil, fmt.Errorf("embedding provider returned %d vectors for %d documents", len(vectors), len(documents))
	}
	for _, vec := range vectors {
		if len(vec) != j.dimensions {
			return nil, &DimensionMismatchError{Expected: j.dimensions, Actual: len(vec)}
		}
	}

	rows := make([]domain.VectorInsight, 0, len(geoIDs))
	for i, geoID := range geoIDs {
		rows = append(rows, domain.VectorInsight{
			TenantID:  tenantID,
			GeoID:     geoID,
			Embedding: pgvector.NewVector(vectors[i]),
			Metadata: map[string]any{
				"geo_id":  geoID,
				"city":    city,
				"country": country,
				"options": options,
			},
			CreatedAt: now,
		})
	}
	return rows, nil
}

// unionGeoIDs collects every region id seen across the datasets, applies the
// optional region filter, and returns them in lexicographic order. The order
// fixes the document batch, which keeps reruns byte-identical.
func unionGeoIDs(
	regions []string,
	demoByGeo map[string]domain.Demographics,
	labourByGeo map[string]domain.LabourStats,
	spendByGeo map[string][]domain.Spending,
	densityByGeo map[string][]domain.BusinessDensity,
) []string {
	seen := map[string]struct{}{}
	for geoID := range demoByGeo {
		seen[geoID] = struct{}{}
	}
	for geoID := range labourByGeo {
		seen[geoID] = struct{}{}
	}
	for geoID := range spendByGeo {
		seen[geoID] = struct{}{}
	}
	for geoID := range densityByGeo {
		seen[geoID] = struct{}{}
	}

	if len(regions) > 0 {
		wanted := make(map[string]struct{}, len(regions))
		for _, region := range regions {
			wanted[region] = struct{}{}
		}
		for geoID := range seen {
			if _, ok := wanted[geoID]; !ok {
				delete(seen, geoID)
			}
		}
	}

	out := make([]string, 0, len(seen))
	for geoID := range seen {
		out = append(out, geoID)
	}
	sort.Strings(out)
	return out
}

// buildRegionDocument folds one region's rows into the canonical JSON
// snapshot that gets embedded. encoding/json sorts map keys, so equal inputs
// always produce the same bytes. Decimals are stringified to keep the text
// free of float formatting drift.
func buildRegionDocument(
	geoID string,
	city string,
	country string,
	options map[string]any,
	demoByGeo map[string]domain.Demographics,
	labourByGeo map[string]domain.LabourStats,
	spendByGeo map[string][]domain.Spending,
	densityByGeo map[string][]domain.BusinessDensity,
) (string, error) {
	snapshot := map[string]any{
		"geo_id":  geoID,
		"city":    city,
		"options": options,
	}
	if country != "" {
		snapshot["country"] = country
	} else {
		snapshot["country"] = nil
	}

	// All four dataset keys are always present so documents keep a stable
	// shape: null for absent single-row datasets, empty lists for absent
	// multi-row ones.
	snapshot["demographics"] = nil
	if demo, ok := demoByGeo[geoID]; ok {
		snapshot["demographics"] = map[string]any{
			"population_total": demo.PopulationTotal,
			"median_income":    demo.MedianIncome.String(),
		}
	}
	snapshot["labour_stats"] = nil
	if labour, ok := labourByGeo[geoID]; ok {
		snapshot["labour_stats"] = map[string]any{
			"unemployment_rate": decimalString(labour.UnemploymentRate),
			"median_salary":     decimalString(labour.MedianSalary),
			"job_openings":      labour.JobOpenings,
		}
	}

	spendRows := spendByGeo[geoID]
	sort.Slice(spendRows, func(i, k int) bool { return spendRows[i].Category < spendRows[k].Category })
	spendItems := make([]map[string]any, 0, len(spendRows))
	for _, row := range spendRows {
		spendItems = append(spendItems, map[string]any{
			"category":          row.Category,
			"avg_monthly_spend": decimalString(row.AvgMonthlySpend),
			"spend_index":       decimalString(row.SpendIndex),
		})
	}
	snapshot["spending"] = spendItems

	densityRows := densityByGeo[geoID]
	sort.Slice(densityRows, func(i, k int) bool { return densityRows[i].BusinessType < densityRows[k].BusinessType })
	densityItems := make([]map[string]any, 0, len(densityRows))
	for _, row := range densityRows {
		densityItems = append(densityItems, map[string]any{
			"business_type": row.BusinessType,
			"count":         row.Count,
			"density_score": decimalString(row.DensityScore),
		})
	}
	snapshot["business_density"] = densityItems

	data, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("failed to build region document for %s: %w", geoID, err)
	}
	return string(data), nil
}

// decimalString renders an optional decimal for a snapshot, preserving NULL.
func decimalString(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}
