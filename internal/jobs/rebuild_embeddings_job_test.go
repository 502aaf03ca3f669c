package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/localbizintel/backend/internal/domain"
	"github.com/shopspring/decimal"
)

func decimalPtr(value string) *decimal.Decimal {
	d := decimal.RequireFromString(value)
	return &d
}

func rebuildFixtures() (*stubDemographicsRepo, *stubSpendingRepo, *stubLabourStatsRepo, *stubBusinessDensityRepo) {
	count := 42
	openings := 1250
	demographics := &stubDemographicsRepo{list: []domain.Demographics{
		{GeoID: "accra-north", City: "Accra", Country: "GH", PopulationTotal: 170_000, MedianIncome: decimal.NewFromInt(55_000)},
		{GeoID: "accra-central", City: "Accra", Country: "GH", PopulationTotal: 150_000, MedianIncome: decimal.NewFromInt(50_000)},
	}}
	spending := &stubSpendingRepo{list: []domain.Spending{
		{GeoID: "accra-central", City: "Accra", Country: "GH", Category: "transport", AvgMonthlySpend: decimalPtr("180"), SpendIndex: decimalPtr("1")},
		{GeoID: "accra-central", City: "Accra", Country: "GH", Category: "groceries", AvgMonthlySpend: decimalPtr("350"), SpendIndex: decimalPtr("1")},
	}}
	labour := &stubLabourStatsRepo{list: []domain.LabourStats{
		{GeoID: "accra-south", City: "Accra", Country: "GH", UnemploymentRate: decimalPtr("5.4"), MedianSalary: decimalPtr("61000"), JobOpenings: &openings},
	}}
	density := &stubBusinessDensityRepo{list: []domain.BusinessDensity{
		{GeoID: "accra-citywide", City: "Accra", Country: "GH", BusinessType: "cafes", Count: &count, DensityScore: decimalPtr("0.37")},
	}}
	return demographics, spending, labour, density
}

func newTestRebuildJob(dimensions int) (*RebuildEmbeddingsJob, *stubVectorInsightRepo, *stubEtlLogRepo, *stubEmbedder) {
	demographics, spending, labour, density := rebuildFixtures()
	vectors := &stubVectorInsightRepo{}
	etlLog := &stubEtlLogRepo{}
	embedder := &stubEmbedder{dimensions: dimensions}
	job := NewRebuildEmbeddingsJob(demographics, spending, labour, density, vectors, etlLog, embedder, dimensions)
	return job, vectors, etlLog, embedder
}

func TestRebuildEmbeddingsOrdersRegionsLexicographically(t *testing.T) {
	job, vectors, etlLog, embedder := newTestRebuildJob(4)

	result, err := job.Run(context.Background(), nil, "GH", "Accra", nil, nil, nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Status != domain.StatusCompleted || result.RegionCount != 4 || result.RowCount != 4 {
		t.Errorf("unexpected result: %+v", result)
	}

	if len(vectors.upserts) != 1 {
		t.Fatalf("expected one vector upsert batch, got %d", len(vectors.upserts))
	}
	want := []string{"accra-central", "accra-citywide", "accra-north", "accra-south"}
	for i, row := range vectors.upserts[0] {
		if row.GeoID != want[i] {
			t.Errorf("row %d: expected geo_id %q, got %q", i, want[i], row.GeoID)
		}
	}

	if len(etlLog.entries) != 1 || etlLog.entries[0].JobName != "rebuild-embeddings" || etlLog.entries[0].Status != domain.StatusCompleted {
		t.Errorf("unexpected audit entry: %+v", etlLog.entries)
	}

	if len(embedder.batches) != 1 || len(embedder.batches[0]) != 4 {
		t.Fatalf("expected one batch of 4 documents, got %+v", embedder.batches)
	}
}

func TestRebuildEmbeddingsDocumentSnapshot(t *testing.T) {
	job, _, _, embedder := newTestRebuildJob(4)

	if _, err := job.Run(context.Background(), nil, "GH", "Accra", nil, nil, nil); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	// accra-central is the first document: demographics plus two spending rows.
	var snapshot map[string]any
	if err := json.Unmarshal([]byte(embedder.batches[0][0]), &snapshot); err != nil {
		t.Fatalf("document is not valid JSON: %v", err)
	}

	if snapshot["geo_id"] != "accra-central" || snapshot["city"] != "Accra" || snapshot["country"] != "GH" {
		t.Errorf("unexpected scope fields: %+v", snapshot)
	}

	demo, ok := snapshot["demographics"].(map[string]any)
	if !ok {
		t.Fatalf("expected demographics block, got %+v", snapshot["demographics"])
	}
	if demo["population_total"] != float64(150_000) || demo["median_income"] != "50000" {
		t.Errorf("unexpected demographics block: %+v", demo)
	}

	spending, ok := snapshot["spending"].([]any)
	if !ok || len(spending) != 2 {
		t.Fatalf("expected two spending items, got %+v", snapshot["spending"])
	}
	first := spending[0].(map[string]any)
	if first["category"] != "groceries" || first["avg_monthly_spend"] != "350" {
		t.Errorf("spending items not ordered by category: %+v", first)
	}

	// Absent datasets still carry their key: null for the single-row
	// blocks, empty lists for the multi-row ones.
	labour, present := snapshot["labour_stats"]
	if !present || labour != nil {
		t.Errorf("accra-central has no labour stats, expected a null labour_stats block, got %+v", labour)
	}
	density, ok := snapshot["business_density"].([]any)
	if !ok || len(density) != 0 {
		t.Errorf("accra-central has no business density rows, expected an empty list, got %+v", snapshot["business_density"])
	}
}

func TestRebuildEmbeddingsDeterministicDocuments(t *testing.T) {
	jobA, _, _, embedderA := newTestRebuildJob(4)
	jobB, _, _, embedderB := newTestRebuildJob(4)

	if _, err := jobA.Run(context.Background(), nil, "GH", "Accra", nil, nil, nil); err != nil {
		t.Fatalf("first run returned error: %v", err)
	}
	if _, err := jobB.Run(context.Background(), nil, "GH", "Accra", nil, nil, nil); err != nil {
		t.Fatalf("second run returned error: %v", err)
	}

	for i := range embedderA.batches[0] {
		if embedderA.batches[0][i] != embedderB.batches[0][i] {
			t.Errorf("document %d differs between runs:\n%s\n%s", i, embedderA.batches[0][i], embedderB.batches[0][i])
		}
	}
}

func TestRebuildEmbeddingsRegionsFilter(t *testing.T) {
	job, vectors, _, _ := newTestRebuildJob(4)

	result, err := job.Run(context.Background(), nil, "GH", "Accra", []string{"accra-south", "accra-central"}, nil, nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.RegionCount != 2 {
		t.Errorf("expected 2 regions after filtering, got %d", result.RegionCount)
	}

	rows := vectors.upserts[0]
	if len(rows) != 2 || rows[0].GeoID != "accra-central" || rows[1].GeoID != "accra-south" {
		t.Errorf("unexpected filtered rows: %+v", rows)
	}
}

func TestRebuildEmbeddingsDimensionMismatch(t *testing.T) {
	demographics, spending, labour, density := rebuildFixtures()
	vectors := &stubVectorInsightRepo{}
	etlLog := &stubEtlLogRepo{}
	embedder := &stubEmbedder{dimensions: 3}
	job := NewRebuildEmbeddingsJob(demographics, spending, labour, density, vectors, etlLog, embedder, 4)

	_, err := job.Run(context.Background(), nil, "GH", "Accra", nil, nil, nil)

	var mismatch *DimensionMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected DimensionMismatchError, got %v", err)
	}
	if mismatch.Expected != 4 || mismatch.Actual != 3 {
		t.Errorf("unexpected mismatch detail: %+v", mismatch)
	}

	if len(vectors.upserts) != 0 {
		t.Errorf("no vectors may be written after a dimension mismatch")
	}
	if len(etlLog.entries) != 1 || etlLog.entries[0].Status != domain.StatusFailed {
		t.Errorf("expected a FAILED audit entry, got %+v", etlLog.entries)
	}
}

func TestRebuildEmbeddingsRequiresCity(t *testing.T) {
	job, vectors, etlLog, _ := newTestRebuildJob(4)

	_, err := job.Run(context.Background(), nil, "GH", "", nil, nil, nil)
	if err == nil {
		t.Fatal("expected an error for a missing city")
	}

	// Input validation happens before any bookkeeping.
	if len(etlLog.entries) != 0 || len(vectors.upserts) != 0 {
		t.Errorf("missing city must not produce writes: %d audit, %d upserts",
			len(etlLog.entries), len(vectors.upserts))
	}
}

func TestRebuildEmbeddingsProviderFailure(t *testing.T) {
	demographics, spending, labour, density := rebuildFixtures()
	vectors := &stubVectorInsightRepo{}
	etlLog := &stubEtlLogRepo{}
	providerErr := errors.New("embedding provider 503")
	job := NewRebuildEmbeddingsJob(demographics, spending, labour, density, vectors, etlLog, &stubEmbedder{err: providerErr}, 4)

	_, err := job.Run(context.Background(), nil, "GH", "Accra", nil, nil, nil)
	if !errors.Is(err, providerErr) {
		t.Fatalf("expected the provider error to propagate, got %v", err)
	}
	if len(vectors.upserts) != 0 {
		t.Errorf("no vectors may be written after a provider failure")
	}
	if len(etlLog.entries) != 1 || etlLog.entries[0].Status != domain.StatusFailed {
		t.Errorf("expected a FAILED audit entry, got %+v", etlLog.entries)
	}
}
