package jobs

import (
	"context"
	"time"

	"github.com/localbizintel/backend/internal/db"
	"github.com/localbizintel/backend/internal/domain"

	"github.com/google/uuid"
)

// Recording stubs shared by the job and worker tests. Every method records
// its call so tests can assert the exactly-once bookkeeping contract.

type stubDemographicsSource struct {
	rows []domain.Demographics
	err  error
}

func (s *stubDemographicsSource) FetchDemographics(ctx context.Context, country string, city string, options map[string]any) ([]domain.Demographics, error) {
	return s.rows, s.err
}

type stubSpendingSource struct {
	rows []domain.Spending
	err  error
}

func (s *stubSpendingSource) FetchSpending(ctx context.Context, country string, city string, options map[string]any) ([]domain.Spending, error) {
	return s.rows, s.err
}

type stubLabourStatsSource struct {
	rows []domain.LabourStats
	err  error
}

func (s *stubLabourStatsSource) FetchLabourStats(ctx context.Context, country string, city string, options map[string]any) ([]domain.LabourStats, error) {
	return s.rows, s.err
}

type stubBusinessDensitySource struct {
	rows []domain.BusinessDensity
	err  error
}

func (s *stubBusinessDensitySource) FetchBusinessDensity(ctx context.Context, country string, city string, options map[string]any) ([]domain.BusinessDensity, error) {
	return s.rows, s.err
}

type stubDemographicsRepo struct {
	list       []domain.Demographics
	upsertErr  error
	upserts    [][]domain.Demographics
	timestamps []time.Time
}

func (r *stubDemographicsRepo) UpsertMany(ctx context.Context, q db.Executor, rows []domain.Demographics, lastUpdated time.Time) (int, error) {
	if r.upsertErr != nil {
		return 0, r.upsertErr
	}
	r.upserts = append(r.upserts, rows)
	r.timestamps = append(r.timestamps, lastUpdated)
	return len(rows), nil
}

func (r *stubDemographicsRepo) GetForRegions(ctx context.Context, q db.Executor, city string, country string) ([]domain.Demographics, error) {
	return r.list, nil
}

type stubSpendingRepo struct {
	list      []domain.Spending
	upsertErr error
	upserts   [][]domain.Spending
}

func (r *stubSpendingRepo) UpsertMany(ctx context.Context, q db.Executor, rows []domain.Spending, lastUpdated time.Time) (int, error) {
	if r.upsertErr != nil {
		return 0, r.upsertErr
	}
	r.upserts = append(r.upserts, rows)
	return len(rows), nil
}

func (r *stubSpendingRepo) GetForRegions(ctx context.Context, q db.Executor, city string, country string) ([]domain.Spending, error) {
	return r.list, nil
}

type stubLabourStatsRepo struct {
	list      []domain.LabourStats
	upsertErr error
	upserts   [][]domain.LabourStats
}

func (r *stubLabourStatsRepo) UpsertMany(ctx context.Context, q db.Executor, rows []domain.LabourStats, lastUpdated time.Time) (int, error) {
	if r.upsertErr != nil {
		return 0, r.upsertErr
	}
	r.upserts = append(r.upserts, rows)
	return len(rows), nil
}

func (r *stubLabourStatsRepo) GetForRegions(ctx context.Context, q db.Executor, city string, country string) ([]domain.LabourStats, error) {
	return r.list, nil
}

type stubBusinessDensityRepo struct {
	list      []domain.BusinessDensity
	upsertErr error
	upserts   [][]domain.BusinessDensity
}

func (r *stubBusinessDensityRepo) UpsertMany(ctx context.Context, q db.Executor, rows []domain.BusinessDensity, lastUpdated time.Time) (int, error) {
	if r.upsertErr != nil {
		return 0, r.upsertErr
	}
	r.upserts = append(r.upserts, rows)
	return len(rows), nil
}

func (r *stubBusinessDensityRepo) ListByCityAndType(ctx context.Context, q db.Executor, city string, country string, businessType string) ([]domain.BusinessDensity, error) {
	return r.list, nil
}

type freshnessCall struct {
	datasetName string
	lastRun     time.Time
	rowCount    int
	status      string
}

type stubFreshnessRepo struct {
	upsertErr error
	calls     []freshnessCall
}

func (r *stubFreshnessRepo) UpsertStatus(ctx context.Context, q db.Executor, datasetName string, lastRun time.Time, rowCount int, status string) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.calls = append(r.calls, freshnessCall{
		datasetName: datasetName,
		lastRun:     lastRun,
		rowCount:    rowCount,
		status:      status,
	})
	return nil
}

func (r *stubFreshnessRepo) ListAll(ctx context.Context, q db.Executor) ([]domain.DataFreshness, error) {
	return nil, nil
}

type stubEtlLogRepo struct {
	appendErr error
	entries   []domain.EtlLogEntry
}

func (r *stubEtlLogRepo) Append(ctx context.Context, q db.Executor, entry domain.EtlLogEntry) error {
	if r.appendErr != nil {
		return r.appendErr
	}
	r.entries = append(r.entries, entry)
	return nil
}

func (r *stubEtlLogRepo) ListRecent(ctx context.Context, q db.Executor, limit int) ([]domain.EtlLogEntry, error) {
	return r.entries, nil
}

type stubVectorInsightRepo struct {
	upsertErr error
	upserts   [][]domain.VectorInsight
}

func (r *stubVectorInsightRepo) UpsertMany(ctx context.Context, q db.Executor, rows []domain.VectorInsight, createdAt time.Time) (int, error) {
	if r.upsertErr != nil {
		return 0, r.upsertErr
	}
	r.upserts = append(r.upserts, rows)
	return len(rows), nil
}

func (r *stubVectorInsightRepo) ListByGeoIDs(ctx context.Context, q db.Executor, geoIDs []string, tenantID *uuid.UUID) ([]domain.VectorInsight, error) {
	return nil, nil
}

type stubEmbedder struct {
	dimensions int
	err        error
	batches    [][]string
}

func (e *stubEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	e.batches = append(e.batches, texts)
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vec := make([]float32, e.dimensions)
		if e.dimensions > 0 {
			vec[0] = float32(i)
		}
		vectors[i] = vec
	}
	return vectors, nil
}
