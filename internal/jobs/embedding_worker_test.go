package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/localbizintel/backend/internal/domain"

	"github.com/google/uuid"
)

func TestEmbeddingWorkerResolvesBothSpellings(t *testing.T) {
	for _, identifier := range []string{"rebuild_embeddings", "rebuild-embeddings", "  Rebuild-Embeddings "} {
		t.Run(identifier, func(t *testing.T) {
			job, _, _, _ := newTestRebuildJob(4)
			worker := NewEmbeddingWorker(job)

			result, err := worker.Dispatch(context.Background(), nil, map[string]any{
				"job_name": identifier,
				"country":  "GH",
				"city":     "Accra",
			})
			if err != nil {
				t.Fatalf("Dispatch returned error: %v", err)
			}
			if result.JobName != "rebuild-embeddings" || result.Status != domain.StatusCompleted {
				t.Errorf("unexpected result: %+v", result)
			}
		})
	}
}

func TestEmbeddingWorkerUnsupportedIdentifier(t *testing.T) {
	job, _, _, _ := newTestRebuildJob(4)
	worker := NewEmbeddingWorker(job)

	_, err := worker.Dispatch(context.Background(), nil, map[string]any{
		"job_name": "demographics",
	})

	var unsupported *UnsupportedJobError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedJobError, got %v", err)
	}
	if unsupported.Identifier != "demographics" {
		t.Errorf("expected the original identifier in the error, got %q", unsupported.Identifier)
	}
}

func TestEmbeddingWorkerPassesRegionsAndTenant(t *testing.T) {
	job, vectors, _, _ := newTestRebuildJob(4)
	worker := NewEmbeddingWorker(job)

	tenantID := uuid.New()
	result, err := worker.DispatchForTenant(context.Background(), nil, map[string]any{
		"dataset": "rebuild_embeddings",
		"country": "GH",
		"city":    "Accra",
		"regions": []any{"accra-central"},
	}, &tenantID)
	if err != nil {
		t.Fatalf("DispatchForTenant returned error: %v", err)
	}
	if result.RegionCount != 1 {
		t.Errorf("expected the regions filter to apply, got %d regions", result.RegionCount)
	}

	rows := vectors.upserts[0]
	if len(rows) != 1 || rows[0].TenantID == nil || *rows[0].TenantID != tenantID {
		t.Errorf("expected the tenant scope on the stored row, got %+v", rows)
	}
}

func TestEmbeddingWorkerDefaultsToSharedScope(t *testing.T) {
	job, vectors, _, _ := newTestRebuildJob(4)
	worker := NewEmbeddingWorker(job)

	if _, err := worker.Dispatch(context.Background(), nil, map[string]any{
		"dataset": "rebuild_embeddings",
		"city":    "Accra",
	}); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	for _, row := range vectors.upserts[0] {
		if row.TenantID != nil {
			t.Errorf("queue dispatch must store rows in the shared scope, got tenant %v", row.TenantID)
		}
	}
}
