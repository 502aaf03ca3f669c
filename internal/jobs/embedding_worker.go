package jobs

import (
	"context"
	"log"
	"strings"

	"github.com/localbizintel/backend/internal/db"

	"github.com/google/uuid"
)

// embeddingAliases maps normalized identifiers to the rebuild job. Unlike
// dataset identifiers, embedding identifiers keep hyphens distinct, so both
// spellings are listed.
var embeddingAliases = map[string]struct{}{
	"rebuild_embeddings": {},
	"rebuild-embeddings": {},
}

// EmbeddingWorker dispatches decoded queue envelopes to the rebuild job.
type EmbeddingWorker struct {
	rebuild *RebuildEmbeddingsJob
}

// NewEmbeddingWorker registers the rebuild job.
func NewEmbeddingWorker(rebuild *RebuildEmbeddingsJob) *EmbeddingWorker {
	return &EmbeddingWorker{rebuild: rebuild}
}

// Dispatch resolves the envelope's identifier and runs the rebuild job on
// the caller's storage handle. Identifiers are matched case-insensitively
// after trimming; an unknown identifier returns *UnsupportedJobError.
// The queue boundary carries no tenant, so rows land in the shared scope.
func (w *EmbeddingWorker) Dispatch(ctx context.Context, q db.Executor, payload map[string]any) (RebuildEmbeddingsResult, error) {
	return w.DispatchForTenant(ctx, q, payload, nil)
}

// DispatchForTenant is Dispatch with an explicit tenant scope for the
// authenticated HTTP boundary.
func (w *EmbeddingWorker) DispatchForTenant(ctx context.Context, q db.Executor, payload map[string]any, tenantID *uuid.UUID) (RebuildEmbeddingsResult, error) {
	message := MessageFromPayload(payload)

	normalized := strings.TrimSpace(strings.ToLower(message.Dataset))
	if _, ok := embeddingAliases[normalized]; !ok {
		return RebuildEmbeddingsResult{}, &UnsupportedJobError{Identifier: message.Dataset}
	}

	log.Printf("[EMBED] dispatch job=%s country=%s city=%s regions=%d",
		normalized, message.Country, message.City, len(message.Regions))
	result, err := w.rebuild.Run(ctx, q, message.Country, message.City, message.Regions, message.Options, tenantID)
	if err != nil {
		log.Printf("[EMBED] job=%s failed: %v", normalized, err)
		return RebuildEmbeddingsResult{}, err
	}
	return result, nil
}
