// Package embedding generates vector embeddings for region documents.
package embedding

import (
	"context"

	"github.com/localbizintel/backend/internal/config"
)

// Client turns a batch of documents into one vector per document, in order.
type Client interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// NewFromConfig selects the provider-backed client when an API key is
// configured, otherwise the deterministic local embedder (tests, local/dev
// without credentials).
func NewFromConfig(cfg config.EmbeddingConfig) Client {
	if cfg.APIKey == "" {
		return NewLocalClient(cfg.Dimensions)
	}
	return NewHTTPClient(cfg)
}
