package embedding

import (
	"context"
	"crypto/sha256"
)

// LocalClient produces deterministic embeddings of fixed dimension. Not
// semantically meaningful; purely for stable tests and local/dev runs.
type LocalClient struct {
	dimensions int
}

// NewLocalClient creates a deterministic embedder of the given width.
func NewLocalClient(dimensions int) *LocalClient {
	return &LocalClient{dimensions: dimensions}
}

func (c *LocalClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = c.embed(text)
	}
	return vectors, nil
}

func (c *LocalClient) embed(text string) []float32 {
	digest := sha256.Sum256([]byte(text))
	values := make([]float32, c.dimensions)
	for idx := range values {
		b := digest[idx%len(digest)]
		// Map 0..255 to -1..1
		values[idx] = float32(b)/127.5 - 1.0
	}
	return values
}
