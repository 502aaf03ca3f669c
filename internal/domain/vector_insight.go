package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// VectorInsight holds one region embedding plus its metadata blob.
// Keyed by (tenant_id, geo_id); upserts overwrite in place.
type VectorInsight struct {
	ID        uuid.UUID       `json:"id"`
	TenantID  *uuid.UUID      `json:"tenant_id,omitempty"`
	GeoID     string          `json:"geo_id"`
	Embedding pgvector.Vector `json:"embedding"`
	Metadata  map[string]any  `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
