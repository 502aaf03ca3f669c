package domain

import (
	"time"

	"github.com/google/uuid"
)

// EtlLogEntry is one append-only audit record per job invocation. The
// pipeline never updates or deletes these rows.
type EtlLogEntry struct {
	ID        uuid.UUID      `json:"id"`
	JobName   string         `json:"job_name"`
	Payload   map[string]any `json:"payload,omitempty"`
	Status    string         `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
}
