// Package httpapi exposes the worker's queue-push and read endpoints.
package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/localbizintel/backend/internal/db"
	"github.com/localbizintel/backend/internal/jobs"
	"github.com/localbizintel/backend/internal/repository"

	"github.com/google/uuid"
)

// Handler serves job pushes and the bookkeeping read endpoints. Dispatches
// run on an autocommit handle (the pool): a failed job's FAILED freshness
// and audit writes must survive the failure, and a transaction spanning the
// whole dispatch would be aborted by the failing statement and roll them
// back. The error still reaches the queue boundary for retry.
type Handler struct {
	q         db.Executor
	ingestion *jobs.IngestionWorker
	embedding *jobs.EmbeddingWorker
	freshness repository.FreshnessRepository
	etlLog    repository.EtlLogRepository
	vectors   repository.VectorInsightRepository
}

// NewHandler wires the HTTP surface around a storage handle, normally the
// connection pool.
func NewHandler(
	q db.Executor,
	ingestion *jobs.IngestionWorker,
	embedding *jobs.EmbeddingWorker,
	freshness repository.FreshnessRepository,
	etlLog repository.EtlLogRepository,
	vectors repository.VectorInsightRepository,
) *Handler {
	return &Handler{
		q:         q,
		ingestion: ingestion,
		embedding: embedding,
		freshness: freshness,
		etlLog:    etlLog,
		vectors:   vectors,
	}
}

// Routes returns the endpoint mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /push/ingestion", h.pushIngestion)
	mux.HandleFunc("POST /push/embedding", h.pushEmbedding)
	mux.HandleFunc("GET /freshness", h.listFreshness)
	mux.HandleFunc("GET /etl-logs", h.listEtlLogs)
	mux.HandleFunc("GET /insights", h.listInsights)
	return mux
}

func (h *Handler) pushIngestion(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}

	result, err := h.ingestion.Dispatch(r.Context(), h.q, payload)
	if err != nil {
		writeJobError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result.ToMap())
}

func (h *Handler) pushEmbedding(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}

	tenantID, ok := parseTenantID(w, r)
	if !ok {
		return
	}

	result, err := h.embedding.DispatchForTenant(r.Context(), h.q, payload, tenantID)
	if err != nil {
		writeJobError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result.ToMap())
}

func (h *Handler) listFreshness(w http.ResponseWriter, r *http.Request) {
	records, err := h.freshness.ListAll(r.Context(), h.q)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list freshness records")
		log.Printf("[HTTP] list freshness failed: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"freshness": records})
}

func (h *Handler) listEtlLogs(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	entries, err := h.etlLog.ListRecent(r.Context(), h.q, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list etl logs")
		log.Printf("[HTTP] list etl logs failed: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"logs": entries})
}

func (h *Handler) listInsights(w http.ResponseWriter, r *http.Request) {
	var geoIDs []string
	for _, raw := range r.URL.Query()["geo_id"] {
		for _, geoID := range strings.Split(raw, ",") {
			if geoID = strings.TrimSpace(geoID); geoID != "" {
				geoIDs = append(geoIDs, geoID)
			}
		}
	}
	if len(geoIDs) == 0 {
		writeError(w, http.StatusBadRequest, "at least one geo_id is required")
		return
	}

	tenantID, ok := parseTenantID(w, r)
	if !ok {
		return
	}

	insights, err := h.vectors.ListByGeoIDs(r.Context(), h.q, geoIDs, tenantID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list insights")
		log.Printf("[HTTP] list insights failed: %v", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"insights": insights})
}

// parseTenantID reads the optional tenant_id query parameter. A missing
// parameter means the shared scope (nil tenant).
func parseTenantID(w http.ResponseWriter, r *http.Request) (*uuid.UUID, bool) {
	raw := r.URL.Query().Get("tenant_id")
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "tenant_id must be a UUID")
		return nil, false
	}
	return &id, true
}

func decodePayload(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be a JSON object")
		return nil, false
	}
	if payload == nil {
		payload = map[string]any{}
	}
	return payload, true
}

// writeJobError maps dispatch failures: a bad identifier is the producer's
// fault, everything else is a server-side failure the queue should retry.
func writeJobError(w http.ResponseWriter, err error) {
	var unsupported *jobs.UnsupportedJobError
	if errors.As(err, &unsupported) {
		writeError(w, http.StatusBadRequest, unsupported.Error())
		return
	}
	log.Printf("[HTTP] job dispatch failed: %v", err)
	writeError(w, http.StatusInternalServerError, "job execution failed")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("[HTTP] failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
