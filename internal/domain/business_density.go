package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CoordinateSample is one sampled point-of-interest location kept alongside a
// business density row.
type CoordinateSample struct {
	ID   int64   `json:"id"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Type string  `json:"type"`
}

// BusinessDensity is one row counting businesses of a type in a region.
// Natural key: (geo_id, city, country, business_type).
type BusinessDensity struct {
	ID           uuid.UUID          `json:"id"`
	TenantID     *uuid.UUID         `json:"tenant_id,omitempty"`
	GeoID        string             `json:"geo_id"`
	Country      string             `json:"country"`
	City         string             `json:"city"`
	BusinessType string             `json:"business_type"`
	Count        *int               `json:"count,omitempty"`
	DensityScore *decimal.Decimal   `json:"density_score,omitempty"`
	Coordinates  []CoordinateSample `json:"coordinates,omitempty"`
	LastUpdated  time.Time          `json:"last_updated"`
}
