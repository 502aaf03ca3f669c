package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Demographics is one census-style row for a sub-city region.
// Natural key: (geo_id, city, country).
type Demographics struct {
	ID               uuid.UUID        `json:"id"`
	TenantID         *uuid.UUID       `json:"tenant_id,omitempty"`
	GeoID            string           `json:"geo_id"`
	Country          string           `json:"country"`
	City             string           `json:"city"`
	PopulationTotal  int              `json:"population_total"`
	MedianIncome     decimal.Decimal  `json:"median_income"`
	AgeDistribution  map[string]any   `json:"age_distribution,omitempty"`
	EducationLevels  map[string]any   `json:"education_levels,omitempty"`
	HouseholdSizeAvg *decimal.Decimal `json:"household_size_avg,omitempty"`
	ImmigrationRatio *decimal.Decimal `json:"immigration_ratio,omitempty"`
	Coordinates      map[string]any   `json:"coordinates,omitempty"`
	LastUpdated      time.Time        `json:"last_updated"`
}
