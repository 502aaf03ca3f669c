package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LabourStats is one employment-market row per region.
// Natural key: (geo_id, city, country).
type LabourStats struct {
	ID                       uuid.UUID        `json:"id"`
	TenantID                 *uuid.UUID       `json:"tenant_id,omitempty"`
	GeoID                    string           `json:"geo_id"`
	Country                  string           `json:"country"`
	City                     string           `json:"city"`
	UnemploymentRate         *decimal.Decimal `json:"unemployment_rate,omitempty"`
	JobOpenings              *int             `json:"job_openings,omitempty"`
	MedianSalary             *decimal.Decimal `json:"median_salary,omitempty"`
	LabourForceParticipation *decimal.Decimal `json:"labour_force_participation,omitempty"`
	LastUpdated              time.Time        `json:"last_updated"`
}
