package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Spending is one consumer-spend row per region and category.
// Natural key: (geo_id, city, country, category).
type Spending struct {
	ID              uuid.UUID        `json:"id"`
	TenantID        *uuid.UUID       `json:"tenant_id,omitempty"`
	GeoID           string           `json:"geo_id"`
	Country         string           `json:"country"`
	City            string           `json:"city"`
	Category        string           `json:"category"`
	AvgMonthlySpend *decimal.Decimal `json:"avg_monthly_spend,omitempty"`
	SpendIndex      *decimal.Decimal `json:"spend_index,omitempty"`
	LastUpdated     time.Time        `json:"last_updated"`
}
