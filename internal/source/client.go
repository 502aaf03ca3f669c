// Package source holds the per-dataset provider clients the ETL jobs fetch
// from. Each dataset has an interface so jobs can be wired against live
// providers, file fixtures, or deterministic stubs.
package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/localbizintel/backend/internal/domain"
)

// DemographicsSource fetches raw demographics rows for a city.
type DemographicsSource interface {
	FetchDemographics(ctx context.Context, country string, city string, options map[string]any) ([]domain.Demographics, error)
}

// SpendingSource fetches raw spending rows for a city.
type SpendingSource interface {
	FetchSpending(ctx context.Context, country string, city string, options map[string]any) ([]domain.Spending, error)
}

// LabourStatsSource fetches raw labour stats rows for a city.
type LabourStatsSource interface {
	FetchLabourStats(ctx context.Context, country string, city string, options map[string]any) ([]domain.LabourStats, error)
}

// BusinessDensitySource fetches raw business density rows for a city.
type BusinessDensitySource interface {
	FetchBusinessDensity(ctx context.Context, country string, city string, options map[string]any) ([]domain.BusinessDensity, error)
}

// FetchError reports a failure while contacting an external provider.
type FetchError struct {
	Provider string
	Status   int
	Err      error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s fetch failed with status %d: %v", e.Provider, e.Status, e.Err)
	}
	return fmt.Sprintf("%s fetch failed: %v", e.Provider, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// citySlug normalizes a city name into the geo_id prefix, e.g.
// "Accra" -> "accra".
func citySlug(city string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(city)), " ", "-")
}

func resolvedCountry(country string) string {
	if country == "" {
		return "NA"
	}
	return country
}

func resolvedCity(city string) string {
	if city == "" {
		return "Unknown"
	}
	return city
}
