package source

import (
	"context"

	"github.com/localbizintel/backend/internal/domain"

	"github.com/shopspring/decimal"
)

// Deterministic local/dev sources. Each generates stable rows over the
// {slug}-central/-north/-south sub-regions so the rest of the pipeline can run
// without live providers. A production deployment swaps these for real
// provider clients without touching the ETL jobs.

func stubGeoIDs(city string) []string {
	slug := citySlug(city)
	return []string{slug + "-central", slug + "-north", slug + "-south"}
}

// StubDemographicsSource generates deterministic demographics rows.
type StubDemographicsSource struct{}

// NewStubDemographicsSource creates the local/dev demographics source.
func NewStubDemographicsSource() *StubDemographicsSource {
	return &StubDemographicsSource{}
}

func (s *StubDemographicsSource) FetchDemographics(ctx context.Context, country string, city string, options map[string]any) ([]domain.Demographics, error) {
	resolvedCountry := resolvedCountry(country)
	resolvedCity := resolvedCity(city)

	const (
		basePopulation = 150_000
		baseIncome     = 50_000
	)

	geoIDs := stubGeoIDs(resolvedCity)
	rows := make([]domain.Demographics, 0, len(geoIDs))
	for idx, geoID := range geoIDs {
		rows = append(rows, domain.Demographics{
			GeoID:           geoID,
			Country:         resolvedCountry,
			City:            resolvedCity,
			PopulationTotal: basePopulation + idx*20_000,
			MedianIncome:    decimal.NewFromInt(int64(baseIncome + idx*5_000)),
		})
	}
	return rows, nil
}

// StubLabourStatsSource generates deterministic labour stats rows.
type StubLabourStatsSource struct{}

// NewStubLabourStatsSource creates the local/dev labour stats source.
func NewStubLabourStatsSource() *StubLabourStatsSource {
	return &StubLabourStatsSource{}
}

func (s *StubLabourStatsSource) FetchLabourStats(ctx context.Context, country string, city string, options map[string]any) ([]domain.LabourStats, error) {
	resolvedCountry := resolvedCountry(country)
	resolvedCity := resolvedCity(city)

	geoIDs := stubGeoIDs(resolvedCity)
	rows := make([]domain.LabourStats, 0, len(geoIDs))
	for idx, geoID := range geoIDs {
		// Stable values within realistic ranges.
		unemployment := decimal.NewFromFloat(4.0).Add(decimal.NewFromFloat(0.7).Mul(decimal.NewFromInt(int64(idx))))
		openings := 1000 + idx*250
		salary := decimal.NewFromInt(int64(55_000 + idx*3_000))
		participation := decimal.NewFromFloat(61.0).Add(decimal.NewFromFloat(0.8).Mul(decimal.NewFromInt(int64(idx))))

		rows = append(rows, domain.LabourStats{
			GeoID:                    geoID,
			Country:                  resolvedCountry,
			City:                     resolvedCity,
			UnemploymentRate:         &unemployment,
			JobOpenings:              &openings,
			MedianSalary:             &salary,
			LabourForceParticipation: &participation,
		})
	}
	return rows, nil
}

// StubSpendingSource generates deterministic spending rows per category.
type StubSpendingSource struct{}

// NewStubSpendingSource creates the local/dev spending source.
func NewStubSpendingSource() *StubSpendingSource {
	return &StubSpendingSource{}
}

var baseSpendByCategory = map[string]decimal.Decimal{
	"groceries": decimal.NewFromFloat(350.0),
	"dining":    decimal.NewFromFloat(220.0),
	"transport": decimal.NewFromFloat(180.0),
}

var defaultSpendBase = decimal.NewFromFloat(200.0)

func (s *StubSpendingSource) FetchSpending(ctx context.Context, country string, city string, options map[string]any) ([]domain.Spending, error) {
	resolvedCountry := resolvedCountry(country)
	resolvedCity := resolvedCity(city)

	categories := []string{"groceries", "dining", "transport"}
	if raw, ok := options["categories"].([]any); ok {
		var fromOptions []string
		for _, value := range raw {
			name, ok := value.(string)
			if !ok {
				fromOptions = nil
				break
			}
			fromOptions = append(fromOptions, name)
		}
		if len(fromOptions) > 0 {
			categories = fromOptions
		}
	}

	geoIDs := stubGeoIDs(resolvedCity)
	rows := make([]domain.Spending, 0, len(geoIDs)*len(categories))
	for geoIdx, geoID := range geoIDs {
		regionMultiplier := decimal.NewFromInt(1).Add(decimal.NewFromFloat(0.07).Mul(decimal.NewFromInt(int64(geoIdx))))
		for catIdx, category := range categories {
			base, ok := baseSpendByCategory[category]
			if !ok {
				base = defaultSpendBase
			}
			categoryMultiplier := decimal.NewFromInt(1).Add(decimal.NewFromFloat(0.03).Mul(decimal.NewFromInt(int64(catIdx))))
			avgMonthlySpend := base.Mul(regionMultiplier).Mul(categoryMultiplier)
			// spend_index is a simple ratio to the category base.
			spendIndex := avgMonthlySpend.DivRound(base, 6)

			rows = append(rows, domain.Spending{
				GeoID:           geoID,
				Country:         resolvedCountry,
				City:            resolvedCity,
				Category:        category,
				AvgMonthlySpend: &avgMonthlySpend,
				SpendIndex:      &spendIndex,
			})
		}
	}
	return rows, nil
}
