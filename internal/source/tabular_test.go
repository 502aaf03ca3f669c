package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func writeFixture(t *testing.T, dir string, name string, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
}

func TestFileSourceDemographicsCSV(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "demographics.csv",
		"Geo ID,Country,City,Population Total,Median Income,Household Size Avg\n"+
			"accra-central,GH,Accra,150000,50000,3.4\n"+
			"kumasi-central,GH,Kumasi,90000,41000,\n")

	src := NewFileSource(dir)
	rows, err := src.FetchDemographics(context.Background(), "GH", "Accra", nil)
	if err != nil {
		t.Fatalf("FetchDemographics returned error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected the city filter to keep 1 row, got %d", len(rows))
	}

	row := rows[0]
	if row.GeoID != "accra-central" || row.PopulationTotal != 150_000 {
		t.Errorf("unexpected row: %+v", row)
	}
	if !row.MedianIncome.Equal(decimal.NewFromInt(50_000)) {
		t.Errorf("expected income 50000, got %s", row.MedianIncome)
	}
	if row.HouseholdSizeAvg == nil || !row.HouseholdSizeAvg.Equal(decimal.RequireFromString("3.4")) {
		t.Errorf("expected household size 3.4, got %v", row.HouseholdSizeAvg)
	}
}

func TestFileSourceHandlesByteOrderMark(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "spending.csv",
		"\xEF\xBB\xBFgeo_id,country,city,category,avg_monthly_spend,spend_index\n"+
			"accra-central,GH,Accra,groceries,350,1\n")

	src := NewFileSource(dir)
	rows, err := src.FetchSpending(context.Background(), "", "", nil)
	if err != nil {
		t.Fatalf("FetchSpending returned error: %v", err)
	}
	if len(rows) != 1 || rows[0].GeoID != "accra-central" {
		t.Fatalf("BOM broke header detection: %+v", rows)
	}
	if rows[0].Category != "groceries" || !rows[0].AvgMonthlySpend.Equal(decimal.NewFromInt(350)) {
		t.Errorf("unexpected row: %+v", rows[0])
	}
}

func TestFileSourceLabourStatsXLSX(t *testing.T) {
	dir := t.TempDir()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	cells := [][]any{
		{"geo_id", "country", "city", "unemployment_rate", "job_openings", "median_salary"},
		{"accra-north", "GH", "Accra", "4.7", "1250", "58000"},
	}
	for rowIdx, row := range cells {
		for colIdx, value := range row {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				t.Fatalf("failed to build cell name: %v", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				t.Fatalf("failed to set cell: %v", err)
			}
		}
	}
	if err := f.SaveAs(filepath.Join(dir, "labour_stats.xlsx")); err != nil {
		t.Fatalf("failed to save xlsx fixture: %v", err)
	}

	src := NewFileSource(dir)
	rows, err := src.FetchLabourStats(context.Background(), "GH", "Accra", nil)
	if err != nil {
		t.Fatalf("FetchLabourStats returned error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}

	row := rows[0]
	if row.GeoID != "accra-north" {
		t.Errorf("unexpected geo_id %q", row.GeoID)
	}
	if row.UnemploymentRate == nil || !row.UnemploymentRate.Equal(decimal.RequireFromString("4.7")) {
		t.Errorf("expected unemployment 4.7, got %v", row.UnemploymentRate)
	}
	if row.JobOpenings == nil || *row.JobOpenings != 1250 {
		t.Errorf("expected 1250 openings, got %v", row.JobOpenings)
	}
}

func TestFileSourceMissingFixture(t *testing.T) {
	src := NewFileSource(t.TempDir())
	_, err := src.FetchDemographics(context.Background(), "GH", "Accra", nil)

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError for a missing fixture, got %v", err)
	}
	if fetchErr.Provider != "file" {
		t.Errorf("unexpected provider %q", fetchErr.Provider)
	}
}

func TestFileSourceRejectsMalformedNumbers(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "demographics.csv",
		"geo_id,country,city,population_total,median_income\n"+
			"accra-central,GH,Accra,lots,50000\n")

	src := NewFileSource(dir)
	if _, err := src.FetchDemographics(context.Background(), "GH", "Accra", nil); err == nil {
		t.Fatal("expected an error for a malformed population value")
	}
}

func TestParseTableUnsupportedFormat(t *testing.T) {
	_, err := parseTable("demographics.json", []byte("{}"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}
