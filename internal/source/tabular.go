package source

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/localbizintel/backend/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned when a fixture file is not CSV or XLSX.
var ErrUnsupportedFormat = errors.New("unsupported file format")

var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

// FileSource loads dataset rows from fixture files in a directory:
// demographics.csv/.xlsx, spending.csv/.xlsx, labour_stats.csv/.xlsx. Useful
// for seeding local environments from exported provider data.
type FileSource struct {
	dir string
}

// NewFileSource creates a file-backed source rooted at dir.
func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

type table struct {
	headers []string
	rows    [][]string
}

// value returns the trimmed cell under header, or "" when absent.
func (t table) value(row []string, header string) string {
	for idx, name := range t.headers {
		if name == header && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
	}
	return ""
}

func (s *FileSource) FetchDemographics(ctx context.Context, country string, city string, options map[string]any) ([]domain.Demographics, error) {
	t, err := s.loadTable("demographics")
	if err != nil {
		return nil, err
	}

	rows := []domain.Demographics{}
	for _, record := range t.rows {
		if skipRow(t, record, country, city) {
			continue
		}
		population, err := parseInt(t.value(record, "population_total"))
		if err != nil {
			return nil, fmt.Errorf("demographics fixture: %w", err)
		}
		income, err := parseDecimal(t.value(record, "median_income"))
		if err != nil {
			return nil, fmt.Errorf("demographics fixture: %w", err)
		}
		row := domain.Demographics{
			GeoID:           t.value(record, "geo_id"),
			Country:         t.value(record, "country"),
			City:            t.value(record, "city"),
			PopulationTotal: population,
		}
		if income != nil {
			row.MedianIncome = *income
		}
		if row.HouseholdSizeAvg, err = parseDecimal(t.value(record, "household_size_avg")); err != nil {
			return nil, fmt.Errorf("demographics fixture: %w", err)
		}
		if row.ImmigrationRatio, err = parseDecimal(t.value(record, "immigration_ratio")); err != nil {
			return nil, fmt.Errorf("demographics fixture: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *FileSource) FetchSpending(ctx context.Context, country string, city string, options map[string]any) ([]domain.Spending, error) {
	t, err := s.loadTable("spending")
	if err != nil {
		return nil, err
	}

	rows := []domain.Spending{}
	for _, record := range t.rows {
		if skipRow(t, record, country, city) {
			continue
		}
		row := domain.Spending{
			GeoID:    t.value(record, "geo_id"),
			Country:  t.value(record, "country"),
			City:     t.value(record, "city"),
			Category: t.value(record, "category"),
		}
		if row.AvgMonthlySpend, err = parseDecimal(t.value(record, "avg_monthly_spend")); err != nil {
			return nil, fmt.Errorf("spending fixture: %w", err)
		}
		if row.SpendIndex, err = parseDecimal(t.value(record, "spend_index")); err != nil {
			return nil, fmt.Errorf("spending fixture: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *FileSource) FetchLabourStats(ctx context.Context, country string, city string, options map[string]any) ([]domain.LabourStats, error) {
	t, err := s.loadTable("labour_stats")
	if err != nil {
		return nil, err
	}

	rows := []domain.LabourStats{}
	for _, record := range t.rows {
		if skipRow(t, record, country, city) {
			continue
		}
		row := domain.LabourStats{
			GeoID:   t.value(record, "geo_id"),
			Country: t.value(record, "country"),
			City:    t.value(record, "city"),
		}
		if row.UnemploymentRate, err = parseDecimal(t.value(record, "unemployment_rate")); err != nil {
			return nil, fmt.Errorf("labour stats fixture: %w", err)
		}
		if raw := t.value(record, "job_openings"); raw != "" {
			openings, err := parseInt(raw)
			if err != nil {
				return nil, fmt.Errorf("labour stats fixture: %w", err)
			}
			row.JobOpenings = &openings
		}
		if row.MedianSalary, err = parseDecimal(t.value(record, "median_salary")); err != nil {
			return nil, fmt.Errorf("labour stats fixture: %w", err)
		}
		if row.LabourForceParticipation, err = parseDecimal(t.value(record, "labour_force_participation")); err != nil {
			return nil, fmt.Errorf("labour stats fixture: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// skipRow filters fixture rows down to the requested country/city when those
// are set.
func skipRow(t table, record []string, country string, city string) bool {
	if city != "" && !strings.EqualFold(t.value(record, "city"), city) {
		return true
	}
	if country != "" && !strings.EqualFold(t.value(record, "country"), country) {
		return true
	}
	return false
}

// loadTable reads <dir>/<name>.csv or <dir>/<name>.xlsx, whichever exists.
func (s *FileSource) loadTable(name string) (table, error) {
	for _, ext := range []string{".csv", ".xlsx"} {
		path := filepath.Join(s.dir, name+ext)
		payload, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return table{}, fmt.Errorf("failed to read fixture %s: %w", path, err)
		}
		return parseTable(path, payload)
	}
	return table{}, &FetchError{Provider: "file", Err: fmt.Errorf("no fixture found for dataset %s in %s", name, s.dir)}
}

func parseTable(fileName string, payload []byte) (table, error) {
	switch ext := strings.ToLower(filepath.Ext(fileName)); ext {
	case ".csv":
		return parseCSV(payload)
	case ".xlsx":
		return parseExcel(payload)
	default:
		return table{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func parseCSV(payload []byte) (table, error) {
	reader := bufio.NewReader(bytes.NewReader(payload))
	if prefix, err := reader.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		_, _ = reader.Discard(len(byteOrderMark))
	}

	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return table{}, fmt.Errorf("failed to read csv: %w", err)
	}
	return normalizeTable(records)
}

func parseExcel(payload []byte) (table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return table{}, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return table{}, errors.New("excel file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return table{}, fmt.Errorf("failed to read rows from xlsx: %w", err)
	}
	return normalizeTable(rows)
}

func normalizeTable(records [][]string) (table, error) {
	var headerRow []string
	var dataRows [][]string

	for _, row := range records {
		if len(cleanRow(row)) == 0 {
			continue
		}
		if headerRow == nil {
			headerRow = row
			continue
		}
		dataRows = append(dataRows, row)
	}

	if headerRow == nil {
		return table{}, errors.New("header row could not be detected")
	}

	headers := make([]string, len(headerRow))
	for idx, value := range headerRow {
		name := strings.ToLower(strings.TrimSpace(value))
		name = strings.ReplaceAll(name, " ", "_")
		name = strings.ReplaceAll(name, "-", "_")
		headers[idx] = name
	}

	for i := range dataRows {
		dataRows[i] = padRow(dataRows[i], len(headers))
	}

	return table{headers: headers, rows: dataRows}, nil
}

func cleanRow(row []string) []string {
	var cleaned []string
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			cleaned = append(cleaned, cell)
		}
	}
	return cleaned
}

func padRow(row []string, length int) []string {
	if len(row) >= length {
		return row[:length]
	}
	padded := make([]string, length)
	copy(padded, row)
	return padded
}

func parseInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("unable to parse %q as integer", raw)
	}
	return value, nil
}

func parseDecimal(raw string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("unable to parse %q as decimal", raw)
	}
	return &value, nil
}
