package dataprocessing

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"stickycost/internal/errors"
	"stickycost/internal/panel"
)

// YearCoverage describes the statements available for one accounting year.
type YearCoverage struct {
	Year            int     `json:"year"`
	Rows            int     `json:"rows"`
	Firms           int     `json:"firms"`
	Industries      int     `json:"industries"`
	MissingIndustry int     `json:"missing_industry"`
	ZeroSales       int     `json:"zero_sales"`
	WithPriorYear   int     `json:"with_prior_year"`
	MedianSales     float64 `json:"median_sales"`
}

// Summarizer builds per-year coverage of a loaded panel.
type Summarizer struct {
	logger *slog.Logger
}

// NewSummarizer creates a coverage summarizer.
func NewSummarizer(logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{logger: logger}
}

// Summarize groups records by year. WithPriorYear counts the firms that
// also report in the previous year, which bounds the lag-1 sample.
func (s *Summarizer) Summarize(ctx context.Context, records []panel.Record) []YearCoverage {
	byYear := make(map[int][]*panel.Record)
	firmsByYear := make(map[int]map[string]bool)
	for i := range records {
		r := &records[i]
		byYear[r.Year] = append(byYear[r.Year], r)
		if firmsByYear[r.Year] == nil {
			firmsByYear[r.Year] = make(map[string]bool)
		}
		firmsByYear[r.Year][r.OrgNr] = true
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	out := make([]YearCoverage, 0, len(years))
	for _, y := range years {
		rows := byYear[y]
		industries := make(map[string]bool)
		sales := make([]float64, 0, len(rows))
		c := YearCoverage{Year: y, Rows: len(rows), Firms: len(firmsByYear[y])}
		for _, r := range rows {
			industries[r.Industry] = true
			if r.Industry == MissingIndustry {
				c.MissingIndustry++
			}
			v := r.Value(panel.Sales)
			if v == 0 {
				c.ZeroSales++
			}
			sales = append(sales, v)
		}
		for org := range firmsByYear[y] {
			if firmsByYear[y-1][org] {
				c.WithPriorYear++
			}
		}
		c.Industries = len(industries)
		c.MedianSales = median(sales)
		out = append(out, c)
	}

	s.logger.InfoContext(ctx, "Summarized panel coverage",
		slog.Int("years", len(out)),
		slog.Int("rows", len(records)))
	return out
}

// Grid renders coverage as a header row followed by one row per year.
func (s *Summarizer) Grid(coverage []YearCoverage) [][]string {
	grid := [][]string{{"Year", "Rows", "Firms", "Industries", "MissingIndustry", "ZeroSales", "WithPriorYear", "MedianSales"}}
	for _, c := range coverage {
		grid = append(grid, []string{
			strconv.Itoa(c.Year),
			strconv.Itoa(c.Rows),
			strconv.Itoa(c.Firms),
			strconv.Itoa(c.Industries),
			strconv.Itoa(c.MissingIndustry),
			strconv.Itoa(c.ZeroSales),
			strconv.Itoa(c.WithPriorYear),
			strconv.FormatFloat(c.MedianSales, 'f', 0, 64),
		})
	}
	return grid
}

// WriteJSON writes coverage to path with generation metadata.
func (s *Summarizer) WriteJSON(ctx context.Context, path string, coverage []YearCoverage) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewStorageError("failed to create directory for coverage output", err)
	}

	doc := map[string]interface{}{
		"years":        coverage,
		"count":        len(coverage),
		"generated_at": time.Now().Format(time.RFC3339),
		"format":       "panel_coverage_v1",
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.NewStorageError("failed to create coverage file", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return errors.NewStorageError("failed to encode coverage", err)
	}

	s.logger.InfoContext(ctx, "Wrote coverage summary", slog.String("path", path))
	return nil
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
