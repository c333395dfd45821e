package dataprocessing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	apperrors "stickycost/internal/errors"
	"stickycost/internal/panel"
)

// Separator is the delimiter of the yearly accounting extracts.
const Separator = ';'

// MissingIndustry replaces an empty industry code.
const MissingIndustry = "MISSING"

// Raw extract columns.
const (
	ColOrgNr            = "orgnr"
	ColYear             = "regnaar"
	ColClosingDate      = "avslutningsdato"
	ColIndustry         = "naeringskoder_level_1"
	ColLegalForm        = "orgform"
	ColSalesRevenue     = "Salgsinntekt"
	ColTotalRevenue     = "Sum inntekter"
	ColOperatingProfit  = "Driftsresultat"
	ColGoodsCost        = "Varekostnad"
	ColStockChange      = "Endring i beholdning av varer under tilvirkning og ferdig tilvirkede varer"
	ColTotalAssets      = "SUM EIENDELER"
	ColPayroll          = "Loennskostnad"
	ColPayables         = "Leverandoergjeld"
	ColGoods            = "Varer"
	ColTotalGoods       = "Sum varer"
	ColBiological       = "Biologiske eiendeler"
	ColTotalReceivables = "Sum fordringer"
	ColTradeReceivables = "Kundefordringer"
	ColAssetsEUR        = "sum_eiendeler_EUR"
	ColTurnoverEUR      = "sum_omsetning_EUR"
)

// RequiredColumns lists the raw columns an extract must carry.
func RequiredColumns() []string {
	return []string{
		ColOrgNr, ColYear, ColClosingDate, ColIndustry, ColLegalForm,
		ColSalesRevenue, ColTotalRevenue, ColOperatingProfit,
		ColGoodsCost, ColStockChange, ColTotalAssets, ColPayroll, ColPayables,
		ColGoods, ColTotalGoods, ColBiological, ColTotalReceivables, ColTradeReceivables,
		ColAssetsEUR, ColTurnoverEUR,
	}
}

// ParseStats summarises one parsed extract.
type ParseStats struct {
	Source     string
	Rows       int // data rows read
	Kept       int
	AfterLast  int // dropped for regnaar > LastYear
	NoIndustry int // industry recoded to MissingIndustry
}

// Parser converts raw extract rows into panel records.
//
// A reported item that is blank in the extract was not filled in by the
// firm and is read as zero. Where an item has a fallback column the
// fallback is used only when the primary cell is blank.
type Parser struct {
	lastYear int
	logger   *slog.Logger
}

// NewParser creates a parser that drops rows after lastYear. A lastYear of
// zero keeps every row.
func NewParser(lastYear int, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{lastYear: lastYear, logger: logger}
}

// ParseFile opens and parses one extract.
func (p *Parser) ParseFile(path string) ([]panel.Record, ParseStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ParseStats{Source: path}, apperrors.NewStorageError(fmt.Sprintf("failed to open %s", path), err)
	}
	defer f.Close()
	return p.Parse(f, path)
}

// Parse reads a ;-separated extract from r. source names the input in
// errors and logs.
func (p *Parser) Parse(r io.Reader, source string) ([]panel.Record, ParseStats, error) {
	stats := ParseStats{Source: source}

	cr := csv.NewReader(r)
	cr.Comma = Separator
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, stats, apperrors.NewParsingError(fmt.Sprintf("%s: failed to read header", source), err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		cols[name] = i
	}
	var missing []string
	for _, name := range RequiredColumns() {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, stats, apperrors.NewParsingError(
			fmt.Sprintf("%s: missing columns: %s", source, strings.Join(missing, ", ")), nil,
		).WithContext("source", source)
	}

	var records []panel.Record
	line := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, stats, apperrors.NewParsingError(fmt.Sprintf("%s: line %d", source, line), err)
		}
		stats.Rows++

		rec, err := p.parseRow(row, cols)
		if err != nil {
			return nil, stats, apperrors.NewParsingError(fmt.Sprintf("%s: line %d", source, line), err).
				WithContext("source", source).
				WithContext("line", line)
		}
		if p.lastYear > 0 && rec.Year > p.lastYear {
			stats.AfterLast++
			continue
		}
		if rec.Industry == MissingIndustry {
			stats.NoIndustry++
		}
		records = append(records, rec)
	}
	stats.Kept = len(records)

	p.logger.Debug("Parsed extract",
		slog.String("source", source),
		slog.Int("rows", stats.Rows),
		slog.Int("kept", stats.Kept),
		slog.Int("after_last_year", stats.AfterLast),
		slog.Int("missing_industry", stats.NoIndustry))
	return records, stats, nil
}

func (p *Parser) parseRow(row []string, cols map[string]int) (panel.Record, error) {
	cell := func(name string) string {
		i := cols[name]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	var firstErr error
	num := func(name string) float64 {
		v, err := parseNumber(cell(name))
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("column %q: %w", name, err)
		}
		return v
	}
	// orZero applies the zero-fill rule to a single item.
	orZero := func(name string) float64 {
		v := num(name)
		if math.IsNaN(v) {
			return 0
		}
		return v
	}
	// withFallback reads primary and falls back to secondary when blank.
	withFallback := func(primary, secondary string) float64 {
		v := num(primary)
		if math.IsNaN(v) {
			v = num(secondary)
		}
		if math.IsNaN(v) {
			return 0
		}
		return v
	}

	rec := panel.Record{
		OrgNr:       normaliseID(cell(ColOrgNr)),
		ClosingDate: cell(ColClosingDate),
		Industry:    cell(ColIndustry),
		LegalForm:   cell(ColLegalForm),
	}
	if rec.OrgNr == "" {
		return rec, errors.New("empty orgnr")
	}
	year := num(ColYear)
	if math.IsNaN(year) || year != math.Trunc(year) {
		return rec, fmt.Errorf("invalid %s %q", ColYear, cell(ColYear))
	}
	rec.Year = int(year)
	if rec.Industry == "" {
		rec.Industry = MissingIndustry
	}

	rec.Set(panel.Sales, orZero(ColSalesRevenue))
	rec.Set(panel.OperatingCosts, orZero(ColTotalRevenue)-orZero(ColOperatingProfit))
	rec.Set(panel.GoodsCosts, orZero(ColGoodsCost)+orZero(ColStockChange))
	rec.Set(panel.Assets, orZero(ColTotalAssets))
	rec.Set(panel.Payroll, orZero(ColPayroll))
	rec.Set(panel.Payables, orZero(ColPayables))
	rec.Set(panel.Inventories, withFallback(ColGoods, ColTotalGoods)+orZero(ColBiological))
	rec.Set(panel.Receivables, withFallback(ColTotalReceivables, ColTradeReceivables))

	rec.AssetsEUR = orZero(ColAssetsEUR)
	rec.TurnoverEUR = orZero(ColTurnoverEUR)

	rec.SalesNominal = rec.Value(panel.Sales)
	rec.PayrollNominal = rec.Value(panel.Payroll)
	rec.AssetsNominal = rec.Value(panel.Assets)

	return rec, firstErr
}

// parseNumber parses a numeric cell. A blank cell is NaN. A decimal comma
// is accepted when the cell has no decimal point.
func parseNumber(s string) (float64, error) {
	if s == "" {
		return math.NaN(), nil
	}
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN(), err
	}
	return v, nil
}

// normaliseID strips a trailing ".0" left by float formatting of orgnr.
func normaliseID(s string) string {
	return strings.TrimSuffix(s, ".0")
}
