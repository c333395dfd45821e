package panel

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	apperrors "stickycost/internal/errors"
)

// Separator is the column delimiter of the processed panel file.
const Separator = ';'

// Identifier and descriptive columns of the processed panel.
const (
	ColOrgNr          = "orgnr"
	ColYear           = "regnaar"
	ColClosingDate    = "avslutningsdato"
	ColIndustry       = "Bransje"
	ColLegalForm      = "orgform"
	ColSalesNominal   = "Salg_ikke_deflatert"
	ColPayrollNominal = "Lonnskostnader_ikke_deflatert"
	ColAssetsNominal  = "Eiendeler_ikke_deflatert"
	ColAssetsEUR      = "sum_eiendeler_EUR"
	ColTurnoverEUR    = "sum_omsetning_EUR"
)

type column struct {
	name string
	get  func(*Record) string
	set  func(*Record, string) error
}

func floatColumn(name string, get func(*Record) float64, set func(*Record, float64)) column {
	return column{
		name: name,
		get:  func(r *Record) string { return formatFloat(get(r)) },
		set: func(r *Record, s string) error {
			v, err := parseFloat(s)
			if err != nil {
				return err
			}
			set(r, v)
			return nil
		},
	}
}

func lagColumn(f Field, lag int) column {
	return column{
		name: LagColumnName(f, lag),
		get:  func(r *Record) string { return formatFloat(r.Lagged(f, lag)) },
		set: func(r *Record, s string) error {
			if strings.TrimSpace(s) == "" {
				r.SetLag(f, lag, math.NaN())
				return nil
			}
			v, err := parseFloat(s)
			if err != nil {
				return err
			}
			r.SetLag(f, lag, v)
			return nil
		},
	}
}

func stringColumn(name string, ptr func(*Record) *string) column {
	return column{
		name: name,
		get:  func(r *Record) string { return *ptr(r) },
		set: func(r *Record, s string) error {
			*ptr(r) = s
			return nil
		},
	}
}

// layout returns the processed-panel columns for a lag spec in file order.
func layout(spec LagSpec) []column {
	cols := []column{
		stringColumn(ColOrgNr, func(r *Record) *string { return &r.OrgNr }),
		{
			name: ColYear,
			get:  func(r *Record) string { return strconv.Itoa(r.Year) },
			set: func(r *Record, s string) error {
				y, err := strconv.Atoi(strings.TrimSpace(s))
				if err != nil {
					return fmt.Errorf("invalid year %q", s)
				}
				r.Year = y
				return nil
			},
		},
		stringColumn(ColClosingDate, func(r *Record) *string { return &r.ClosingDate }),
		stringColumn(ColIndustry, func(r *Record) *string { return &r.Industry }),
		stringColumn(ColLegalForm, func(r *Record) *string { return &r.LegalForm }),
	}

	lagged := func(f Field, fields []Field) bool {
		for _, g := range fields {
			if g == f {
				return true
			}
		}
		return false
	}

	for _, f := range Fields() {
		f := f
		cols = append(cols, floatColumn(f.String(), func(r *Record) float64 { return r.Value(f) }, func(r *Record, v float64) { r.Set(f, v) }))
		if lagged(f, spec.Lag1) {
			cols = append(cols, lagColumn(f, 1))
		}
		if lagged(f, spec.Lag2) {
			cols = append(cols, lagColumn(f, 2))
		}
	}

	return append(cols,
		floatColumn(ColSalesNominal, func(r *Record) float64 { return r.SalesNominal }, func(r *Record, v float64) { r.SalesNominal = v }),
		floatColumn(ColPayrollNominal, func(r *Record) float64 { return r.PayrollNominal }, func(r *Record, v float64) { r.PayrollNominal = v }),
		floatColumn(ColAssetsNominal, func(r *Record) float64 { return r.AssetsNominal }, func(r *Record, v float64) { r.AssetsNominal = v }),
		floatColumn(ColAssetsEUR, func(r *Record) float64 { return r.AssetsEUR }, func(r *Record, v float64) { r.AssetsEUR = v }),
		floatColumn(ColTurnoverEUR, func(r *Record) float64 { return r.TurnoverEUR }, func(r *Record, v float64) { r.TurnoverEUR = v }),
	)
}

// WriteCSV writes the panel as a semicolon separated file with the columns
// needed to reproduce every record under spec.
func WriteCSV(w io.Writer, p *Panel, spec LagSpec) error {
	cols := layout(spec)
	cw := csv.NewWriter(w)
	cw.Comma = Separator

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.name
	}
	if err := cw.Write(header); err != nil {
		return apperrors.NewStorageError("failed to write panel header", err)
	}

	row := make([]string, len(cols))
	for i := range p.records {
		for j, c := range cols {
			row[j] = c.get(&p.records[i])
		}
		if err := cw.Write(row); err != nil {
			return apperrors.NewStorageError("failed to write panel row", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return apperrors.NewStorageError("failed to flush panel", err)
	}
	return nil
}

// ReadCSV parses a processed panel written by WriteCSV. Columns are matched
// by header name; lag columns that are absent stay missing. The result is
// checked for firm-year uniqueness like any other panel.
func ReadCSV(r io.Reader) (*Panel, error) {
	cr := csv.NewReader(r)
	cr.Comma = Separator
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read panel header", err)
	}

	known := make(map[string]column)
	for _, c := range layout(LagSpec{Lag1: MonetaryFields(), Lag2: MonetaryFields()}) {
		known[c.name] = c
	}

	setters := make([]func(*Record, string) error, len(header))
	seen := make(map[string]bool)
	for i, name := range header {
		name = strings.TrimPrefix(strings.TrimSpace(name), "\ufeff")
		if c, ok := known[name]; ok {
			setters[i] = c.set
			seen[name] = true
		}
	}
	for _, required := range []string{ColOrgNr, ColYear} {
		if !seen[required] {
			return nil, apperrors.NewParsingError(fmt.Sprintf("panel is missing column %q", required), nil)
		}
	}

	var records []Record
	line := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("failed to read panel line %d", line), err)
		}

		var rec Record
		for i, set := range setters {
			if set == nil || i >= len(row) {
				continue
			}
			if err := set(&rec, row[i]); err != nil {
				return nil, apperrors.NewParsingError(
					fmt.Sprintf("line %d, column %s", line, header[i]), err,
				).WithContext("line", line)
			}
		}
		records = append(records, rec)
	}

	return New(records)
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty value")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}
