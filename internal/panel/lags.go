package panel

import (
	"errors"
	"fmt"
	"math"
	"sort"

	apperrors "stickycost/internal/errors"
)

// ErrGDPYearMissing is wrapped by the LOOKUP error AttachGDP returns when the
// GDP series lacks a needed year.
var ErrGDPYearMissing = errors.New("gdp year not found")

// LagSpec names the fields copied from the prior and second-prior year.
type LagSpec struct {
	Lag1 []Field
	Lag2 []Field
}

// DefaultLagSpec returns the lag set used by the cost stickiness models.
func DefaultLagSpec() LagSpec {
	return LagSpec{
		Lag1: []Field{Sales, OperatingCosts, GoodsCosts, Inventories},
		Lag2: []Field{Sales},
	}
}

// GDPSeries maps a calendar year to gross domestic product.
type GDPSeries map[int]float64

// AttachLags returns a new panel holding every record with Year >= fromYear,
// each carrying the spec's lag values copied from the same firm's records one
// and two years earlier. Earlier years serve only as join sources and are not
// part of the result. Rows without a matching earlier record keep missing
// lags.
//
// The join runs per year: the rows of year Y are matched against the rows of
// Y-1 and Y-2 only, so the cost is linear in the panel size.
func AttachLags(p *Panel, spec LagSpec, fromYear int) (*Panel, error) {
	for _, f := range append(append([]Field{}, spec.Lag1...), spec.Lag2...) {
		if !f.Valid() {
			return nil, apperrors.NewValidationError(fmt.Sprintf("invalid lag field %d", int(f)), nil)
		}
	}

	byYear := make(map[int]map[string]int)
	for i := range p.records {
		r := &p.records[i]
		rows, ok := byYear[r.Year]
		if !ok {
			rows = make(map[string]int)
			byYear[r.Year] = rows
		}
		rows[r.OrgNr] = i
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		if y >= fromYear {
			years = append(years, y)
		}
	}
	sort.Ints(years)

	out := &Panel{index: make(map[Key]int)}
	for _, year := range years {
		prev := byYear[year-1]
		prevPrev := byYear[year-2]

		for i := range p.records {
			if p.records[i].Year != year {
				continue
			}
			r := p.records[i]
			copyLags(&r, p.records, prev, spec.Lag1, 1)
			copyLags(&r, p.records, prevPrev, spec.Lag2, 2)

			out.index[r.Key()] = len(out.records)
			out.records = append(out.records, r)
		}
	}

	return out, nil
}

func copyLags(r *Record, records []Record, source map[string]int, fields []Field, lag int) {
	for _, f := range fields {
		r.SetLag(f, lag, math.NaN())
	}
	if source == nil {
		return
	}
	j, ok := source[r.OrgNr]
	if !ok {
		return
	}
	for _, f := range fields {
		r.SetLag(f, lag, records[j].Value(f))
	}
}

// AttachGDP sets GDP and GDPPrev on every record from the series.
func AttachGDP(p *Panel, gdp GDPSeries) error {
	return p.Update(func(r *Record) error {
		cur, ok := gdp[r.Year]
		if !ok {
			return gdpMissing(r.Year)
		}
		prev, ok := gdp[r.Year-1]
		if !ok {
			return gdpMissing(r.Year - 1)
		}
		r.Set(GDP, cur)
		r.Set(GDPPrev, prev)
		return nil
	})
}

func gdpMissing(year int) error {
	return apperrors.NewLookupError(
		fmt.Sprintf("no GDP value for %d", year),
		ErrGDPYearMissing,
	).WithContext("year", year)
}
