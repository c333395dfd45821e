package testutil

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"stickycost/internal/panel"
)

// FirmHistory describes one firm reporting in consecutive years starting at
// FirstYear. Costs apply to both cost fields; Assets and Payroll default to
// Sales when nil.
type FirmHistory struct {
	OrgNr     string
	Industry  string
	FirstYear int
	Sales     []float64
	Costs     []float64
	Assets    []float64
	Payroll   []float64
}

// Firm returns a history where costs are 60% of sales, assets twice sales
// and payroll a fifth of sales.
func Firm(orgNr, industry string, firstYear int, sales ...float64) FirmHistory {
	h := FirmHistory{OrgNr: orgNr, Industry: industry, FirstYear: firstYear, Sales: sales}
	for _, s := range sales {
		h.Costs = append(h.Costs, 0.6*s)
		h.Assets = append(h.Assets, 2*s)
		h.Payroll = append(h.Payroll, 0.2*s)
	}
	return h
}

// Records expands histories into unlagged firm-year records with nominal
// copies equal to the values and closing dates on 31 December.
func Records(firms ...FirmHistory) []panel.Record {
	var out []panel.Record
	for _, f := range firms {
		for i, sales := range f.Sales {
			year := f.FirstYear + i
			r := panel.Record{
				OrgNr:       f.OrgNr,
				Year:        year,
				ClosingDate: fmt.Sprintf("%d-12-31", year),
				Industry:    f.Industry,
				LegalForm:   "AS",
			}
			r.Set(panel.Sales, sales)
			r.Set(panel.OperatingCosts, at(f.Costs, i, sales))
			r.Set(panel.GoodsCosts, at(f.Costs, i, sales))
			r.Set(panel.Assets, at(f.Assets, i, sales))
			r.Set(panel.Payroll, at(f.Payroll, i, sales))
			r.SalesNominal = sales
			r.PayrollNominal = at(f.Payroll, i, sales)
			r.AssetsNominal = at(f.Assets, i, sales)
			out = append(out, r)
		}
	}
	return out
}

func at(values []float64, i int, fallback float64) float64 {
	if i < len(values) {
		return values[i]
	}
	return fallback
}

// GDP returns a series over [from, to] whose yearly growth varies between
// 1% and 4%.
func GDP(from, to int) panel.GDPSeries {
	series := make(panel.GDPSeries)
	v := 3_000_000.0
	for y := from; y <= to; y++ {
		if y > from {
			v *= 1 + 0.01*float64(y%4+1)
		}
		series[y] = v
	}
	return series
}

// BuildPanel turns histories into a lagged panel with GDP attached, keeping
// years from fromYear onwards. It fails the test on any error.
func BuildPanel(t testing.TB, fromYear int, firms ...FirmHistory) *panel.Panel {
	t.Helper()

	raw, err := panel.New(Records(firms...))
	if err != nil {
		t.Fatalf("build panel: %v", err)
	}
	years := raw.Years()
	if len(years) == 0 {
		return raw
	}

	lagged, err := panel.AttachLags(raw, panel.DefaultLagSpec(), fromYear)
	if err != nil {
		t.Fatalf("attach lags: %v", err)
	}
	if err := panel.AttachGDP(lagged, GDP(years[0]-1, years[len(years)-1])); err != nil {
		t.Fatalf("attach gdp: %v", err)
	}
	return lagged
}

// RandomFirms returns n firm histories over years consecutive years from
// firstYear with log-normal sales growth and cost elasticities below one.
// Industries rotate through C, F and G. The result is deterministic for a
// seed.
func RandomFirms(seed int64, n, firstYear, years int) []FirmHistory {
	rng := rand.New(rand.NewSource(seed))
	industries := []string{"C", "F", "G"}

	firms := make([]FirmHistory, n)
	for i := range firms {
		h := FirmHistory{
			OrgNr:     fmt.Sprintf("9%08d", i+1),
			Industry:  industries[i%len(industries)],
			FirstYear: firstYear,
		}
		sales := 1e7 * math.Exp(rng.NormFloat64())
		cost := 0.6 * sales
		for y := 0; y < years; y++ {
			if y > 0 {
				g := 0.15 * rng.NormFloat64()
				sales *= math.Exp(g)
				slope := 0.8
				if g < 0 {
					slope = 0.6
				}
				cost *= math.Exp(slope*g + 0.05*rng.NormFloat64())
			}
			h.Sales = append(h.Sales, sales)
			h.Costs = append(h.Costs, cost)
			h.Assets = append(h.Assets, sales*(1.5+rng.Float64()))
			h.Payroll = append(h.Payroll, sales*(0.15+0.1*rng.Float64()))
		}
		firms[i] = h
	}
	return firms
}
