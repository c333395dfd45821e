package panel

import "math"

// MaxLag is the deepest lag the panel carries.
const MaxLag = 2

// Key identifies a firm-year.
type Key struct {
	OrgNr string
	Year  int
}

// Record is one firm's financial statement for one accounting year.
//
// Field values are read through Value and Lagged. A lag that was never
// attached reads as NaN, so the zero Record has every lag missing.
type Record struct {
	OrgNr       string
	Year        int
	ClosingDate string // avslutningsdato, balance sheet date
	Industry    string // NACE level-1 section (Bransje)
	LegalForm   string // orgform

	// Nominal copies kept before deflation; thresholds use the raw scale.
	SalesNominal   float64
	PayrollNominal float64
	AssetsNominal  float64

	AssetsEUR   float64
	TurnoverEUR float64

	values [numFields]float64
	lags   [MaxLag][numFields]float64
	hasLag [MaxLag][numFields]bool
}

// Key returns the firm-year key of r.
func (r *Record) Key() Key {
	return Key{OrgNr: r.OrgNr, Year: r.Year}
}

// Value returns the current-year value of f.
func (r *Record) Value(f Field) float64 {
	return r.values[f]
}

// Set assigns the current-year value of f.
func (r *Record) Set(f Field, v float64) {
	r.values[f] = v
}

// Lagged returns f lagged by lag years; lag 0 is the current value.
// Missing lags and lags beyond MaxLag read as NaN.
func (r *Record) Lagged(f Field, lag int) float64 {
	if lag == 0 {
		return r.values[f]
	}
	if lag < 0 || lag > MaxLag || !r.hasLag[lag-1][f] {
		return math.NaN()
	}
	return r.lags[lag-1][f]
}

// SetLag attaches the value of f from lag years earlier. NaN clears it.
func (r *Record) SetLag(f Field, lag int, v float64) {
	if lag < 1 || lag > MaxLag {
		return
	}
	if math.IsNaN(v) {
		r.hasLag[lag-1][f] = false
		r.lags[lag-1][f] = 0
		return
	}
	r.lags[lag-1][f] = v
	r.hasLag[lag-1][f] = true
}

// HasLag reports whether f has a lag value at depth lag.
func (r *Record) HasLag(f Field, lag int) bool {
	if lag < 1 || lag > MaxLag {
		return false
	}
	return r.hasLag[lag-1][f]
}
