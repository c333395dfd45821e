// Package report turns fitted models and sample ledgers into the string
// tables that are published: coefficients rounded to a fixed number of
// decimals with a locale separator and significance stars, model columns
// side by side, and summary rows at the bottom.
package report

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Formatter renders numbers for the published tables.
type Formatter struct {
	Decimals  int
	Separator string // decimal separator, "," for Norwegian tables
}

// DefaultFormatter uses three decimals and a decimal comma.
func DefaultFormatter() Formatter {
	return Formatter{Decimals: 3, Separator: ","}
}

// Stars returns the significance marker for a p-value:
// p < 0.001 "****", p < 0.01 "***", p < 0.05 "**", p < 0.10 "*".
func Stars(p float64) string {
	switch {
	case math.IsNaN(p):
		return ""
	case p < 0.001:
		return "****"
	case p < 0.01:
		return "***"
	case p < 0.05:
		return "**"
	case p < 0.10:
		return "*"
	default:
		return ""
	}
}

// Number rounds v to f.Decimals places, pads with trailing zeros and uses
// the configured separator. Non-finite values render empty.
func (f Formatter) Number(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	s := decimal.NewFromFloat(v).StringFixed(int32(f.Decimals))
	if f.Separator != "" && f.Separator != "." {
		s = strings.Replace(s, ".", f.Separator, 1)
	}
	return s
}

// Coefficient renders an estimate with its significance stars, for example
// "0,100***".
func (f Formatter) Coefficient(v, p float64) string {
	s := f.Number(v)
	if s == "" {
		return s
	}
	return s + Stars(p)
}

// FormatCount renders an integer with a space as thousands separator.
func FormatCount(n int) string {
	digits := strconv.Itoa(n)
	sign := ""
	if n < 0 {
		sign, digits = "-", digits[1:]
	}
	if len(digits) <= 3 {
		return sign + digits
	}

	var b strings.Builder
	b.WriteString(sign)
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > len(sign) {
			b.WriteByte(' ')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// YesNo renders a fixed-effect flag.
func YesNo(on bool) string {
	if on {
		return "Ja"
	}
	return "Nei"
}
