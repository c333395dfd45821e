package panel

import "fmt"

// Field identifies a canonical numeric field of a firm-year record.
type Field int

const (
	Sales          Field = iota // Salg
	OperatingCosts              // Driftskostnader
	GoodsCosts                  // Varekostnader
	Assets                      // Eiendeler
	Payroll                     // Lonnskostnader
	Payables                    // Leverandorgjeld
	Inventories                 // Varelager
	Receivables                 // Kundefordringer
	GDP                         // bnp, current year
	GDPPrev                     // bnp_prev, prior year
	numFields
)

var fieldNames = [numFields]string{
	Sales:          "Salg",
	OperatingCosts: "Driftskostnader",
	GoodsCosts:     "Varekostnader",
	Assets:         "Eiendeler",
	Payroll:        "Lonnskostnader",
	Payables:       "Leverandorgjeld",
	Inventories:    "Varelager",
	Receivables:    "Kundefordringer",
	GDP:            "bnp",
	GDPPrev:        "bnp_prev",
}

// String returns the column name used in the processed panel and in
// published tables.
func (f Field) String() string {
	if f < 0 || f >= numFields {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return fieldNames[f]
}

// Valid reports whether f is a known field.
func (f Field) Valid() bool {
	return f >= 0 && f < numFields
}

// ParseField returns the field with the given column name.
func ParseField(name string) (Field, error) {
	for f, n := range fieldNames {
		if n == name {
			return Field(f), nil
		}
	}
	return 0, fmt.Errorf("unknown field %q", name)
}

// Fields returns every canonical field in declaration order.
func Fields() []Field {
	out := make([]Field, numFields)
	for i := range out {
		out[i] = Field(i)
	}
	return out
}

// MonetaryFields returns the nominal accounting fields that are deflated
// by the consumer price index.
func MonetaryFields() []Field {
	return []Field{
		Sales,
		OperatingCosts,
		GoodsCosts,
		Assets,
		Payroll,
		Payables,
		Inventories,
		Receivables,
	}
}

// LagColumnName returns the processed-panel column holding f lagged by lag
// years: "Salg", "Salg_prev", "Salg_prev_prev".
func LagColumnName(f Field, lag int) string {
	switch lag {
	case 0:
		return f.String()
	case 1:
		return f.String() + "_prev"
	case 2:
		return f.String() + "_prev_prev"
	default:
		return fmt.Sprintf("%s_lag%d", f, lag)
	}
}
