// Package variables derives the regression variables of a model from the
// raw and lagged fields of selected firm-years.
//
// Every derived variable is an explicit formula record: an operation applied
// to operands that are either panel fields (optionally lagged) or variables
// derived earlier in the same list. Formulas are validated before any row is
// touched; evaluation is per row, never mutates the input records, and
// yields NaN where a value is undefined (for example the log of a
// non-positive ratio). Sample selection removes such rows before the
// builder runs, so a NaN in a built frame indicates an inconsistent model.
package variables

import (
	"fmt"
	"math"

	"stickycost/internal/panel"
)

// Op is a derivation operation.
type Op int

const (
	// LogRatio is ln(a/b); undefined unless a > 0 and b > 0.
	LogRatio Op = iota + 1
	// GrowthRate is a/b - 1.
	GrowthRate
	// Decline is x when x < 0, else 0.
	Decline
	// IndicatorPositive is 1 when x > 0, else 0.
	IndicatorPositive
	// IndicatorNegative is 1 when x < 0, else 0.
	IndicatorNegative
	// Product is a*b.
	Product
)

var opNames = map[Op]string{
	LogRatio:          "LogRatio",
	GrowthRate:        "GrowthRate",
	Decline:           "Decline",
	IndicatorPositive: "IndicatorPositive",
	IndicatorNegative: "IndicatorNegative",
	Product:           "Product",
}

func (o Op) String() string {
	if n, ok := opNames[o]; ok {
		return n
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// arity returns the number of operands o takes, or 0 for unknown ops.
func (o Op) arity() int {
	switch o {
	case LogRatio, GrowthRate, Product:
		return 2
	case Decline, IndicatorPositive, IndicatorNegative:
		return 1
	default:
		return 0
	}
}

func (o Op) apply(args []float64) float64 {
	switch o {
	case LogRatio:
		a, b := args[0], args[1]
		if !(a > 0) || !(b > 0) {
			return math.NaN()
		}
		return math.Log(a / b)
	case GrowthRate:
		return args[0]/args[1] - 1
	case Decline:
		x := args[0]
		if math.IsNaN(x) {
			return x
		}
		if x < 0 {
			return x
		}
		return 0
	case IndicatorPositive:
		return indicator(args[0], args[0] > 0)
	case IndicatorNegative:
		return indicator(args[0], args[0] < 0)
	case Product:
		return args[0] * args[1]
	}
	return math.NaN()
}

func indicator(x float64, cond bool) float64 {
	if math.IsNaN(x) {
		return x
	}
	if cond {
		return 1
	}
	return 0
}

// Operand is an input of a formula: a panel field at a lag, or a derived
// variable by name.
type Operand struct {
	field   panel.Field
	lag     int
	derived string
}

// Field refers to the current-year value of f.
func Field(f panel.Field) Operand {
	return Operand{field: f}
}

// Lag refers to f lagged by lag years.
func Lag(f panel.Field, lag int) Operand {
	return Operand{field: f, lag: lag}
}

// Var refers to a variable derived earlier in the same formula list.
func Var(name string) Operand {
	return Operand{derived: name}
}

// IsField reports whether o reads a panel field.
func (o Operand) IsField() bool {
	return o.derived == ""
}

// FieldRef returns the field and lag o reads; only meaningful if IsField.
func (o Operand) FieldRef() (panel.Field, int) {
	return o.field, o.lag
}

// String returns the processed-panel column name or the variable name.
func (o Operand) String() string {
	if o.IsField() {
		return panel.LagColumnName(o.field, o.lag)
	}
	return o.derived
}

// Value reads a field operand from a record. Derived operands read NaN.
func (o Operand) Value(r *panel.Record) float64 {
	if !o.IsField() {
		return math.NaN()
	}
	return r.Lagged(o.field, o.lag)
}

// Formula defines one derived variable.
type Formula struct {
	Name string
	Op   Op
	Args []Operand
}

// Define returns a formula for name.
func Define(name string, op Op, args ...Operand) Formula {
	return Formula{Name: name, Op: op, Args: append([]Operand(nil), args...)}
}

// Validate checks a formula list: names are unique and non-empty, ops are
// known with the right number of operands, field operands are valid with a
// lag in [0, panel.MaxLag], and derived operands refer to a variable
// defined earlier in the list.
func Validate(formulas []Formula) error {
	defined := make(map[string]bool, len(formulas))
	for i, f := range formulas {
		if f.Name == "" {
			return fmt.Errorf("formula %d has no name", i)
		}
		if defined[f.Name] {
			return fmt.Errorf("variable %q is defined twice", f.Name)
		}
		if _, err := panel.ParseField(f.Name); err == nil {
			return fmt.Errorf("variable %q shadows a panel field", f.Name)
		}
		n := f.Op.arity()
		if n == 0 {
			return fmt.Errorf("variable %q: unknown operation %s", f.Name, f.Op)
		}
		if len(f.Args) != n {
			return fmt.Errorf("variable %q: %s takes %d operands, got %d", f.Name, f.Op, n, len(f.Args))
		}
		for _, a := range f.Args {
			if a.IsField() {
				if !a.field.Valid() {
					return fmt.Errorf("variable %q: invalid field %d", f.Name, int(a.field))
				}
				if a.lag < 0 || a.lag > panel.MaxLag {
					return fmt.Errorf("variable %q: lag %d out of range", f.Name, a.lag)
				}
				continue
			}
			if !defined[a.derived] {
				return fmt.Errorf("variable %q: operand %q is not defined before use", f.Name, a.derived)
			}
		}
		defined[f.Name] = true
	}
	return nil
}
