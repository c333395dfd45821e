// Package regression fits the cost stickiness models: ordinary least squares
// with year and industry fixed effects and standard errors clustered by firm.
//
// The design matrix is assembled explicitly from typed columns: an
// intercept, the model's regressors in order, then one dummy per year and
// per industry with the last category of each dropped as reference. A design
// without full column rank is an error; no column is ever dropped silently.
package regression

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/mat"

	apperrors "stickycost/internal/errors"
)

// InterceptName is the design column of ones.
const InterceptName = "Intercept"

// Data is the estimation sample: named numeric columns aligned with the
// entity, year and industry of every row.
type Data interface {
	Len() int
	Column(name string) ([]float64, bool)
	EntityIDs() []string
	Years() []int
	Industries() []string
}

// Request names the variables of one fit.
type Request struct {
	Dependent            string
	Regressors           []string
	YearFixedEffects     bool
	IndustryFixedEffects bool
}

// Design is an assembled regression problem.
type Design struct {
	X       *mat.Dense
	Y       *mat.VecDense
	Names   []string // column names of X
	Groups  []int    // cluster index of every row
	NGroups int

	YearDummies     []string
	IndustryDummies []string
}

// Dummies returns indicator columns for the distinct values, sorted, with the
// last value dropped as reference. Names are prefix+value.
func Dummies(values []string, prefix string) ([]string, [][]float64) {
	seen := make(map[string]bool)
	for _, v := range values {
		seen[v] = true
	}
	cats := make([]string, 0, len(seen))
	for c := range seen {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	if len(cats) <= 1 {
		return nil, nil
	}
	cats = cats[:len(cats)-1]

	names := make([]string, len(cats))
	cols := make([][]float64, len(cats))
	index := make(map[string]int, len(cats))
	for i, c := range cats {
		names[i] = prefix + c
		cols[i] = make([]float64, len(values))
		index[c] = i
	}
	for row, v := range values {
		if j, ok := index[v]; ok {
			cols[j][row] = 1
		}
	}
	return names, cols
}

// YearDummies returns year dummies named dy<year>, sorted numerically.
func YearDummies(years []int) ([]string, [][]float64) {
	// Padded so the string sort orders years numerically.
	padded := make([]string, len(years))
	for i, y := range years {
		padded[i] = fmt.Sprintf("%08d", y)
	}
	names, cols := Dummies(padded, "")
	for i, n := range names {
		y, _ := strconv.Atoi(n)
		names[i] = "dy" + strconv.Itoa(y)
	}
	return names, cols
}

// BuildDesign assembles X and y for req from data.
func BuildDesign(data Data, req Request) (*Design, error) {
	n := data.Len()

	y, ok := data.Column(req.Dependent)
	if !ok {
		return nil, apperrors.NewValidationError(fmt.Sprintf("dependent variable %q not in data", req.Dependent), nil)
	}

	names := []string{InterceptName}
	cols := [][]float64{ones(n)}
	for _, r := range req.Regressors {
		c, ok := data.Column(r)
		if !ok {
			return nil, apperrors.NewValidationError(fmt.Sprintf("regressor %q not in data", r), nil)
		}
		names = append(names, r)
		cols = append(cols, c)
	}

	d := &Design{}
	if req.YearFixedEffects {
		dn, dc := YearDummies(data.Years())
		d.YearDummies = dn
		names = append(names, dn...)
		cols = append(cols, dc...)
	}
	if req.IndustryFixedEffects {
		dn, dc := Dummies(data.Industries(), "di")
		d.IndustryDummies = dn
		names = append(names, dn...)
		cols = append(cols, dc...)
	}

	if err := checkFinite(req.Dependent, y); err != nil {
		return nil, err
	}
	for j, c := range cols {
		if err := checkFinite(names[j], c); err != nil {
			return nil, err
		}
	}

	d.Names = names
	d.Y = mat.NewVecDense(n, append([]float64(nil), y...))
	d.X = mat.NewDense(n, len(cols), nil)
	for j, c := range cols {
		for i, v := range c {
			d.X.Set(i, j, v)
		}
	}

	groupIndex := make(map[string]int)
	d.Groups = make([]int, n)
	for i, id := range data.EntityIDs() {
		g, ok := groupIndex[id]
		if !ok {
			g = len(groupIndex)
			groupIndex[id] = g
		}
		d.Groups[i] = g
	}
	d.NGroups = len(groupIndex)

	return d, nil
}

func ones(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}
	return out
}

func checkFinite(name string, col []float64) error {
	for i, v := range col {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return apperrors.NewStatisticalError(
				fmt.Sprintf("column %q has a non-finite value in row %d", name, i), ErrNonFinite,
			).WithContext("column", name)
		}
	}
	return nil
}
