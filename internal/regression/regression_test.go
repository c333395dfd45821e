package regression

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "stickycost/internal/errors"
)

type table struct {
	cols       map[string][]float64
	entities   []string
	years      []int
	industries []string
}

func (t *table) Len() int { return len(t.entities) }
func (t *table) Column(name string) ([]float64, bool) {
	c, ok := t.cols[name]
	return c, ok
}
func (t *table) EntityIDs() []string  { return t.entities }
func (t *table) Years() []int         { return t.years }
func (t *table) Industries() []string { return t.industries }

func fixture() *table {
	return &table{
		cols: map[string][]float64{
			"x": {0.1, -0.2, 0.3, 0.05, -0.15, 0.25, 0.0, 0.4},
			"y": {0.12, -0.1, 0.35, 0.02, -0.2, 0.3, 0.05, 0.33},
		},
		entities:   []string{"A", "A", "B", "B", "C", "C", "D", "D"},
		years:      []int{2008, 2009, 2008, 2009, 2008, 2009, 2008, 2009},
		industries: []string{"C", "C", "C", "C", "G", "G", "G", "G"},
	}
}

func TestFit_ClusterRobust(t *testing.T) {
	res, err := NewEngine(nil).Fit(context.Background(), fixture(), Request{Dependent: "y", Regressors: []string{"x"}})
	require.NoError(t, err)

	assert.Equal(t, 8, res.Observations)
	assert.Equal(t, 4, res.Clusters)
	assert.InDelta(t, 0.022019704433497572, res.Intercept.Estimate, 1e-12)
	assert.InDelta(t, 0.02414350660282577, res.Intercept.StdErr, 1e-12)
	assert.InDelta(t, 0.3617506990658307, res.Intercept.PValue, 1e-9)

	x, ok := res.Coefficient("x")
	require.True(t, ok)
	assert.InDelta(t, 0.9251231527093593, x.Estimate, 1e-12)
	assert.InDelta(t, 0.16340895937685235, x.StdErr, 1e-12)
	assert.InDelta(t, 5.661397981097525, x.Z, 1e-9)
	assert.InDelta(t, 1.5014475851870128e-08, x.PValue, 1e-12)
	assert.InDelta(t, 0.9230784209568673, res.RSquared, 1e-12)

	assert.False(t, res.YearFixedEffects)
	assert.Empty(t, res.YearDummies)
}

func TestFit_FixedEffects(t *testing.T) {
	res, err := NewEngine(nil).Fit(context.Background(), fixture(), Request{
		Dependent:            "y",
		Regressors:           []string{"x"},
		YearFixedEffects:     true,
		IndustryFixedEffects: true,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"dy2008"}, res.YearDummies)
	assert.Equal(t, []string{"diC"}, res.IndustryDummies)
	assert.True(t, res.YearFixedEffects)
	assert.True(t, res.IndustryFixedEffects)
	assert.Len(t, res.Coefficients, 1, "dummies are not reported as coefficients")
	assert.Equal(t, "x", res.Coefficients[0].Name)
}

func TestFit_ExactFit(t *testing.T) {
	data := &table{
		cols: map[string][]float64{
			"x": {1, 2, 3, 4},
			"y": {3, 5, 7, 9},
		},
		entities: []string{"A", "B", "C", "D"},
		years:    []int{1, 1, 1, 1},
	}
	res, err := NewEngine(nil).Fit(context.Background(), data, Request{Dependent: "y", Regressors: []string{"x"}})
	require.NoError(t, err)

	assert.InDelta(t, 1.0, res.Intercept.Estimate, 1e-9)
	c, _ := res.Coefficient("x")
	assert.InDelta(t, 2.0, c.Estimate, 1e-9)
	assert.InDelta(t, 1.0, res.RSquared, 1e-12)
}

func TestFit_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*table) Request
		target error
		kind   apperrors.ErrorType
	}{
		{
			name: "collinear regressor",
			mutate: func(tb *table) Request {
				x := tb.cols["x"]
				twice := make([]float64, len(x))
				for i, v := range x {
					twice[i] = 2 * v
				}
				tb.cols["x2"] = twice
				return Request{Dependent: "y", Regressors: []string{"x", "x2"}}
			},
			target: ErrRankDeficient,
			kind:   apperrors.ErrTypeStatistical,
		},
		{
			name: "industry collinear with firm-constant regressor",
			mutate: func(tb *table) Request {
				tb.cols["ind"] = []float64{1, 1, 1, 1, 0, 0, 0, 0}
				return Request{Dependent: "y", Regressors: []string{"x", "ind"}, IndustryFixedEffects: true}
			},
			target: ErrRankDeficient,
			kind:   apperrors.ErrTypeStatistical,
		},
		{
			name: "single cluster",
			mutate: func(tb *table) Request {
				for i := range tb.entities {
					tb.entities[i] = "A"
				}
				return Request{Dependent: "y", Regressors: []string{"x"}}
			},
			target: ErrTooFewClusters,
			kind:   apperrors.ErrTypeStatistical,
		},
		{
			name: "non-finite regressor",
			mutate: func(tb *table) Request {
				tb.cols["x"][3] = math.NaN()
				return Request{Dependent: "y", Regressors: []string{"x"}}
			},
			target: ErrNonFinite,
			kind:   apperrors.ErrTypeStatistical,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := fixture()
			req := tt.mutate(tb)
			_, err := NewEngine(nil).Fit(context.Background(), tb, req)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
			assert.True(t, apperrors.IsType(err, tt.kind))
		})
	}
}

func TestFit_TooFewObservations(t *testing.T) {
	data := &table{
		cols:     map[string][]float64{"x": {1, 2}, "y": {1, 3}},
		entities: []string{"A", "B"},
		years:    []int{1, 2},
	}
	_, err := NewEngine(nil).Fit(context.Background(), data, Request{Dependent: "y", Regressors: []string{"x"}})
	assert.ErrorIs(t, err, ErrTooFewObservations)
}

func TestFit_UnknownColumn(t *testing.T) {
	_, err := NewEngine(nil).Fit(context.Background(), fixture(), Request{Dependent: "y", Regressors: []string{"z"}})
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))

	_, err = NewEngine(nil).Fit(context.Background(), fixture(), Request{Dependent: "w", Regressors: []string{"x"}})
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestDummies(t *testing.T) {
	names, cols := Dummies([]string{"G", "C", "G", "A"}, "di")
	assert.Equal(t, []string{"diA", "diC"}, names)
	assert.Equal(t, [][]float64{{0, 0, 0, 1}, {0, 1, 0, 0}}, cols)

	names, cols = Dummies([]string{"C", "C"}, "di")
	assert.Empty(t, names)
	assert.Empty(t, cols)
}

func TestYearDummies_CountAndOrder(t *testing.T) {
	years := []int{2010, 2008, 2009, 2010, 2011, 2008}
	names, cols := YearDummies(years)

	assert.Equal(t, []string{"dy2008", "dy2009", "dy2010"}, names, "distinct years minus the last")
	assert.Len(t, cols, 3)
	assert.Equal(t, []float64{0, 1, 0, 0, 0, 1}, cols[0])
}
