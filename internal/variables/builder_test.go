package variables

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "stickycost/internal/errors"
	"stickycost/internal/panel"
)

func record(org string, sales, salesPrev float64) panel.Record {
	r := panel.Record{OrgNr: org, Year: 2019, Industry: "C"}
	r.Set(panel.Sales, sales)
	r.SetLag(panel.Sales, 1, salesPrev)
	return r
}

func TestBuild_LogGrowthAndDecline(t *testing.T) {
	records := []panel.Record{
		record("A", 110, 100),
		record("B", 90, 100),
		record("C", 100, 0),
	}
	formulas := []Formula{
		Define("lnSalg", LogRatio, Field(panel.Sales), Lag(panel.Sales, 1)),
		Define("DlnSalg", Decline, Var("lnSalg")),
	}

	frame, err := NewBuilder(nil).Build(records, formulas)
	require.NoError(t, err)

	assert.Equal(t, 3, frame.Len())
	assert.Equal(t, []string{"lnSalg", "DlnSalg"}, frame.Names())

	ln, ok := frame.Column("lnSalg")
	require.True(t, ok)
	assert.InDelta(t, math.Log(1.1), ln[0], 1e-12)
	assert.InDelta(t, math.Log(0.9), ln[1], 1e-12)
	assert.True(t, math.IsNaN(ln[2]), "non-positive denominator is undefined")

	d, _ := frame.Column("DlnSalg")
	assert.Equal(t, 0.0, d[0], "growth is masked to zero")
	assert.InDelta(t, math.Log(0.9), d[1], 1e-12)
	assert.True(t, math.IsNaN(d[2]))

	assert.Equal(t, []string{"A", "B", "C"}, frame.EntityIDs())
	assert.Equal(t, []int{2019, 2019, 2019}, frame.Years())
	assert.Equal(t, []string{"C", "C", "C"}, frame.Industries())
}

func TestBuild_DoesNotMutateRecords(t *testing.T) {
	records := []panel.Record{record("A", 110, 100)}
	_, err := NewBuilder(nil).Build(records, []Formula{
		Define("lnSalg", LogRatio, Field(panel.Sales), Lag(panel.Sales, 1)),
	})
	require.NoError(t, err)

	assert.Equal(t, 110.0, records[0].Value(panel.Sales))
	assert.Equal(t, 100.0, records[0].Lagged(panel.Sales, 1))
}

func TestOps(t *testing.T) {
	tests := []struct {
		op   Op
		args []float64
		want float64
	}{
		{GrowthRate, []float64{105, 100}, 0.05},
		{Decline, []float64{0}, 0},
		{Decline, []float64{-0.2}, -0.2},
		{IndicatorPositive, []float64{0.3}, 1},
		{IndicatorPositive, []float64{0}, 0},
		{IndicatorNegative, []float64{-0.3}, 1},
		{IndicatorNegative, []float64{0.3}, 0},
		{Product, []float64{2, -3}, -6},
		{LogRatio, []float64{1, 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.op.apply(tt.args), 1e-12)
		})
	}

	assert.True(t, math.IsNaN(LogRatio.apply([]float64{-1, 1})))
	assert.True(t, math.IsNaN(LogRatio.apply([]float64{1, math.NaN()})))
}

func TestValidate(t *testing.T) {
	ln := Define("lnSalg", LogRatio, Field(panel.Sales), Lag(panel.Sales, 1))

	tests := []struct {
		name     string
		formulas []Formula
		wantErr  string
	}{
		{name: "valid", formulas: []Formula{ln, Define("D", Decline, Var("lnSalg"))}},
		{name: "empty name", formulas: []Formula{Define("", Decline, Field(panel.Sales))}, wantErr: "no name"},
		{name: "duplicate", formulas: []Formula{ln, ln}, wantErr: "defined twice"},
		{name: "shadows field", formulas: []Formula{Define("Salg", Decline, Field(panel.Sales))}, wantErr: "shadows"},
		{name: "unknown op", formulas: []Formula{Define("x", Op(99), Field(panel.Sales))}, wantErr: "unknown operation"},
		{name: "arity", formulas: []Formula{Define("x", Product, Field(panel.Sales))}, wantErr: "takes 2 operands"},
		{name: "lag out of range", formulas: []Formula{Define("x", Decline, Lag(panel.Sales, 3))}, wantErr: "out of range"},
		{name: "forward reference", formulas: []Formula{Define("D", Decline, Var("lnSalg")), ln}, wantErr: "not defined before use"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.formulas)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBuild_InvalidFormulas(t *testing.T) {
	_, err := NewBuilder(nil).Build(nil, []Formula{Define("x", Decline, Var("y"))})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestOperand(t *testing.T) {
	assert.Equal(t, "Salg_prev_prev", Lag(panel.Sales, 2).String())
	assert.Equal(t, "lnSalg", Var("lnSalg").String())

	f, lag := Lag(panel.GoodsCosts, 1).FieldRef()
	assert.Equal(t, panel.GoodsCosts, f)
	assert.Equal(t, 1, lag)
	assert.False(t, Var("x").IsField())
}
