package panel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "stickycost/internal/errors"
)

func TestAttachLags(t *testing.T) {
	a07 := rec("A", 2007, 80)
	a08 := rec("A", 2008, 100)
	a08.Set(GoodsCosts, 60)
	a09 := rec("A", 2009, 110)
	a09.Set(GoodsCosts, 65)
	a11 := rec("A", 2011, 130)
	b09 := rec("B", 2009, 50)

	p, err := New([]Record{a07, a08, a09, a11, b09})
	require.NoError(t, err)

	out, err := AttachLags(p, DefaultLagSpec(), 2008)
	require.NoError(t, err)

	// 2007 is a join source only.
	assert.Equal(t, 4, out.Len())
	_, ok := out.Lookup("A", 2007)
	assert.False(t, ok)

	r, ok := out.Lookup("A", 2009)
	require.True(t, ok)
	assert.Equal(t, 100.0, r.Lagged(Sales, 1))
	assert.Equal(t, 60.0, r.Lagged(GoodsCosts, 1))
	assert.Equal(t, 80.0, r.Lagged(Sales, 2))
	assert.True(t, math.IsNaN(r.Lagged(Assets, 1)), "fields outside the lag set stay missing")
	assert.True(t, math.IsNaN(r.Lagged(GoodsCosts, 2)), "only sales is carried two years back")

	r, _ = out.Lookup("A", 2008)
	assert.Equal(t, 80.0, r.Lagged(Sales, 1))
	assert.True(t, math.IsNaN(r.Lagged(Sales, 2)))

	// 2010 gap: 2011 has no prior-year record but a second-prior one.
	r, _ = out.Lookup("A", 2011)
	assert.True(t, math.IsNaN(r.Lagged(Sales, 1)))
	assert.Equal(t, 110.0, r.Lagged(Sales, 2))

	r, _ = out.Lookup("B", 2009)
	assert.True(t, math.IsNaN(r.Lagged(Sales, 1)))
	assert.True(t, math.IsNaN(r.Lagged(Sales, 2)))
}

func TestAttachLags_DoesNotModifyInput(t *testing.T) {
	p, err := New([]Record{rec("A", 2008, 1), rec("A", 2009, 2)})
	require.NoError(t, err)

	_, err = AttachLags(p, DefaultLagSpec(), 2008)
	require.NoError(t, err)

	r, _ := p.Lookup("A", 2009)
	assert.False(t, r.HasLag(Sales, 1))
}

func TestAttachLags_InvalidField(t *testing.T) {
	p, err := New(nil)
	require.NoError(t, err)

	_, err = AttachLags(p, LagSpec{Lag1: []Field{Field(42)}}, 2008)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestAttachGDP(t *testing.T) {
	p, err := New([]Record{rec("A", 2009, 1), rec("B", 2010, 1)})
	require.NoError(t, err)

	require.NoError(t, AttachGDP(p, GDPSeries{2008: 10, 2009: 11, 2010: 12}))

	r, _ := p.Lookup("A", 2009)
	assert.Equal(t, 11.0, r.Value(GDP))
	assert.Equal(t, 10.0, r.Value(GDPPrev))

	r, _ = p.Lookup("B", 2010)
	assert.Equal(t, 12.0, r.Value(GDP))
	assert.Equal(t, 11.0, r.Value(GDPPrev))
}

func TestAttachGDP_MissingYear(t *testing.T) {
	p, err := New([]Record{rec("A", 2009, 1)})
	require.NoError(t, err)

	err = AttachGDP(p, GDPSeries{2009: 11})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGDPYearMissing)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeLookup))
}
