package refdata

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "stickycost/internal/errors"
)

const cpiFixture = `"03013: Consumer Price Index, by consumption group, month and contents"

"consumption group";"month";"Consumer Price Index (2015=100)"
"CPI Total index";"2015M01";98.6
"CPI Total index";"2015M12";101.0
"CPI Total index";"2019M12";111.3
"CPI Total index";"2022M09";..
`

func TestParseCPI(t *testing.T) {
	index, err := ParseCPI(strings.NewReader(cpiFixture))
	require.NoError(t, err)

	assert.Len(t, index, 3)
	assert.Equal(t, 98.6, index[201501])
	assert.Equal(t, 101.0, index[201512])
	assert.Equal(t, 111.3, index[201912])
	_, ok := index[202209]
	assert.False(t, ok, "unpublished periods are omitted")
}

func TestParseCPI_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "no value column", input: "a\n\n\"month\";\"other\"\n\"2015M01\";1\n"},
		{name: "bad period", input: "a\n\n\"month\";\"Consumer Price Index (2015=100)\"\n\"2015-01\";1\n"},
		{name: "bad value", input: "a\n\n\"month\";\"Consumer Price Index (2015=100)\"\n\"2015M01\";x\n"},
		{name: "no values", input: "a\n\n\"month\";\"Consumer Price Index (2015=100)\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCPI(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
		})
	}
}

func TestParseGDP(t *testing.T) {
	series, err := ParseGDP(strings.NewReader("2006;2007;2008\n2500000;2600000,5;2610000\n"))
	require.NoError(t, err)

	assert.Equal(t, 2500000.0, series[2006])
	assert.Equal(t, 2600000.5, series[2007])
	assert.Equal(t, 2610000.0, series[2008])
}

func TestParseGDP_Errors(t *testing.T) {
	for name, input := range map[string]string{
		"header only":     "2006;2007\n",
		"length mismatch": "2006;2007\n1\n",
		"bad year":        "x;2007\n1;2\n",
		"bad value":       "2006;2007\n1;y\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseGDP(strings.NewReader(input))
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
		})
	}
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	cpiPath := filepath.Join(dir, "cpi.csv")
	gdpPath := filepath.Join(dir, "gdp.csv")
	require.NoError(t, os.WriteFile(cpiPath, []byte(cpiFixture), 0o644))
	require.NoError(t, os.WriteFile(gdpPath, []byte("2019\n3\n"), 0o644))

	index, err := LoadCPI(cpiPath)
	require.NoError(t, err)
	assert.Len(t, index, 3)

	series, err := LoadGDP(gdpPath)
	require.NoError(t, err)
	assert.Equal(t, 3.0, series[2019])

	_, err = LoadCPI(filepath.Join(dir, "missing.csv"))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}
