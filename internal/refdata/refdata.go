// Package refdata parses the macroeconomic reference series published by
// Statistics Norway: the monthly consumer price index (table 03013) and the
// annual GDP series (table 09189).
package refdata

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"stickycost/internal/deflation"
	apperrors "stickycost/internal/errors"
	"stickycost/internal/panel"
)

const (
	// Separator is the delimiter of both reference files.
	Separator = ';'

	// cpiPreambleLines precede the header of an SSB table export.
	cpiPreambleLines = 2

	cpiPeriodColumn = "month"
	cpiValuePrefix  = "Consumer Price Index"
)

// ParseCPI reads an SSB table 03013 export into a price index keyed by
// yyyymm. Periods look like "2015M01". Periods without a published value
// ("..") are left out, so a later lookup for them fails loudly.
func ParseCPI(r io.Reader) (deflation.PriceIndex, error) {
	br := bufio.NewReader(r)
	for i := 0; i < cpiPreambleLines; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			return nil, apperrors.NewParsingError("CPI file ends inside its preamble", err)
		}
	}
	cr := newReader(br)

	header, err := cr.Read()
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read CPI header", err)
	}
	periodCol, valueCol := -1, -1
	for i, name := range header {
		name = strings.TrimSpace(name)
		switch {
		case name == cpiPeriodColumn:
			periodCol = i
		case strings.HasPrefix(name, cpiValuePrefix):
			valueCol = i
		}
	}
	if periodCol < 0 || valueCol < 0 {
		return nil, apperrors.NewParsingError(
			fmt.Sprintf("CPI header must contain %q and a %q column", cpiPeriodColumn, cpiValuePrefix), nil,
		)
	}

	index := make(deflation.PriceIndex)
	line := cpiPreambleLines + 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("failed to read CPI line %d", line), err)
		}
		if len(row) <= periodCol || len(row) <= valueCol {
			continue
		}

		key, err := parseMonth(row[periodCol])
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("CPI line %d", line), err)
		}
		raw := strings.TrimSpace(row[valueCol])
		if raw == "" || raw == ".." || raw == "." {
			continue
		}
		v, err := parseNumber(raw)
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("CPI line %d", line), err)
		}
		index[key] = v
	}

	if len(index) == 0 {
		return nil, apperrors.NewParsingError("CPI file has no values", nil)
	}
	return index, nil
}

// parseMonth turns "2015M01" into 201501.
func parseMonth(s string) (int, error) {
	s = strings.TrimSpace(s)
	year, month, ok := strings.Cut(s, "M")
	if !ok {
		return 0, fmt.Errorf("invalid period %q", s)
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return 0, fmt.Errorf("invalid period %q", s)
	}
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return 0, fmt.Errorf("invalid period %q", s)
	}
	return y*100 + m, nil
}

// ParseGDP reads the GDP file: a header row of years followed by one row of
// values.
func ParseGDP(r io.Reader) (panel.GDPSeries, error) {
	cr := newReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read GDP header", err)
	}
	values, err := cr.Read()
	if err != nil {
		return nil, apperrors.NewParsingError("GDP file has no value row", err)
	}
	if len(values) != len(header) {
		return nil, apperrors.NewParsingError(
			fmt.Sprintf("GDP file has %d years but %d values", len(header), len(values)), nil,
		)
	}

	series := make(panel.GDPSeries, len(header))
	for i, h := range header {
		year, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(h), "\ufeff"))
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("invalid GDP year %q", h), err)
		}
		v, err := parseNumber(values[i])
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("GDP value for %d", year), err)
		}
		series[year] = v
	}
	return series, nil
}

// LoadCPI opens and parses a CPI file.
func LoadCPI(path string) (deflation.PriceIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open CPI file", err).WithContext("path", path)
	}
	defer f.Close()
	return ParseCPI(f)
}

// LoadGDP opens and parses a GDP file.
func LoadGDP(path string) (panel.GDPSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open GDP file", err).WithContext("path", path)
	}
	defer f.Close()
	return ParseGDP(f)
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = Separator
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}

func parseNumber(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}
