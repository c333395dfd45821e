// Package deflation converts nominal accounting values to real values with a
// monthly consumer price index.
//
// Each record is deflated with the index value of the month its financial
// year closed, so firms with non-calendar fiscal years use their own
// period's prices.
package deflation

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	apperrors "stickycost/internal/errors"
	"stickycost/internal/panel"
)

var (
	// ErrIndexNotFound is wrapped when the price index lacks a period.
	ErrIndexNotFound = errors.New("price index period not found")
	// ErrInvalidClosingDate is wrapped when a closing date has no yyyy-mm prefix.
	ErrInvalidClosingDate = errors.New("invalid closing date")
)

// PriceIndex maps a period key (yyyymm) to an index level.
type PriceIndex map[int]float64

// PeriodKey derives the yyyymm key from a closing date such as "2019-12-31".
func PeriodKey(closingDate string) (int, error) {
	s := strings.TrimSpace(closingDate)
	if len(s) < 7 || s[4] != '-' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClosingDate, closingDate)
	}
	year, err := strconv.Atoi(s[0:4])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClosingDate, closingDate)
	}
	month, err := strconv.Atoi(s[5:7])
	if err != nil || month < 1 || month > 12 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClosingDate, closingDate)
	}
	return year*100 + month, nil
}

// Deflator divides monetary fields by the price index of their period.
type Deflator struct {
	index  PriceIndex
	fields []panel.Field
	logger *slog.Logger
}

// NewDeflator returns a deflator for the given fields. A nil logger uses the
// default logger.
func NewDeflator(index PriceIndex, fields []panel.Field, logger *slog.Logger) *Deflator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Deflator{
		index:  index,
		fields: append([]panel.Field(nil), fields...),
		logger: logger.With(slog.String("component", "deflator")),
	}
}

// Factor returns the index level for a closing date.
func (d *Deflator) Factor(closingDate string) (float64, error) {
	key, err := PeriodKey(closingDate)
	if err != nil {
		return 0, apperrors.NewLookupError("cannot derive price index period", err).
			WithContext("closing_date", closingDate)
	}
	level, ok := d.index[key]
	if !ok {
		return 0, apperrors.NewLookupError(
			fmt.Sprintf("no price index value for period %d", key),
			ErrIndexNotFound,
		).WithContext("period", key)
	}
	if level == 0 {
		return 0, apperrors.NewLookupError(
			fmt.Sprintf("price index value for period %d is zero", key), nil,
		).WithContext("period", key)
	}
	return level, nil
}

// Deflate returns value divided by the index level of the closing date.
func (d *Deflator) Deflate(value float64, closingDate string) (float64, error) {
	level, err := d.Factor(closingDate)
	if err != nil {
		return 0, err
	}
	return value / level, nil
}

// Apply deflates every configured field of every record in place. Any
// record whose period is missing from the index aborts the whole run.
func (d *Deflator) Apply(p *panel.Panel) error {
	n := 0
	err := p.Update(func(r *panel.Record) error {
		level, err := d.Factor(r.ClosingDate)
		if err != nil {
			if ae, ok := err.(*apperrors.AppError); ok {
				ae.WithContext("orgnr", r.OrgNr).WithContext("year", r.Year)
			}
			return err
		}
		for _, f := range d.fields {
			r.Set(f, r.Value(f)/level)
		}
		n++
		return nil
	})
	if err != nil {
		return err
	}

	d.logger.Info("Deflated panel",
		slog.Int("records", n),
		slog.Int("fields", len(d.fields)),
	)
	return nil
}
