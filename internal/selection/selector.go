// Package selection builds the estimation sample of each model and records
// how many firm-years every filter removes.
//
// Filters run in a fixed order and each one sees only the rows that survived
// the previous ones, so the counts are sequential attrition: the final sample
// size always equals the initial size less the sum of the removals.
package selection

import (
	"fmt"
	"log/slog"
	"math"

	"stickycost/internal/models"
	"stickycost/internal/panel"
)

// Ledger row labels as printed in the published tables.
const (
	LabelInitialFormat  = "Alle årsregnskaper %d-%d"
	LabelIndustries     = "Ekskludert de nevnte bransjene"
	LabelNoPriorYear    = "Ingen årsregnskap det foregående året"
	LabelNoPriorTwo     = "Ingen årsregnskap de to foregående årene"
	LabelSeparator      = ""
	LabelNonPositive    = "Ikke-positiv verdi for regnskapsposter"
	LabelFinal          = "Endelig utvalg for analyser"
	MissingIndustryCode = "MISSING"
)

// DefaultExcludedIndustries returns the NACE sections left out of the study:
// real estate (L), finance and insurance (K), public administration (O),
// electricity (D), water and waste (E), holding companies (0) and firms with
// no industry code.
func DefaultExcludedIndustries() []string {
	return []string{"L", "K", "O", "D", "E", "0", MissingIndustryCode}
}

// Options configures a Selector.
type Options struct {
	FirstYear          int
	LastYear           int
	CostLabel          string // heading of the cost-specific rows, e.g. "Varekostnader"
	ExcludedIndustries []string
}

// Selector applies the sample filters of a model.
type Selector struct {
	opts     Options
	excluded map[string]bool
	logger   *slog.Logger
}

// NewSelector returns a selector. Nil ExcludedIndustries selects the
// defaults; a nil logger uses the default logger.
func NewSelector(opts Options, logger *slog.Logger) *Selector {
	if opts.ExcludedIndustries == nil {
		opts.ExcludedIndustries = DefaultExcludedIndustries()
	}
	if logger == nil {
		logger = slog.Default()
	}
	excluded := make(map[string]bool, len(opts.ExcludedIndustries))
	for _, code := range opts.ExcludedIndustries {
		excluded[code] = true
	}
	return &Selector{
		opts:     opts,
		excluded: excluded,
		logger:   logger.With(slog.String("component", "sample_selector")),
	}
}

// InitialLabel returns the label of the initial sample row.
func (s *Selector) InitialLabel() string {
	return fmt.Sprintf(LabelInitialFormat, s.opts.FirstYear, s.opts.LastYear)
}

// CostHeading returns the label of the heading row above the cost-specific
// filters.
func (s *Selector) CostHeading() string {
	return s.opts.CostLabel + ":"
}

// Select returns the rows of records that survive every filter of spec and
// the ledger column describing the attrition. The input is not modified.
//
// The steps are:
//  1. keep firm-years within [FirstYear, LastYear] and count them
//  2. drop excluded industries
//  3. drop rows without a prior-year record, then (for two-lag models)
//     rows without a second-prior-year record
//  4. drop rows where any log field is non-positive or missing
func (s *Selector) Select(records []panel.Record, spec *models.Spec) ([]panel.Record, LedgerColumn) {
	col := LedgerColumn{Model: spec.Label()}
	count := func(label string, kind EntryKind, n int) {
		col.Entries = append(col.Entries, Entry{Label: label, Kind: kind, Count: n, HasCount: true})
	}
	blank := func(label string, kind EntryKind) {
		col.Entries = append(col.Entries, Entry{Label: label, Kind: kind})
	}

	rows := filter(records, func(r *panel.Record) bool {
		return r.Year >= s.opts.FirstYear && r.Year <= s.opts.LastYear
	})
	count(s.InitialLabel(), EntryInitial, len(rows))

	var removed int
	rows, removed = drop(rows, func(r *panel.Record) bool { return s.excluded[r.Industry] })
	count(LabelIndustries, EntryRemoved, removed)

	rows, removed = drop(rows, func(r *panel.Record) bool { return !r.HasLag(panel.Sales, 1) })
	count(LabelNoPriorYear, EntryRemoved, removed)

	if spec.PriorPeriods() >= 2 {
		rows, removed = drop(rows, func(r *panel.Record) bool { return !r.HasLag(panel.Sales, 2) })
		count(LabelNoPriorTwo, EntryRemoved, removed)
	} else {
		blank(LabelNoPriorTwo, EntryRemoved)
	}

	blank(LabelSeparator, EntryHeading)
	blank(s.CostHeading(), EntryHeading)

	logFields := spec.LogFields()
	rows, removed = drop(rows, func(r *panel.Record) bool {
		for _, o := range logFields {
			v := o.Value(r)
			if math.IsNaN(v) || v <= 0 {
				return true
			}
		}
		return false
	})
	count(LabelNonPositive, EntryRemoved, removed)

	count(LabelFinal, EntryFinal, len(rows))

	s.logger.Info("Selected sample",
		slog.String("model", spec.Label()),
		slog.Int("initial", col.Initial()),
		slog.Int("removed", col.Removed()),
		slog.Int("final", col.Final()),
	)
	return rows, col
}

func filter(records []panel.Record, keep func(*panel.Record) bool) []panel.Record {
	out := make([]panel.Record, 0, len(records))
	for i := range records {
		if keep(&records[i]) {
			out = append(out, records[i])
		}
	}
	return out
}

func drop(records []panel.Record, remove func(*panel.Record) bool) ([]panel.Record, int) {
	out := filter(records, func(r *panel.Record) bool { return !remove(r) })
	return out, len(records) - len(out)
}
