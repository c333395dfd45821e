package selection

import (
	"fmt"
)

// EntryKind classifies a ledger row.
type EntryKind int

const (
	// EntryInitial is the sample size before any filter.
	EntryInitial EntryKind = iota
	// EntryRemoved counts rows removed by one filter step.
	EntryRemoved
	// EntryHeading is a layout row without a count.
	EntryHeading
	// EntryFinal is the sample size after every filter.
	EntryFinal
)

// Entry is one row of a ledger column. HasCount is false for steps that do
// not apply to the model and for layout rows; such rows render blank.
type Entry struct {
	Label    string
	Kind     EntryKind
	Count    int
	HasCount bool
}

// LedgerColumn is the attrition record of one model.
type LedgerColumn struct {
	Model   string
	Entries []Entry
}

func (c LedgerColumn) sum(kind EntryKind) int {
	n := 0
	for _, e := range c.Entries {
		if e.Kind == kind && e.HasCount {
			n += e.Count
		}
	}
	return n
}

// Initial returns the sample size before filtering.
func (c LedgerColumn) Initial() int { return c.sum(EntryInitial) }

// Removed returns the total number of rows removed by all filters.
func (c LedgerColumn) Removed() int { return c.sum(EntryRemoved) }

// Final returns the sample size after filtering.
func (c LedgerColumn) Final() int { return c.sum(EntryFinal) }

// Lookup returns the entry with the given label.
func (c LedgerColumn) Lookup(label string) (Entry, bool) {
	for _, e := range c.Entries {
		if e.Label == label {
			return e, true
		}
	}
	return Entry{}, false
}

// Check verifies that no count is negative and that the final size equals
// the initial size less every removal.
func (c LedgerColumn) Check() error {
	for _, e := range c.Entries {
		if e.HasCount && e.Count < 0 {
			return fmt.Errorf("model %q: negative count %d for %q", c.Model, e.Count, e.Label)
		}
	}
	if c.Final() != c.Initial()-c.Removed() {
		return fmt.Errorf("model %q: final %d != initial %d - removed %d", c.Model, c.Final(), c.Initial(), c.Removed())
	}
	return nil
}

// Ledger collects one column per model in run order. The zero value is an
// empty ledger; Append returns a new ledger and leaves the receiver as is.
type Ledger struct {
	columns []LedgerColumn
}

// Append returns a ledger with col added as its last column.
func (l Ledger) Append(col LedgerColumn) (Ledger, error) {
	for _, c := range l.columns {
		if c.Model == col.Model {
			return l, fmt.Errorf("ledger already has a column for model %q", col.Model)
		}
	}
	cols := make([]LedgerColumn, len(l.columns), len(l.columns)+1)
	copy(cols, l.columns)
	col.Entries = append([]Entry(nil), col.Entries...)
	return Ledger{columns: append(cols, col)}, nil
}

// Columns returns the model columns in run order.
func (l Ledger) Columns() []LedgerColumn {
	out := make([]LedgerColumn, len(l.columns))
	copy(out, l.columns)
	return out
}

// Labels returns the row labels of all columns in first-seen order.
func (l Ledger) Labels() []string {
	var labels []string
	seen := make(map[string]bool)
	for _, c := range l.columns {
		for _, e := range c.Entries {
			if !seen[e.Label] {
				seen[e.Label] = true
				labels = append(labels, e.Label)
			}
		}
	}
	return labels
}
