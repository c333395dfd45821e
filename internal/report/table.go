package report

import (
	"fmt"

	"stickycost/internal/regression"
	"stickycost/internal/selection"
)

// Summary row labels. TrailerRows lists them in their final order.
const (
	RowConstant     = "Konstant"
	RowYearFE       = "År FE"
	RowIndustryFE   = "Bransje FE"
	RowRSquared     = "R2"
	RowObservations = "Antall observasjoner"
)

// TrailerRows are moved to the bottom of a finalized table in this order.
var TrailerRows = []string{RowConstant, RowYearFE, RowIndustryFE, RowRSquared, RowObservations}

// ModelColumnLabel returns the heading of a model column, "Modell (1)".
func ModelColumnLabel(model string) string {
	return fmt.Sprintf("Modell (%s)", model)
}

// Cell is one formatted value of a column.
type Cell struct {
	Row   string
	Value string
}

// Column is the formatted output of one model.
type Column struct {
	Label string
	Cells []Cell
}

// Value returns the cell for row.
func (c Column) Value(row string) (string, bool) {
	for _, cell := range c.Cells {
		if cell.Row == row {
			return cell.Value, true
		}
	}
	return "", false
}

// Column formats a fit as a table column labelled for model.
func (f Formatter) Column(model string, res *regression.Result) Column {
	col := Column{Label: ModelColumnLabel(model)}
	add := func(row, value string) {
		col.Cells = append(col.Cells, Cell{Row: row, Value: value})
	}

	add(RowConstant, f.Coefficient(res.Intercept.Estimate, res.Intercept.PValue))
	for _, c := range res.Coefficients {
		add(c.Name, f.Coefficient(c.Estimate, c.PValue))
	}
	add(RowObservations, FormatCount(res.Observations))
	add(RowRSquared, f.Number(res.RSquared))
	add(RowYearFE, YesNo(res.YearFixedEffects))
	add(RowIndustryFE, YesNo(res.IndustryFixedEffects))
	return col
}

// ResultsTable places model columns side by side. Rows are the union of the
// columns' row labels in first-seen order until Finalize moves the trailer
// rows to the bottom. Methods never modify the receiver.
type ResultsTable struct {
	name    string
	rows    []string
	columns []Column
}

// NewResultsTable returns an empty table whose corner cell reads name.
func NewResultsTable(name string) ResultsTable {
	return ResultsTable{name: name}
}

// Name returns the corner label.
func (t ResultsTable) Name() string { return t.name }

// With returns a table with col appended.
func (t ResultsTable) With(col Column) (ResultsTable, error) {
	for _, c := range t.columns {
		if c.Label == col.Label {
			return t, fmt.Errorf("results table already has column %q", col.Label)
		}
	}

	next := ResultsTable{
		name:    t.name,
		rows:    append([]string(nil), t.rows...),
		columns: make([]Column, len(t.columns), len(t.columns)+1),
	}
	copy(next.columns, t.columns)
	col.Cells = append([]Cell(nil), col.Cells...)
	next.columns = append(next.columns, col)

	seen := make(map[string]bool, len(next.rows))
	for _, r := range next.rows {
		seen[r] = true
	}
	for _, cell := range col.Cells {
		if !seen[cell.Row] {
			seen[cell.Row] = true
			next.rows = append(next.rows, cell.Row)
		}
	}
	return next, nil
}

// Rows returns the row labels in display order.
func (t ResultsTable) Rows() []string {
	return append([]string(nil), t.rows...)
}

// Columns returns the model columns in insertion order.
func (t ResultsTable) Columns() []Column {
	out := make([]Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// Value returns the cell at (row, column label).
func (t ResultsTable) Value(row, column string) (string, bool) {
	for _, c := range t.columns {
		if c.Label == column {
			return c.Value(row)
		}
	}
	return "", false
}

// Finalize returns a table with the trailer rows moved to the bottom in
// TrailerRows order. Other rows keep their relative order.
func (t ResultsTable) Finalize() ResultsTable {
	trailer := make(map[string]bool, len(TrailerRows))
	for _, r := range TrailerRows {
		trailer[r] = true
	}
	present := make(map[string]bool, len(t.rows))
	rows := make([]string, 0, len(t.rows))
	for _, r := range t.rows {
		present[r] = true
		if !trailer[r] {
			rows = append(rows, r)
		}
	}
	for _, r := range TrailerRows {
		if present[r] {
			rows = append(rows, r)
		}
	}

	next := t
	next.rows = rows
	next.columns = t.Columns()
	return next
}

// Grid renders the table as rows of strings with a header row. Missing
// cells are empty.
func (t ResultsTable) Grid() [][]string {
	header := []string{t.name}
	for _, c := range t.columns {
		header = append(header, c.Label)
	}
	grid := [][]string{header}
	for _, r := range t.rows {
		line := []string{r}
		for _, c := range t.columns {
			v, _ := c.Value(r)
			line = append(line, v)
		}
		grid = append(grid, line)
	}
	return grid
}

// LedgerGrid renders a sample selection ledger with one column per model.
// Counts use a space thousands separator; steps without a count are empty.
func LedgerGrid(l selection.Ledger) [][]string {
	cols := l.Columns()
	header := []string{""}
	for _, c := range cols {
		header = append(header, ModelColumnLabel(c.Model))
	}
	grid := [][]string{header}
	for _, label := range l.Labels() {
		line := []string{label}
		for _, c := range cols {
			e, ok := c.Lookup(label)
			if ok && e.HasCount {
				line = append(line, FormatCount(e.Count))
			} else {
				line = append(line, "")
			}
		}
		grid = append(grid, line)
	}
	return grid
}
