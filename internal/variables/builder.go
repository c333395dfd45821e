package variables

import (
	"fmt"
	"log/slog"

	apperrors "stickycost/internal/errors"
	"stickycost/internal/panel"
)

// Frame holds derived columns aligned with a slice of firm-years.
type Frame struct {
	records []panel.Record
	names   []string
	columns map[string][]float64
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.records)
}

// Names returns the derived column names in definition order.
func (f *Frame) Names() []string {
	return append([]string(nil), f.names...)
}

// Column returns a derived column. The slice must not be modified.
func (f *Frame) Column(name string) ([]float64, bool) {
	c, ok := f.columns[name]
	return c, ok
}

// EntityIDs returns the organisation number of every row.
func (f *Frame) EntityIDs() []string {
	out := make([]string, len(f.records))
	for i := range f.records {
		out[i] = f.records[i].OrgNr
	}
	return out
}

// Years returns the accounting year of every row.
func (f *Frame) Years() []int {
	out := make([]int, len(f.records))
	for i := range f.records {
		out[i] = f.records[i].Year
	}
	return out
}

// Industries returns the industry code of every row.
func (f *Frame) Industries() []string {
	out := make([]string, len(f.records))
	for i := range f.records {
		out[i] = f.records[i].Industry
	}
	return out
}

// Builder evaluates formula lists over firm-years.
type Builder struct {
	logger *slog.Logger
}

// NewBuilder returns a builder. A nil logger uses the default logger.
func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{logger: logger.With(slog.String("component", "variable_builder"))}
}

// Build evaluates formulas over records in order. Each formula becomes one
// column; later formulas may read earlier ones. The records are copied.
func (b *Builder) Build(records []panel.Record, formulas []Formula) (*Frame, error) {
	if err := Validate(formulas); err != nil {
		return nil, apperrors.NewValidationError("invalid variable definitions", err)
	}

	frame := &Frame{
		records: append([]panel.Record(nil), records...),
		names:   make([]string, 0, len(formulas)),
		columns: make(map[string][]float64, len(formulas)),
	}

	args := make([]float64, 2)
	for _, f := range formulas {
		col := make([]float64, len(frame.records))
		for i := range frame.records {
			for j, a := range f.Args {
				if a.IsField() {
					args[j] = a.Value(&frame.records[i])
				} else {
					args[j] = frame.columns[a.derived][i]
				}
			}
			col[i] = f.Op.apply(args[:len(f.Args)])
		}
		frame.names = append(frame.names, f.Name)
		frame.columns[f.Name] = col
	}

	b.logger.Debug("Built variables",
		slog.Int("rows", frame.Len()),
		slog.Int("variables", len(frame.names)),
	)
	return frame, nil
}

// String summarises the frame for logs and test failures.
func (f *Frame) String() string {
	return fmt.Sprintf("Frame(%d rows, %v)", f.Len(), f.names)
}
