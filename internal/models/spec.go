// Package models defines the regression model specifications of the cost
// stickiness study.
//
// A Spec names everything a model run needs: the number of prior years a
// firm must report, the fields that enter log ratios and so must be strictly
// positive, the formulas of every derived variable, and the dependent and
// independent variables of the regression. Specs are validated when they are
// constructed and cannot be changed afterwards.
package models

import (
	"fmt"

	apperrors "stickycost/internal/errors"
	"stickycost/internal/panel"
	"stickycost/internal/variables"
)

// Spec is an immutable model specification.
type Spec struct {
	label        string
	priorPeriods int
	logFields    []variables.Operand
	formulas     []variables.Formula
	dependent    string
	regressors   []string
}

// New validates and returns a model specification.
func New(label string, priorPeriods int, logFields []variables.Operand, formulas []variables.Formula, dependent string, regressors []string) (*Spec, error) {
	s := &Spec{
		label:        label,
		priorPeriods: priorPeriods,
		logFields:    append([]variables.Operand(nil), logFields...),
		formulas:     cloneFormulas(formulas),
		dependent:    dependent,
		regressors:   append([]string(nil), regressors...),
	}
	if err := s.validate(); err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("model %q", label), err)
	}
	return s, nil
}

func (s *Spec) validate() error {
	if s.label == "" {
		return fmt.Errorf("label is empty")
	}
	if s.priorPeriods < 1 || s.priorPeriods > panel.MaxLag {
		return fmt.Errorf("prior periods must be 1 or 2, got %d", s.priorPeriods)
	}
	if err := variables.Validate(s.formulas); err != nil {
		return err
	}

	positive := make(map[string]bool, len(s.logFields))
	for _, o := range s.logFields {
		if !o.IsField() {
			return fmt.Errorf("log field %q is not a panel field", o)
		}
		if err := s.checkLag(o); err != nil {
			return err
		}
		positive[o.String()] = true
	}

	defined := make(map[string]bool, len(s.formulas))
	for _, f := range s.formulas {
		defined[f.Name] = true
		for _, a := range f.Args {
			if !a.IsField() {
				continue
			}
			if err := s.checkLag(a); err != nil {
				return err
			}
			if f.Op == variables.LogRatio && !positive[a.String()] {
				return fmt.Errorf("variable %q takes the log of %s, which is not a log field", f.Name, a)
			}
		}
	}

	if !defined[s.dependent] {
		return fmt.Errorf("dependent variable %q is not defined", s.dependent)
	}
	if len(s.regressors) == 0 {
		return fmt.Errorf("no regressors")
	}
	seen := make(map[string]bool, len(s.regressors))
	for _, r := range s.regressors {
		if !defined[r] {
			return fmt.Errorf("regressor %q is not defined", r)
		}
		if r == s.dependent {
			return fmt.Errorf("regressor %q is the dependent variable", r)
		}
		if seen[r] {
			return fmt.Errorf("regressor %q is listed twice", r)
		}
		seen[r] = true
	}
	return nil
}

func (s *Spec) checkLag(o variables.Operand) error {
	if _, lag := o.FieldRef(); lag > s.priorPeriods {
		return fmt.Errorf("%s needs %d prior years but the model requires %d", o, lag, s.priorPeriods)
	}
	return nil
}

// Label returns the model label used as the column heading.
func (s *Spec) Label() string { return s.label }

// PriorPeriods returns the number of consecutive prior years a firm needs.
func (s *Spec) PriorPeriods() int { return s.priorPeriods }

// LogFields returns the fields that must be strictly positive.
func (s *Spec) LogFields() []variables.Operand {
	return append([]variables.Operand(nil), s.logFields...)
}

// Formulas returns the derived variable definitions in evaluation order.
func (s *Spec) Formulas() []variables.Formula {
	return cloneFormulas(s.formulas)
}

// Dependent returns the name of the dependent variable.
func (s *Spec) Dependent() string { return s.dependent }

// Regressors returns the independent variable names in table order.
func (s *Spec) Regressors() []string {
	return append([]string(nil), s.regressors...)
}

func cloneFormulas(in []variables.Formula) []variables.Formula {
	out := make([]variables.Formula, len(in))
	for i, f := range in {
		out[i] = variables.Define(f.Name, f.Op, f.Args...)
	}
	return out
}
