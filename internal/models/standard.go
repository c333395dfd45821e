package models

import (
	"fmt"

	apperrors "stickycost/internal/errors"
	"stickycost/internal/panel"
	v "stickycost/internal/variables"
)

// CostField maps the configured cost variable name to its panel field.
func CostField(name string) (panel.Field, error) {
	switch name {
	case panel.OperatingCosts.String():
		return panel.OperatingCosts, nil
	case panel.GoodsCosts.String():
		return panel.GoodsCosts, nil
	}
	return 0, apperrors.NewConfigError(
		fmt.Sprintf("cost variable must be %q or %q, got %q", panel.OperatingCosts, panel.GoodsCosts, name), nil,
	)
}

// DependentName returns the dependent variable name for a cost field.
func DependentName(cost panel.Field) string {
	return "lnCost_" + cost.String()
}

// Standard returns the four cost stickiness models for a cost field:
//
//	(1) symmetric and decline slopes of sales growth
//	(2) model 1 interacted with asset intensity, labour intensity and GDP growth
//	(3) model 1 plus prior-year sales growth
//	(4) slopes split by the direction of prior-year sales growth
func Standard(cost panel.Field) ([]*Spec, error) {
	if cost != panel.OperatingCosts && cost != panel.GoodsCosts {
		return nil, apperrors.NewConfigError(fmt.Sprintf("%s is not a cost field", cost), nil)
	}

	dep := DependentName(cost)
	base := []v.Formula{
		v.Define(dep, v.LogRatio, v.Field(cost), v.Lag(cost, 1)),
		v.Define("lnSalg", v.LogRatio, v.Field(panel.Sales), v.Lag(panel.Sales, 1)),
		v.Define("DlnSalg", v.Decline, v.Var("lnSalg")),
	}
	oneLag := []v.Operand{v.Field(cost), v.Lag(cost, 1), v.Field(panel.Sales), v.Lag(panel.Sales, 1)}
	twoLag := append(append([]v.Operand(nil), oneLag...), v.Lag(panel.Sales, 2))
	lnSalgPrev := v.Define("lnSalgPrev", v.LogRatio, v.Lag(panel.Sales, 1), v.Lag(panel.Sales, 2))

	var specs []*Spec
	add := func(label string, prior int, logFields []v.Operand, formulas []v.Formula, regressors ...string) error {
		s, err := New(label, prior, logFields, formulas, dep, regressors)
		if err != nil {
			return err
		}
		specs = append(specs, s)
		return nil
	}

	if err := add("1", 1, oneLag, base, "lnSalg", "DlnSalg"); err != nil {
		return nil, err
	}

	m2 := append(append([]v.Formula(nil), base...),
		v.Define("EINT", v.LogRatio, v.Field(panel.Assets), v.Field(panel.Sales)),
		v.Define("AINT", v.LogRatio, v.Field(panel.Payroll), v.Field(panel.Assets)),
		v.Define("BNP", v.GrowthRate, v.Field(panel.GDP), v.Field(panel.GDPPrev)),
		v.Define("lnSalgEINT", v.Product, v.Var("lnSalg"), v.Var("EINT")),
		v.Define("lnSalgAINT", v.Product, v.Var("lnSalg"), v.Var("AINT")),
		v.Define("lnSalgBNP", v.Product, v.Var("lnSalg"), v.Var("BNP")),
		v.Define("DlnSalgEINT", v.Product, v.Var("DlnSalg"), v.Var("EINT")),
		v.Define("DlnSalgAINT", v.Product, v.Var("DlnSalg"), v.Var("AINT")),
		v.Define("DlnSalgBNP", v.Product, v.Var("DlnSalg"), v.Var("BNP")),
	)
	m2Log := append(append([]v.Operand(nil), oneLag...), v.Field(panel.Assets), v.Field(panel.Payroll))
	if err := add("2", 1, m2Log, m2,
		"lnSalg", "DlnSalg",
		"lnSalgEINT", "lnSalgAINT", "lnSalgBNP",
		"DlnSalgEINT", "DlnSalgAINT", "DlnSalgBNP",
	); err != nil {
		return nil, err
	}

	// DlnSalgPrev masks current-year growth by the sign of prior-year growth,
	// matching the published study.
	m3 := append(append([]v.Formula(nil), base...),
		lnSalgPrev,
		v.Define("PrevDecline", v.IndicatorNegative, v.Var("lnSalgPrev")),
		v.Define("DlnSalgPrev", v.Product, v.Var("PrevDecline"), v.Var("lnSalg")),
	)
	if err := add("3", 2, twoLag, m3, "lnSalg", "DlnSalg", "lnSalgPrev", "DlnSalgPrev"); err != nil {
		return nil, err
	}

	m4 := append(append([]v.Formula(nil), base...),
		lnSalgPrev,
		v.Define("I_prev", v.IndicatorPositive, v.Var("lnSalgPrev")),
		v.Define("D_prev", v.IndicatorNegative, v.Var("lnSalgPrev")),
		v.Define("I_prev_lnSalg", v.Product, v.Var("I_prev"), v.Var("lnSalg")),
		v.Define("I_prev_DlnSalg", v.Product, v.Var("I_prev"), v.Var("DlnSalg")),
		v.Define("D_prev_lnSalg", v.Product, v.Var("D_prev"), v.Var("lnSalg")),
		v.Define("D_prev_DlnSalg", v.Product, v.Var("D_prev"), v.Var("DlnSalg")),
	)
	if err := add("4", 2, twoLag, m4, "I_prev_lnSalg", "I_prev_DlnSalg", "D_prev_lnSalg", "D_prev_DlnSalg"); err != nil {
		return nil, err
	}

	return specs, nil
}
