// Package kpi turns processed analysis results into labelled KPI view models.
package kpi

import (
	"github.com/iwvelando/premium-dashboard/internal/analysis"
	"github.com/iwvelando/premium-dashboard/internal/metrics"
	"github.com/iwvelando/premium-dashboard/pkg/constants"
	"github.com/iwvelando/premium-dashboard/pkg/format"
)

// ViewModel is one KPI card.
type ViewModel struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Unit  string `json:"unit,omitempty"`
	Value string `json:"value"`
	// RawValue is nil when the KPI is not applicable to the selection.
	RawValue      *float64        `json:"rawValue"`
	Primary       *ComparisonView `json:"primary,omitempty"`
	Secondary     *ComparisonView `json:"secondary,omitempty"`
	IsRisk        bool            `json:"isRisk"`
	NotApplicable bool            `json:"notApplicable"`
}

// ComparisonView is a formatted change against one baseline.
type ComparisonView struct {
	Label          string    `json:"label"`
	PercentChange  string    `json:"percentChange"`
	AbsoluteChange string    `json:"absoluteChange"`
	Type           Direction `json:"type"`
}

type definition struct {
	id             string
	title          string
	unit           string
	higherIsBetter bool
	// noDeltas marks point-in-time signals that never show comparisons.
	noDeltas bool
}

var definitions = []definition{
	{id: format.PremiumWritten, title: "签单保费", unit: "万元", higherIsBetter: true},
	{id: format.PremiumEarned, title: "满期保费", unit: "万元", higherIsBetter: true},
	{id: format.TotalLossAmount, title: "已报告赔款", unit: "万元"},
	{id: format.ExpenseAmount, title: "费用额", unit: "万元"},
	{id: format.MarginalContributionAmount, title: "边际贡献额", unit: "万元", higherIsBetter: true},
	{id: format.LossRatio, title: "满期赔付率", unit: "%"},
	{id: format.ExpenseRatio, title: "费用率", unit: "%"},
	{id: format.VariableCostRatio, title: "变动成本率", unit: "%"},
	{id: format.MarginalContributionRatio, title: "边际贡献率", unit: "%", higherIsBetter: true},
	{id: format.PremiumEarnedRatio, title: "保费满期率", unit: "%", higherIsBetter: true},
	{id: format.ClaimFrequency, title: "满期出险率", unit: "%"},
	{id: format.ClaimCount, title: "已报件数", unit: "件"},
	{id: format.PolicyCount, title: "保单件数", unit: "件", higherIsBetter: true},
	{id: format.AvgPremiumPerPolicy, title: "单均保费", unit: "元", higherIsBetter: true},
	{id: format.AvgLossPerCase, title: "案均赔款", unit: "元"},
	{id: format.PremiumShare, title: "保费占比", unit: "%", higherIsBetter: true, noDeltas: true},
	{id: format.AvgCommercialIndex, title: "商业险自主系数", higherIsBetter: true, noDeltas: true},
}

// IDs lists the KPI identifiers in display order.
func IDs() []string {
	ids := make([]string, len(definitions))
	for i, d := range definitions {
		ids[i] = d.id
	}
	return ids
}

// Build renders every KPI for the result. labels maps period ids to display
// labels and overrides the labels carried by the result.
func Build(result analysis.Result, labels map[string]string) []ViewModel {
	primary := relabel(result.Primary, labels)
	secondary := relabel(result.Secondary, labels)
	unprofitable := result.Current.VariableCostRatio >= constants.VCRRiskThreshold

	out := make([]ViewModel, 0, len(definitions))
	for _, def := range definitions {
		kind := format.KindFor(def.id)
		vm := ViewModel{ID: def.id, Title: def.title, Unit: def.unit}

		value, ok := currentValue(result, def.id)
		if !ok {
			vm.Value = format.NotApplicable
			vm.NotApplicable = true
			vm.Primary = placeholder(primary)
			vm.Secondary = placeholder(secondary)
			out = append(out, vm)
			continue
		}
		vm.Value = format.Value(kind, value)
		vm.RawValue = &value

		higherIsBetter := def.higherIsBetter
		switch def.id {
		case format.PremiumWritten:
			// Growth in an unprofitable segment is not good news.
			if unprofitable {
				higherIsBetter = false
				vm.IsRisk = true
			}
		case format.VariableCostRatio, format.MarginalContributionRatio:
			vm.IsRisk = unprofitable
		}

		if def.noDeltas {
			vm.Primary = placeholder(primary)
			vm.Secondary = placeholder(secondary)
		} else {
			vm.Primary = compare(value, primary, def.id, kind, higherIsBetter)
			vm.Secondary = compare(value, secondary, def.id, kind, higherIsBetter)
		}
		out = append(out, vm)
	}
	return out
}

func currentValue(result analysis.Result, id string) (float64, bool) {
	switch id {
	case format.PremiumShare:
		return result.PremiumShare, true
	case format.AvgCommercialIndex:
		// Only meaningful for a single line in cumulative mode.
		if !result.SingleLine || result.Mode != metrics.Cumulative {
			return 0, false
		}
	}
	return result.Current.Value(id)
}

func compare(value float64, baseline *analysis.Comparison, id string, kind format.Kind, higherIsBetter bool) *ComparisonView {
	if baseline == nil {
		return nil
	}
	previous, ok := baseline.Metrics.Value(id)
	if !ok {
		return placeholder(baseline)
	}
	band := constants.NeutralEpsilon
	if kind.IsRate() {
		band = constants.RateNeutralBand
	}
	change := ChangeAndTypeWithin(value, previous, higherIsBetter, band)
	return &ComparisonView{
		Label:          baseline.Label(),
		PercentChange:  format.PercentChange(change.Percent),
		AbsoluteChange: format.AbsoluteChange(kind, change.Absolute),
		Type:           change.Type,
	}
}

func placeholder(baseline *analysis.Comparison) *ComparisonView {
	if baseline == nil {
		return nil
	}
	return &ComparisonView{
		Label:          baseline.Label(),
		PercentChange:  format.NotApplicable,
		AbsoluteChange: format.NotApplicable,
		Type:           Neutral,
	}
}

func relabel(c *analysis.Comparison, labels map[string]string) *analysis.Comparison {
	if c == nil {
		return nil
	}
	out := *c
	if label, ok := labels[c.PeriodID]; ok && label != "" {
		out.PeriodLabel = label
	}
	return &out
}
