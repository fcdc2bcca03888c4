// Package metrics turns business-line period entries into a consolidated
// metrics record. It is the only place ratios are derived.
package metrics

import (
	"fmt"

	"github.com/iwvelando/premium-dashboard/pkg/constants"
	"github.com/iwvelando/premium-dashboard/pkg/format"
)

// Mode selects whether an analysis covers year-to-date values or only the
// increment of the current period.
type Mode string

const (
	// Cumulative analyses year-to-date values as reported.
	Cumulative Mode = constants.ModeCumulative
	// PeriodOverPeriod analyses the current period's increment over the prior period.
	PeriodOverPeriod Mode = constants.ModePeriodOverPeriod
)

// ParseMode validates a mode string. An empty string means cumulative.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", Cumulative:
		return Cumulative, nil
	case PeriodOverPeriod:
		return PeriodOverPeriod, nil
	}
	return "", fmt.Errorf("expected analysis mode of %s or %s, got %s",
		constants.ModeCumulative, constants.ModePeriodOverPeriod, s)
}

// Path records which calculation produced an AggregatedMetrics.
type Path int

const (
	// PathRecomputed derives every ratio from summed base fields.
	PathRecomputed Path = iota
	// PathSingleLineDirect trusts the source's precomputed values for a single
	// line in cumulative mode.
	PathSingleLineDirect
)

func (p Path) String() string {
	if p == PathSingleLineDirect {
		return "singleLineDirect"
	}
	return "recomputed"
}

// MarshalText renders the path by name in JSON output.
func (p Path) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses a path name written by MarshalText.
func (p *Path) UnmarshalText(text []byte) error {
	switch string(text) {
	case "singleLineDirect":
		*p = PathSingleLineDirect
	case "recomputed":
		*p = PathRecomputed
	default:
		return fmt.Errorf("unknown aggregation path %q", text)
	}
	return nil
}

// AggregatedMetrics is the consolidated record for one period, business-line
// selection and mode. Amounts are in 10k units except the per-policy and
// per-case averages which are in units.
type AggregatedMetrics struct {
	PremiumWritten    float64 `json:"premiumWritten"`
	PremiumEarned     float64 `json:"premiumEarned"`
	TotalLossAmount   float64 `json:"totalLossAmount"`
	ExpenseAmountRaw  float64 `json:"expenseAmountRaw"`
	ClaimCount        float64 `json:"claimCount"`
	PolicyCountEarned float64 `json:"policyCountEarned"`
	PolicyCount       float64 `json:"policyCount"`

	ExpenseRatio               float64 `json:"expenseRatio"`
	LossRatio                  float64 `json:"lossRatio"`
	VariableCostRatio          float64 `json:"variableCostRatio"`
	MarginalContributionRatio  float64 `json:"marginalContributionRatio"`
	ExpenseAmount              float64 `json:"expenseAmount"`
	MarginalContributionAmount float64 `json:"marginalContributionAmount"`
	PremiumEarnedRatio         float64 `json:"premiumEarnedRatio"`
	ClaimFrequency             float64 `json:"claimFrequency"`
	AvgPremiumPerPolicy        float64 `json:"avgPremiumPerPolicy"`
	AvgLossPerCase             float64 `json:"avgLossPerCase"`

	// AvgCommercialIndex only exists for a single line in cumulative mode.
	AvgCommercialIndex *float64 `json:"avgCommercialIndex,omitempty"`

	Path     Path `json:"path"`
	VCRColor HSL  `json:"vcrColor"`
}

// Value returns the metric with the given identifier and whether it is defined.
func (m AggregatedMetrics) Value(metricID string) (float64, bool) {
	switch metricID {
	case format.PremiumWritten:
		return m.PremiumWritten, true
	case format.PremiumEarned:
		return m.PremiumEarned, true
	case format.TotalLossAmount:
		return m.TotalLossAmount, true
	case format.ExpenseAmount:
		return m.ExpenseAmount, true
	case format.MarginalContributionAmount:
		return m.MarginalContributionAmount, true
	case format.LossRatio:
		return m.LossRatio, true
	case format.ExpenseRatio:
		return m.ExpenseRatio, true
	case format.VariableCostRatio:
		return m.VariableCostRatio, true
	case format.MarginalContributionRatio:
		return m.MarginalContributionRatio, true
	case format.PremiumEarnedRatio:
		return m.PremiumEarnedRatio, true
	case format.ClaimFrequency:
		return m.ClaimFrequency, true
	case format.ClaimCount:
		return m.ClaimCount, true
	case format.PolicyCount:
		return m.PolicyCount, true
	case format.AvgPremiumPerPolicy:
		return m.AvgPremiumPerPolicy, true
	case format.AvgLossPerCase:
		return m.AvgLossPerCase, true
	case format.AvgCommercialIndex:
		if m.AvgCommercialIndex == nil {
			return 0, false
		}
		return *m.AvgCommercialIndex, true
	}
	return 0, false
}
