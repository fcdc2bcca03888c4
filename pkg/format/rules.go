// Package format holds the display rules for every dashboard metric and the
// helpers that render values according to them.
package format

// Kind is the display format of a metric.
type Kind int

const (
	// KindPercentage renders a ratio already expressed x100.
	KindPercentage Kind = iota
	// KindCurrency10k renders an amount stored in 10k units.
	KindCurrency10k
	// KindCurrencyUnit renders an amount in units, e.g. average premium per policy.
	KindCurrencyUnit
	// KindCount renders an integer count.
	KindCount
	// KindIndex3 renders an index with three decimals.
	KindIndex3
)

// Metric identifiers shared by the KPI builder and the serializers.
const (
	PremiumWritten             = "premiumWritten"
	PremiumEarned              = "premiumEarned"
	TotalLossAmount            = "totalLossAmount"
	ExpenseAmount              = "expenseAmount"
	MarginalContributionAmount = "marginalContributionAmount"
	LossRatio                  = "lossRatio"
	ExpenseRatio               = "expenseRatio"
	VariableCostRatio          = "variableCostRatio"
	MarginalContributionRatio  = "marginalContributionRatio"
	PremiumEarnedRatio         = "premiumEarnedRatio"
	ClaimFrequency             = "claimFrequency"
	ClaimCount                 = "claimCount"
	PolicyCount                = "policyCount"
	AvgPremiumPerPolicy        = "avgPremiumPerPolicy"
	AvgLossPerCase             = "avgLossPerCase"
	PremiumShare               = "premiumShare"
	AvgCommercialIndex         = "avgCommercialIndex"
)

// Rules maps each metric to its display format.
var Rules = map[string]Kind{
	PremiumWritten:             KindCurrency10k,
	PremiumEarned:              KindCurrency10k,
	TotalLossAmount:            KindCurrency10k,
	ExpenseAmount:              KindCurrency10k,
	MarginalContributionAmount: KindCurrency10k,
	LossRatio:                  KindPercentage,
	ExpenseRatio:               KindPercentage,
	VariableCostRatio:          KindPercentage,
	MarginalContributionRatio:  KindPercentage,
	PremiumEarnedRatio:         KindPercentage,
	ClaimFrequency:             KindPercentage,
	ClaimCount:                 KindCount,
	PolicyCount:                KindCount,
	AvgPremiumPerPolicy:        KindCurrencyUnit,
	AvgLossPerCase:             KindCurrencyUnit,
	PremiumShare:               KindPercentage,
	AvgCommercialIndex:         KindIndex3,
}

// KindFor returns the display format of a metric. Unknown metrics fall back
// to 10k-unit currency, the most common kind on the dashboard.
func KindFor(metricID string) Kind {
	if kind, ok := Rules[metricID]; ok {
		return kind
	}
	return KindCurrency10k
}

// IsRate reports whether values of this kind are ratios whose changes are
// expressed in percentage points.
func (k Kind) IsRate() bool {
	return k == KindPercentage
}

// Decimals is the display precision for a kind.
func (k Kind) Decimals() int {
	switch k {
	case KindPercentage, KindCurrency10k:
		return 2
	case KindIndex3:
		return 3
	default:
		return 0
	}
}

// CSVDecimals is the serialization precision for a kind.
func (k Kind) CSVDecimals() int {
	switch k {
	case KindCount:
		return 0
	case KindCurrencyUnit:
		return 2
	default:
		return 4
	}
}

func (k Kind) String() string {
	switch k {
	case KindPercentage:
		return "percentage"
	case KindCurrency10k:
		return "currency10k"
	case KindCurrencyUnit:
		return "currencyUnit"
	case KindCount:
		return "count"
	case KindIndex3:
		return "index"
	default:
		return "unknown"
	}
}
