package metrics

import (
	"github.com/iwvelando/premium-dashboard/internal/period"
	"github.com/iwvelando/premium-dashboard/pkg/constants"
	"github.com/iwvelando/premium-dashboard/pkg/mathutil"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Aggregator consolidates business-line entries into AggregatedMetrics. It
// holds no state besides its logger and is safe for concurrent use.
type Aggregator struct {
	logger *zap.Logger
}

// NewAggregator creates a new aggregator with the given logger.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewAggregator(logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{logger: logger}
}

// totals are the six summable base fields plus the derived policy count.
type totals struct {
	premiumWritten    float64
	premiumEarned     float64
	totalLossAmount   float64
	expenseAmountRaw  float64
	claimCount        float64
	policyCountEarned float64
	policyCount       float64
}

// ChoosePath decides the calculation path once per call: only a single
// selected line in cumulative mode may use the source's precomputed values.
func ChoosePath(selected []period.Entry, mode Mode) Path {
	if len(selected) == 1 && mode == Cumulative {
		return PathSingleLineDirect
	}
	return PathRecomputed
}

// Aggregate produces one consolidated record for the selected entries.
//
// allCurrent is the full entry list of the current period, used to look up
// the raw source entry in the single-line path. prior holds the prior
// period's entries and is only read in PeriodOverPeriod mode; lines missing
// from it are differenced against a zero baseline.
func (a *Aggregator) Aggregate(selected []period.Entry, mode Mode, allCurrent []period.Entry, prior []period.Entry) AggregatedMetrics {
	path := ChoosePath(selected, mode)
	a.logger.Debug("aggregating entries",
		zap.String("op", "metrics.Aggregate"),
		zap.String("path", path.String()),
		zap.String("mode", string(mode)),
		zap.Int("entries", len(selected)),
	)

	var m AggregatedMetrics
	switch path {
	case PathSingleLineDirect:
		m = a.singleLine(selected[0], allCurrent)
	default:
		m = a.recomputed(selected, mode, prior)
	}
	m.Path = path
	m.VCRColor = VCRColor(m.VariableCostRatio)
	return m
}

func (a *Aggregator) singleLine(selected period.Entry, allCurrent []period.Entry) AggregatedMetrics {
	raw := selected
	if found, ok := period.Index(allCurrent)[selected.BusinessType]; ok {
		raw = found
	}

	t := totals{
		premiumWritten:    raw.PremiumWritten,
		premiumEarned:     raw.PremiumEarned,
		totalLossAmount:   raw.TotalLossAmount,
		expenseAmountRaw:  raw.ExpenseAmountRaw,
		claimCount:        raw.ClaimCount,
		policyCountEarned: raw.PolicyCountEarned,
	}

	avgPremium := valueOr(raw.AvgPremiumPerPolicy, 0)
	t.policyCount = mathutil.Round(mathutil.SafeDivide(t.premiumWritten*constants.TenThousand, avgPremium, 0))
	if t.policyCount == 0 {
		avgPremium = 0
	}

	expenseRatio, lossRatio := a.reconcileRatios(raw, t)

	m := derive(t, expenseRatio, lossRatio)
	m.AvgPremiumPerPolicy = avgPremium
	if present(raw.AvgLossPerCase) {
		m.AvgLossPerCase = *raw.AvgLossPerCase
	}
	if present(raw.ClaimFrequency) {
		m.ClaimFrequency = *raw.ClaimFrequency
	}
	if present(raw.AvgCommercialIndex) {
		v := *raw.AvgCommercialIndex
		m.AvgCommercialIndex = &v
	}
	return m
}

// reconcileRatios takes the loss and expense ratios from the source when
// present. A precomputed variable cost ratio only fills in a missing
// component; the returned pair always sums to the reported ratio.
func (a *Aggregator) reconcileRatios(raw period.Entry, t totals) (expenseRatio, lossRatio float64) {
	expenseRatio = mathutil.Percentage(t.expenseAmountRaw, t.premiumWritten)
	lossRatio = mathutil.Percentage(t.totalLossAmount, t.premiumEarned)

	switch {
	case present(raw.ExpenseRatio) && present(raw.LossRatio):
		expenseRatio, lossRatio = *raw.ExpenseRatio, *raw.LossRatio
		if present(raw.VariableCostRatio) && !mathutil.WithinTolerance(*raw.VariableCostRatio, expenseRatio+lossRatio, constants.RatioTolerance) {
			a.logger.Warn("precomputed variable cost ratio disagrees with its components, using the sum",
				zap.String("op", "metrics.reconcileRatios"),
				zap.String("businessType", raw.BusinessType),
				zap.Float64("variableCostRatio", *raw.VariableCostRatio),
				zap.Float64("expenseRatio", expenseRatio),
				zap.Float64("lossRatio", lossRatio),
			)
		}
	case present(raw.LossRatio):
		lossRatio = *raw.LossRatio
		if present(raw.VariableCostRatio) {
			expenseRatio = *raw.VariableCostRatio - lossRatio
		}
	case present(raw.ExpenseRatio):
		expenseRatio = *raw.ExpenseRatio
		if present(raw.VariableCostRatio) {
			lossRatio = *raw.VariableCostRatio - expenseRatio
		}
	case present(raw.VariableCostRatio):
		lossRatio = *raw.VariableCostRatio - expenseRatio
	}
	return expenseRatio, lossRatio
}

func (a *Aggregator) recomputed(selected []period.Entry, mode Mode, prior []period.Entry) AggregatedMetrics {
	type line struct {
		base       period.Entry
		avgPremium float64
	}

	priorIndex := period.Index(prior)
	lines := lo.Map(selected, func(e period.Entry, _ int) line {
		// The current YTD average premium is kept even in PoP mode: a
		// differenced average has no meaning.
		l := line{base: e.Base(), avgPremium: valueOr(e.AvgPremiumPerPolicy, 0)}
		if mode == PeriodOverPeriod {
			l.base = e.Sub(priorIndex[e.BusinessType])
		}
		return l
	})

	t := totals{
		premiumWritten:    lo.SumBy(lines, func(l line) float64 { return l.base.PremiumWritten }),
		premiumEarned:     lo.SumBy(lines, func(l line) float64 { return l.base.PremiumEarned }),
		totalLossAmount:   lo.SumBy(lines, func(l line) float64 { return l.base.TotalLossAmount }),
		expenseAmountRaw:  lo.SumBy(lines, func(l line) float64 { return l.base.ExpenseAmountRaw }),
		claimCount:        mathutil.Round(lo.SumBy(lines, func(l line) float64 { return l.base.ClaimCount })),
		policyCountEarned: mathutil.Round(lo.SumBy(lines, func(l line) float64 { return l.base.PolicyCountEarned })),
	}

	// Per-line reconstruction avoids dividing a blended premium by a blended average.
	t.policyCount = mathutil.Round(lo.SumBy(lines, func(l line) float64 {
		return mathutil.SafeDivide(l.base.PremiumWritten*constants.TenThousand, l.avgPremium, 0)
	}))

	m := derive(t,
		mathutil.Percentage(t.expenseAmountRaw, t.premiumWritten),
		mathutil.Percentage(t.totalLossAmount, t.premiumEarned),
	)
	m.AvgPremiumPerPolicy = mathutil.SafeDivide(t.premiumWritten*constants.TenThousand, t.policyCount, 0)
	return m
}

// derive applies the ratio and amount formulas shared by both paths.
func derive(t totals, expenseRatio, lossRatio float64) AggregatedMetrics {
	vcr := expenseRatio + lossRatio
	mcr := constants.PercentageMultiplier - vcr
	return AggregatedMetrics{
		PremiumWritten:             t.premiumWritten,
		PremiumEarned:              t.premiumEarned,
		TotalLossAmount:            t.totalLossAmount,
		ExpenseAmountRaw:           t.expenseAmountRaw,
		ClaimCount:                 t.claimCount,
		PolicyCountEarned:          t.policyCountEarned,
		PolicyCount:                t.policyCount,
		ExpenseRatio:               expenseRatio,
		LossRatio:                  lossRatio,
		VariableCostRatio:          vcr,
		MarginalContributionRatio:  mcr,
		ExpenseAmount:              mathutil.ApplyPercentage(t.premiumWritten, expenseRatio),
		MarginalContributionAmount: mathutil.ApplyPercentage(t.premiumEarned, mcr),
		PremiumEarnedRatio:         mathutil.Percentage(t.premiumEarned, t.premiumWritten),
		ClaimFrequency:             mathutil.Percentage(t.claimCount, t.policyCountEarned),
		AvgLossPerCase:             mathutil.SafeDivide(t.totalLossAmount*constants.TenThousand, t.claimCount, 0),
	}
}

// present reports whether a precomputed field exists and is numeric.
func present(v *float64) bool {
	return v != nil && mathutil.IsFinite(*v)
}

func valueOr(v *float64, fallback float64) float64 {
	if !present(v) {
		return fallback
	}
	return *v
}
