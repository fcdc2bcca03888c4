// Package trend aggregates a fixed selection across every loaded period and
// ranks the business lines of a single period.
package trend

import (
	"context"
	"fmt"
	"sort"

	"github.com/iwvelando/premium-dashboard/internal/analysis"
	"github.com/iwvelando/premium-dashboard/internal/metrics"
	"github.com/iwvelando/premium-dashboard/internal/period"
	"github.com/iwvelando/premium-dashboard/pkg/constants"
	"github.com/iwvelando/premium-dashboard/pkg/mathutil"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Point is one period of a trend series.
type Point struct {
	PeriodID    string                    `json:"periodId"`
	PeriodLabel string                    `json:"periodLabel"`
	Metrics     metrics.AggregatedMetrics `json:"metrics"`
}

// Rank is one business line of a ranking.
type Rank struct {
	BusinessType string                    `json:"businessType"`
	PremiumShare float64                   `json:"premiumShare"`
	Metrics      metrics.AggregatedMetrics `json:"metrics"`
}

// Builder computes trends and rankings.
type Builder struct {
	logger      *zap.Logger
	processor   *analysis.Processor
	concurrency int
}

// NewBuilder creates a builder. A concurrency below one uses the default limit.
func NewBuilder(logger *zap.Logger, concurrency int) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrency < 1 {
		concurrency = constants.DefaultTrendConcurrency
	}
	return &Builder{
		logger:      logger,
		processor:   analysis.NewProcessor(logger),
		concurrency: concurrency,
	}
}

// Series aggregates the selection for every period, ordered by period id.
func (b *Builder) Series(ctx context.Context, ds *period.Dataset, businessTypes []string, mode metrics.Mode) ([]Point, error) {
	if mode == "" {
		mode = metrics.Cumulative
	}
	records := ds.Records()
	points := make([]Point, len(records))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i, rec := range records {
		i, rec := i, rec
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			points[i] = Point{
				PeriodID:    rec.PeriodID,
				PeriodLabel: rec.PeriodLabel,
				Metrics:     b.processor.Aggregate(ds, rec, businessTypes, mode),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("trend series: %w", err)
	}

	b.logger.Debug("trend series built",
		zap.String("op", "trend.Series"),
		zap.String("mode", string(mode)),
		zap.Int("points", len(points)),
	)
	return points, nil
}

// Ranking aggregates each business line of the period on its own and orders
// the lines by variable cost ratio, worst first. Ties keep source order.
func (b *Builder) Ranking(ds *period.Dataset, periodID string, mode metrics.Mode) ([]Rank, error) {
	rec, ok := ds.Find(periodID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", analysis.ErrPeriodNotFound, periodID)
	}
	if mode == "" {
		mode = metrics.Cumulative
	}

	ranks := lo.Map(period.IndividualEntries(rec.BusinessLineEntries), func(e period.Entry, _ int) Rank {
		m := b.processor.Aggregate(ds, rec, []string{e.BusinessType}, mode)
		return Rank{
			BusinessType: e.BusinessType,
			PremiumShare: mathutil.Percentage(m.PremiumWritten, rec.OverallTotals.TotalPremiumWrittenOverall),
			Metrics:      m,
		}
	})
	sort.SliceStable(ranks, func(i, j int) bool {
		return ranks[i].Metrics.VariableCostRatio > ranks[j].Metrics.VariableCostRatio
	})
	return ranks, nil
}
