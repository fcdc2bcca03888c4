// Package analysis resolves the comparison periods for a request, filters the
// selected business lines and runs the aggregator for the current period and
// its comparison baselines.
package analysis

import (
	"errors"
	"fmt"

	"github.com/iwvelando/premium-dashboard/internal/metrics"
	"github.com/iwvelando/premium-dashboard/internal/period"
	"github.com/iwvelando/premium-dashboard/pkg/constants"
	"github.com/iwvelando/premium-dashboard/pkg/mathutil"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

var (
	// ErrPeriodNotFound is returned when the requested period is not loaded.
	ErrPeriodNotFound = errors.New("period not found")

	// ErrInvalidSelection is returned when the explicit comparison period is
	// the current period. The caller must reset its comparison choice.
	ErrInvalidSelection = errors.New("comparison period equals the selected period")
)

// Request describes one analysis.
type Request struct {
	PeriodID           string       `json:"periodId"`
	ComparisonPeriodID string       `json:"comparisonPeriodId,omitempty"`
	Mode               metrics.Mode `json:"mode"`
	BusinessTypes      []string     `json:"businessTypes,omitempty"`
}

// ComparisonKind tells how a comparison period was chosen.
type ComparisonKind string

const (
	ComparisonExplicit ComparisonKind = "explicit"
	ComparisonMoM      ComparisonKind = "mom"
	ComparisonYoY      ComparisonKind = "yoy"
)

// Comparison is one aggregated baseline.
type Comparison struct {
	Kind        ComparisonKind            `json:"kind"`
	PeriodID    string                    `json:"periodId"`
	PeriodLabel string                    `json:"periodLabel"`
	Metrics     metrics.AggregatedMetrics `json:"metrics"`
}

// Result is the processed outcome of a Request.
type Result struct {
	PeriodID    string                    `json:"periodId"`
	PeriodLabel string                    `json:"periodLabel"`
	Mode        metrics.Mode              `json:"mode"`
	DisplayName string                    `json:"displayName"`
	Current     metrics.AggregatedMetrics `json:"current"`
	// Primary is the explicit comparison period, or the default MoM period.
	Primary *Comparison `json:"primary,omitempty"`
	// Secondary is the default YoY period; never set with an explicit comparison.
	Secondary *Comparison `json:"secondary,omitempty"`
	// PremiumShare is the current premium as a percentage of the portfolio total.
	PremiumShare float64 `json:"premiumShare"`
	// SingleLine is true when exactly one business line is selected.
	SingleLine bool `json:"singleLine"`
}

// ComparisonLabels returns display labels for the primary and secondary
// baselines, empty when absent.
func (r Result) ComparisonLabels() (primary, secondary string) {
	return r.Primary.Label(), r.Secondary.Label()
}

// Label renders the baseline for column headers and KPI captions.
func (c *Comparison) Label() string {
	if c == nil {
		return ""
	}
	name := c.PeriodLabel
	if name == "" {
		name = c.PeriodID
	}
	switch c.Kind {
	case ComparisonMoM:
		return "MoM " + name
	case ComparisonYoY:
		return "YoY " + name
	}
	return "vs " + name
}

// Processor runs analyses over a loaded dataset.
type Processor struct {
	logger     *zap.Logger
	aggregator *metrics.Aggregator
}

// NewProcessor creates a new processor with the given logger.
func NewProcessor(logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		logger:     logger,
		aggregator: metrics.NewAggregator(logger),
	}
}

// Process runs the aggregator for the current period and its baselines.
//
// ErrPeriodNotFound comes with an empty Result. ErrInvalidSelection is
// returned before anything is computed.
func (p *Processor) Process(ds *period.Dataset, req Request) (Result, error) {
	current, ok := ds.Find(req.PeriodID)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrPeriodNotFound, req.PeriodID)
	}
	if req.ComparisonPeriodID != "" && req.ComparisonPeriodID == req.PeriodID {
		return Result{}, fmt.Errorf("%w: %s", ErrInvalidSelection, req.PeriodID)
	}
	mode := req.Mode
	if mode == "" {
		mode = metrics.Cumulative
	}

	selected := period.Select(current.BusinessLineEntries, req.BusinessTypes)

	result := Result{
		PeriodID:    current.PeriodID,
		PeriodLabel: current.PeriodLabel,
		Mode:        mode,
		DisplayName: DisplayName(current, req.BusinessTypes),
		Current:     p.Aggregate(ds, current, req.BusinessTypes, mode),
		SingleLine:  len(selected) == 1,
	}
	result.PremiumShare = mathutil.Percentage(result.Current.PremiumWritten, current.OverallTotals.TotalPremiumWrittenOverall)

	if req.ComparisonPeriodID != "" {
		result.Primary = p.compare(ds, &req.ComparisonPeriodID, ComparisonExplicit, req.BusinessTypes)
	} else {
		result.Primary = p.compare(ds, current.ComparisonPeriodIDMoM, ComparisonMoM, req.BusinessTypes)
		result.Secondary = p.compare(ds, current.ComparisonPeriodIDYoY, ComparisonYoY, req.BusinessTypes)
	}

	p.logger.Debug("period processed",
		zap.String("op", "analysis.Process"),
		zap.String("period", result.PeriodID),
		zap.String("mode", string(mode)),
		zap.String("displayName", result.DisplayName),
		zap.Bool("primary", result.Primary != nil),
		zap.Bool("secondary", result.Secondary != nil),
	)
	return result, nil
}

// Aggregate consolidates the selected lines of one period. In
// PeriodOverPeriod mode the baseline is the period's MoM link, or zero when
// that period is not loaded.
func (p *Processor) Aggregate(ds *period.Dataset, current period.Record, businessTypes []string, mode metrics.Mode) metrics.AggregatedMetrics {
	var prior []period.Entry
	if mode == metrics.PeriodOverPeriod {
		if prev, ok := ds.FindRef(current.ComparisonPeriodIDMoM); ok {
			prior = period.Select(prev.BusinessLineEntries, businessTypes)
		} else {
			p.logger.Debug("no prior period for differencing, using a zero baseline",
				zap.String("op", "analysis.Aggregate"),
				zap.String("period", current.PeriodID),
			)
		}
	}
	selected := period.Select(current.BusinessLineEntries, businessTypes)
	return p.aggregator.Aggregate(selected, mode, current.BusinessLineEntries, prior)
}

// compare aggregates a baseline period. Baselines are always cumulative and a
// dangling reference means no comparison.
func (p *Processor) compare(ds *period.Dataset, ref *string, kind ComparisonKind, businessTypes []string) *Comparison {
	if ref == nil || *ref == "" {
		return nil
	}
	rec, ok := ds.FindRef(ref)
	if !ok {
		p.logger.Warn("comparison period not loaded",
			zap.String("op", "analysis.compare"),
			zap.String("kind", string(kind)),
			zap.String("period", *ref),
		)
		return nil
	}
	selected := period.Select(rec.BusinessLineEntries, businessTypes)
	return &Comparison{
		Kind:        kind,
		PeriodID:    rec.PeriodID,
		PeriodLabel: rec.PeriodLabel,
		Metrics:     p.aggregator.Aggregate(selected, metrics.Cumulative, rec.BusinessLineEntries, nil),
	}
}

// DisplayName names the selection: the line itself for a single existing
// line, the total label for none or all lines, the custom total label for
// anything else. Aggregate labels in the selection are ignored, as in
// period.Select.
func DisplayName(current period.Record, businessTypes []string) string {
	all := current.BusinessTypes()
	selected := period.SelectionNames(businessTypes)

	switch {
	case len(selected) == 0:
		return constants.TotalDisplayName
	case len(selected) == 1 && lo.Contains(all, selected[0]):
		return selected[0]
	case len(lo.Intersect(all, selected)) == len(all) && len(selected) == len(all):
		return constants.TotalDisplayName
	}
	return constants.CustomTotalDisplayName
}
