// Package output provides utilities for formatting and exporting analysis results.
package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/iwvelando/premium-dashboard/internal/analysis"
	"github.com/iwvelando/premium-dashboard/internal/kpi"
	"github.com/iwvelando/premium-dashboard/internal/metrics"
	"github.com/iwvelando/premium-dashboard/pkg/format"
)

// Labels name the comparison baselines in column headers.
type Labels struct {
	Primary   string
	Secondary string
}

type column struct {
	name   string
	metric string
}

// coreColumns is the fixed order of metric columns. Every column but the
// commercial index also gets delta columns per comparison.
var coreColumns = []column{
	{"premium_written", format.PremiumWritten},
	{"premium_earned", format.PremiumEarned},
	{"total_loss_amount", format.TotalLossAmount},
	{"expense_amount", format.ExpenseAmount},
	{"marginal_contribution_amount", format.MarginalContributionAmount},
	{"variable_cost_ratio", format.VariableCostRatio},
	{"loss_ratio", format.LossRatio},
	{"expense_ratio", format.ExpenseRatio},
	{"claim_count", format.ClaimCount},
	{"avg_premium_per_policy", format.AvgPremiumPerPolicy},
	{"avg_commercial_index", format.AvgCommercialIndex},
}

var deltaColumns = coreColumns[:10]

var identityColumns = []string{"period_id", "period_label", "business_scope", "analysis_mode", "premium_share"}

// CSV writes the header and the single data row for a result. Empty labels
// fall back to the result's own comparison labels.
func CSV(w io.Writer, result analysis.Result, mode metrics.Mode, labels Labels) error {
	primary, secondary := result.ComparisonLabels()
	if labels.Primary == "" {
		labels.Primary = primary
	}
	if labels.Secondary == "" {
		labels.Secondary = secondary
	}

	header := append([]string(nil), identityColumns...)
	row := []string{
		result.PeriodID,
		result.PeriodLabel,
		result.DisplayName,
		string(mode),
		number(result.PremiumShare, format.KindPercentage.CSVDecimals()),
	}

	for _, col := range coreColumns {
		header = append(header, col.name)
		v, ok := result.Current.Value(col.metric)
		if !ok {
			row = append(row, format.NotApplicable)
			continue
		}
		row = append(row, number(v, format.KindFor(col.metric).CSVDecimals()))
	}

	if result.Primary != nil {
		header, row = appendDeltas(header, row, result.Current, result.Primary.Metrics, labels.Primary)
	}
	if result.Secondary != nil {
		header, row = appendDeltas(header, row, result.Current, result.Secondary.Metrics, labels.Secondary)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	if err := cw.Write(row); err != nil {
		return fmt.Errorf("failed to write csv row: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

// CsvString renders CSV output into a string.
func CsvString(result analysis.Result, mode metrics.Mode, labels Labels) (string, error) {
	var buf bytes.Buffer
	if err := CSV(&buf, result, mode, labels); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func appendDeltas(header, row []string, current, baseline metrics.AggregatedMetrics, label string) ([]string, []string) {
	for _, col := range deltaColumns {
		header = append(header,
			fmt.Sprintf("%s_change_pct (%s)", col.name, label),
			fmt.Sprintf("%s_change_abs (%s)", col.name, label),
		)
		cur, okCur := current.Value(col.metric)
		prev, okPrev := baseline.Value(col.metric)
		if !okCur || !okPrev {
			row = append(row, format.NotApplicable, format.NotApplicable)
			continue
		}
		// Direction does not matter for the export.
		change := kpi.ChangeAndType(cur, prev, true)
		row = append(row,
			number(change.Percent, format.KindPercentage.CSVDecimals()),
			number(change.Absolute, format.KindFor(col.metric).CSVDecimals()),
		)
	}
	return header, row
}

// number formats a value for export; NaN and infinities become "-".
func number(v float64, decimals int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return format.NotApplicable
	}
	s := strconv.FormatFloat(v, 'f', decimals, 64)
	if s[0] == '-' && isZero(s[1:]) {
		return s[1:]
	}
	return s
}

func isZero(s string) bool {
	for _, r := range s {
		if r != '0' && r != '.' {
			return false
		}
	}
	return true
}
