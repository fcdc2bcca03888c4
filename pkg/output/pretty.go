package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/premium-dashboard/internal/analysis"
	"github.com/iwvelando/premium-dashboard/internal/kpi"
)

// PrettyFormat outputs a human-readable KPI table.
func PrettyFormat(w io.Writer, result analysis.Result, kpis []kpi.ViewModel) {
	primary, secondary := result.ComparisonLabels()
	fmt.Fprintf(w, "--- %s %s (%s, %s) ---\n", result.PeriodLabel, result.DisplayName, result.PeriodID, result.Mode)

	header := []string{"KPI", "Value"}
	if primary != "" {
		header = append(header, primary)
	}
	if secondary != "" {
		header = append(header, secondary)
	}
	fmt.Fprintln(w, strings.Join(header, " | "))

	for _, k := range kpis {
		cells := []string{k.Title, strings.TrimSpace(k.Value + " " + unitSuffix(k))}
		if primary != "" {
			cells = append(cells, changeCell(k.Primary))
		}
		if secondary != "" {
			cells = append(cells, changeCell(k.Secondary))
		}
		line := strings.Join(cells, " | ")
		if k.IsRisk {
			line += " | !"
		}
		fmt.Fprintln(w, line)
	}
}

func unitSuffix(k kpi.ViewModel) string {
	if k.NotApplicable || k.Unit == "%" {
		return ""
	}
	return k.Unit
}

func changeCell(c *kpi.ComparisonView) string {
	if c == nil {
		return "-"
	}
	if c.PercentChange == c.AbsoluteChange {
		return c.PercentChange
	}
	return fmt.Sprintf("%s (%s) %s", c.PercentChange, c.AbsoluteChange, c.Type)
}

// Report is the JSON document handed to the narrative generator.
type Report struct {
	Result analysis.Result `json:"result"`
	KPIs   []kpi.ViewModel `json:"kpis"`
}

// JSONFormat writes the result and KPIs as indented JSON.
func JSONFormat(w io.Writer, result analysis.Result, kpis []kpi.ViewModel) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(Report{Result: result, KPIs: kpis}); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
