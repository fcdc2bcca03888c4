package validation

import (
	"fmt"
	"strings"

	"github.com/iwvelando/premium-dashboard/pkg/constants"
	"github.com/iwvelando/premium-dashboard/pkg/datetime"
	"github.com/samber/lo"
)

// SelectionConfig is the analysis selection as written in a configuration.
type SelectionConfig struct {
	Period           string
	ComparisonPeriod string
	BusinessTypes    []string
}

// ValidateSelection returns warnings for a selection that will run but
// probably not as intended.
func ValidateSelection(sel SelectionConfig) []string {
	var warnings []string

	if sel.Period == "" {
		warnings = append(warnings, "No analysis period configured; one must be given on the command line")
	}

	if sel.ComparisonPeriod != "" && sel.ComparisonPeriod == sel.Period {
		warnings = append(warnings, fmt.Sprintf("Comparison period '%s' is the analysis period and will be rejected", sel.ComparisonPeriod))
	} else if sel.ComparisonPeriod != "" && sel.Period != "" {
		after, err := datetime.PeriodBefore(sel.Period, sel.ComparisonPeriod)
		if err == nil && after {
			warnings = append(warnings, fmt.Sprintf("Comparison period '%s' is later than analysis period '%s'",
				sel.ComparisonPeriod, sel.Period))
		}
	}

	for _, name := range sel.BusinessTypes {
		trimmed := strings.TrimSpace(name)
		switch {
		case trimmed == "":
			warnings = append(warnings, "Empty business type is ignored")
		case trimmed == constants.AggregateLabelZH || strings.EqualFold(trimmed, constants.AggregateLabelEN):
			warnings = append(warnings, fmt.Sprintf("Business type '%s' is an aggregate row and is ignored", trimmed))
		}
	}

	for _, dup := range lo.FindDuplicates(lo.Map(sel.BusinessTypes, func(s string, _ int) string { return strings.TrimSpace(s) })) {
		if dup != "" {
			warnings = append(warnings, fmt.Sprintf("Business type '%s' is listed more than once", dup))
		}
	}

	return warnings
}
