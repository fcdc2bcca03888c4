// Package validation provides common validation utilities.
package validation

import (
	"fmt"

	"github.com/iwvelando/premium-dashboard/pkg/constants"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	switch format {
	case constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON:
		return nil
	}
	return fmt.Errorf("expected output format of %s, %s or %s, got %s",
		constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON, format)
}

// ValidateSource checks if the data source kind is supported. An empty kind
// means the JSON file source.
func ValidateSource(kind string) error {
	switch kind {
	case "", constants.SourceJSON, constants.SourceSQLite:
		return nil
	}
	return fmt.Errorf("expected data source of %s or %s, got %s",
		constants.SourceJSON, constants.SourceSQLite, kind)
}

// ValidateMode checks if the analysis mode is supported. An empty mode means
// cumulative.
func ValidateMode(mode string) error {
	switch mode {
	case "", constants.ModeCumulative, constants.ModePeriodOverPeriod:
		return nil
	}
	return fmt.Errorf("expected analysis mode of %s or %s, got %s",
		constants.ModeCumulative, constants.ModePeriodOverPeriod, mode)
}
