package format

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NotApplicable is rendered for values that have no meaning in the current view.
const NotApplicable = "-"

var printer = message.NewPrinter(language.English)

// Value renders v according to kind, with thousands separators. Percentages
// carry a trailing "%".
func Value(kind Kind, v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NotApplicable
	}
	s := Number(v, kind.Decimals())
	if kind == KindPercentage {
		return s + "%"
	}
	return s
}

// Optional renders a possibly missing value.
func Optional(kind Kind, v *float64) string {
	if v == nil {
		return NotApplicable
	}
	return Value(kind, *v)
}

// Number renders v with the given decimals and thousands separators.
func Number(v float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	s := printer.Sprintf(fmt.Sprintf("%%.%df", decimals), v)
	// Avoid "-0.00" for values that round to zero.
	if strings.HasPrefix(s, "-") && strings.Trim(s, "-0.,") == "" {
		return s[1:]
	}
	return s
}

// Signed renders v like Number but always carries a sign.
func Signed(v float64, decimals int) string {
	s := Number(v, decimals)
	if strings.HasPrefix(s, "-") || strings.Trim(s, "0.,") == "" {
		return s
	}
	return "+" + s
}

// PercentChange renders a relative change. Infinite changes, which occur when
// the baseline is zero, render as a signed infinity sentinel.
func PercentChange(pct float64) string {
	switch {
	case math.IsNaN(pct):
		return NotApplicable
	case math.IsInf(pct, 1):
		return "+∞%"
	case math.IsInf(pct, -1):
		return "-∞%"
	}
	return Signed(pct, 2) + "%"
}

// AbsoluteChange renders the difference between two values of the given kind.
// Rate changes are reported in percentage points.
func AbsoluteChange(kind Kind, delta float64) string {
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return NotApplicable
	}
	s := Signed(delta, kind.Decimals())
	if kind.IsRate() {
		return s + "pp"
	}
	return s
}
