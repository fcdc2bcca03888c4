// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/premium-dashboard/pkg/constants"
)

// SafeDivide returns numerator/denominator, or onZero when the denominator is
// zero or the quotient is not finite. Every ratio in the engine goes through
// here so that no NaN or Inf ever reaches an aggregated record.
func SafeDivide(numerator, denominator, onZero float64) float64 {
	if denominator == 0 || math.IsNaN(denominator) {
		return onZero
	}
	q := numerator / denominator
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return onZero
	}
	return q
}

// Percentage returns value/total expressed x100, 0 when total is zero.
func Percentage(value, total float64) float64 {
	return SafeDivide(value, total, 0) * constants.PercentageMultiplier
}

// ApplyPercentage applies a percentage to a value
func ApplyPercentage(value, percentage float64) float64 {
	return value * (percentage / constants.PercentageMultiplier)
}

// Round rounds to the nearest integer, used for counts.
func Round(val float64) float64 {
	return math.Round(val)
}

// RoundTo rounds a value to the given number of decimals.
func RoundTo(val float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(val*p) / p
}

// IsZero checks if a value is effectively zero (within tolerance)
func IsZero(val, tolerance float64) bool {
	return math.Abs(val) <= tolerance
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// IsFinite reports whether val is neither NaN nor infinite.
func IsFinite(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0)
}

// Clamp bounds val to [lo, hi].
func Clamp(val, lo, hi float64) float64 {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
