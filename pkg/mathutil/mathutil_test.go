package mathutil

import (
	"math"
	"testing"
)

func TestSafeDivide(t *testing.T) {
	tests := []struct {
		name        string
		numerator   float64
		denominator float64
		onZero      float64
		expected    float64
	}{
		{"Regular division", 60, 130, 0, 60.0 / 130.0},
		{"Zero denominator", 10, 0, 0, 0},
		{"Zero denominator custom fallback", 10, 0, -1, -1},
		{"Zero over zero", 0, 0, 0, 0},
		{"Zero numerator", 0, 5, 0, 0},
		{"NaN denominator", 1, math.NaN(), 0, 0},
		{"Infinite numerator", math.Inf(1), 2, 0, 0},
		{"Negative values", -10, 4, 0, -2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SafeDivide(tt.numerator, tt.denominator, tt.onZero)
			if math.IsNaN(result) || math.Abs(result-tt.expected) > 1e-12 {
				t.Errorf("SafeDivide(%v, %v, %v) = %v, expected %v",
					tt.numerator, tt.denominator, tt.onZero, result, tt.expected)
			}
		})
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		total    float64
		expected float64
	}{
		{"Quarter", 25, 100, 25},
		{"Loss ratio", 60, 130, 46.15384615384615},
		{"Zero total", 5, 0, 0},
		{"Over one hundred", 190.95, 170.1, 112.25749559082892},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Percentage(tt.value, tt.total)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("Percentage(%v, %v) = %v, expected %v", tt.value, tt.total, result, tt.expected)
			}
		})
	}
}

func TestRoundTo(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		decimals int
		expected float64
	}{
		{"Two decimals up", 1.235, 2, 1.24},
		{"Four decimals", 46.153846, 4, 46.1538},
		{"Zero decimals", 3463.31, 0, 3463},
		{"Negative", -1.2345, 3, -1.235},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RoundTo(tt.input, tt.decimals)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("RoundTo(%v, %d) = %v, expected %v", tt.input, tt.decimals, result, tt.expected)
			}
		})
	}
}

func TestWithinTolerance(t *testing.T) {
	tests := []struct {
		name      string
		val1      float64
		val2      float64
		tolerance float64
		expected  bool
	}{
		{"Exactly equal", 1.0, 1.0, 0.1, true},
		{"Within tolerance", 1.0, 1.05, 0.1, true},
		{"Outside tolerance", 1.0, 1.15, 0.1, false},
		{"Zero tolerance no match", 1.0, 1.001, 0.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := WithinTolerance(tt.val1, tt.val2, tt.tolerance)
			if result != tt.expected {
				t.Errorf("WithinTolerance(%v, %v, %v) = %v, expected %v",
					tt.val1, tt.val2, tt.tolerance, result, tt.expected)
			}
		})
	}
}

func TestClampAndFinite(t *testing.T) {
	if got := Clamp(150, 0, 120); got != 120 {
		t.Errorf("Clamp above = %v, expected 120", got)
	}
	if got := Clamp(-3, 0, 120); got != 0 {
		t.Errorf("Clamp below = %v, expected 0", got)
	}
	if IsFinite(math.Inf(-1)) || IsFinite(math.NaN()) || !IsFinite(0) {
		t.Error("IsFinite misclassified a value")
	}
	if !IsZero(0.000001, 1e-5) || IsZero(0.1, 1e-5) {
		t.Error("IsZero misclassified a value")
	}
}
