package kpi

import (
	"math"

	"github.com/iwvelando/premium-dashboard/pkg/constants"
)

// Direction classifies a change from the reader's point of view.
type Direction string

const (
	Positive Direction = "positive"
	Negative Direction = "negative"
	Neutral  Direction = "neutral"
)

// Change is the difference between a value and its baseline.
type Change struct {
	Absolute float64
	// Percent is relative to |previous|. It is +Inf or -Inf when the baseline
	// is zero and the value is not.
	Percent float64
	Type    Direction
}

// ChangeAndType compares current against previous with the default neutral band.
func ChangeAndType(current, previous float64, higherIsBetter bool) Change {
	return ChangeAndTypeWithin(current, previous, higherIsBetter, constants.NeutralEpsilon)
}

// ChangeAndTypeWithin compares current against previous. Changes whose
// magnitude does not exceed band are neutral.
func ChangeAndTypeWithin(current, previous float64, higherIsBetter bool, band float64) Change {
	abs := current - previous

	var pct float64
	switch {
	case previous != 0:
		pct = abs / math.Abs(previous) * constants.PercentageMultiplier
	case current > 0:
		pct = math.Inf(1)
	case current < 0:
		pct = math.Inf(-1)
	}

	dir := Neutral
	if math.Abs(abs) > band {
		if (abs > 0) == higherIsBetter {
			dir = Positive
		} else {
			dir = Negative
		}
	}
	return Change{Absolute: abs, Percent: pct, Type: dir}
}
