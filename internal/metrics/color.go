package metrics

import (
	"fmt"
	"math"

	"github.com/iwvelando/premium-dashboard/pkg/constants"
	"github.com/iwvelando/premium-dashboard/pkg/mathutil"
)

// HSL is a color in hue/saturation/lightness space. Hue is in degrees,
// saturation and lightness in percent.
type HSL struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	L float64 `json:"l"`
}

func (c HSL) String() string {
	return fmt.Sprintf("hsl(%.0f, %.0f%%, %.0f%%)", c.H, c.S, c.L)
}

// Neutral is used when no variable cost ratio is available.
var Neutral = HSL{H: 0, S: 0, L: 60}

// VCRColor maps a variable cost ratio onto a continuous green-to-red scale.
// Ratios at or below VCRHealthy are fully green, at or above VCRCritical fully
// red; saturation grows with the risk so that the worst segments stand out.
func VCRColor(vcr float64) HSL {
	if math.IsNaN(vcr) || math.IsInf(vcr, 0) {
		return Neutral
	}
	t := mathutil.Clamp((vcr-constants.VCRHealthy)/(constants.VCRCritical-constants.VCRHealthy), 0, 1)
	return HSL{
		H: mathutil.RoundTo(120*(1-t), 2),
		S: mathutil.RoundTo(60+25*t, 2),
		L: 45,
	}
}
