// Package choreo drives sub-assembly poses and the camera from a single
// playhead per choreography. Every channel is a pure function of time; the
// playhead only decides which time is sampled.
package choreo

import "math"

// Ease maps linear progress in [0,1] to eased progress.
type Ease func(t float64) float64

// Linear is the identity curve.
func Linear(t float64) float64 { return t }

// Power1Out decelerates quadratically.
func Power1Out(t float64) float64 { return 1 - (1-t)*(1-t) }

// Power2Out decelerates cubically.
func Power2Out(t float64) float64 { return 1 - math.Pow(1-t, 3) }

// Power2InOut accelerates then decelerates cubically.
func Power2InOut(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

// Eases lists the curves by name, for configuration.
var Eases = map[string]Ease{
	"linear":       Linear,
	"power1.out":   Power1Out,
	"power2.out":   Power2Out,
	"power2.inOut": Power2InOut,
}

func clamp01(t float64) float64 {
	switch {
	case t < 0:
		return 0
	case t > 1:
		return 1
	}
	return t
}
