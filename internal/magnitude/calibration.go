// magnitude estimates local magnitude (ML) from a single station trace with P and S picks.
package magnitude

import (
	"math"

	"github.com/pkg/errors"
)

// PSVelocityFactor converts an S-P interval in seconds into distance in km.
// It is 1/((1/Vs)-(1/Vp)) for Vp=6.0 and Vs=3.5 km/s, rounded.
const PSVelocityFactor = 8.4

// DistanceFromPS returns the distance in km for an S-P interval in seconds.
func DistanceFromPS(delta float64) float64 {
	return delta * PSVelocityFactor
}

// LogA0 is the piecewise Hutton-Boore calibration log10 A0(r) for distance r km.
func LogA0(r float64) float64 {
	if r <= 60 {
		return 0.018*r + 2.17
	}
	return 0.0038*r + 3.02
}

// HuttonBoore returns ML for a Wood-Anderson peak amplitude in mm at distance r km.
func HuttonBoore(amplitude, r float64) (float64, error) {
	if !(amplitude > 0) || !(r > 0) {
		return math.NaN(), errors.Errorf("amplitude and distance must be positive, got %v mm at %v km", amplitude, r)
	}

	return math.Log10(amplitude) - LogA0(r), nil
}

// Legacy is the uncalibrated formula used by the placeholder estimator.
func Legacy(amplitude, r float64) (float64, error) {
	if !(amplitude > 0) || !(r > 0) {
		return math.NaN(), errors.Errorf("amplitude and distance must be positive, got %v mm at %v km", amplitude, r)
	}

	return math.Log10(amplitude) + 1.11*math.Log10(r) + 0.00189*r - 2.09, nil
}
