// signal conditions raw seismic samples before picking and amplitude measurement.
//
// All functions return new slices and leave their input unchanged.
package signal

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// taperFraction is the share of the trace covered by the cosine ramp at each end.
const taperFraction = 0.05

// Condition removes the least squares linear trend, then the mean, and then applies
// a symmetric raised cosine taper to both ends of x.
func Condition(x []float64) []float64 {
	if len(x) == 0 {
		return []float64{}
	}

	y := Detrend(x)
	y = Demean(y)
	taper(y)

	return y
}

// Detrend returns x minus its least squares straight line fit against sample index.
func Detrend(x []float64) []float64 {
	y := make([]float64, len(x))

	if len(x) < 2 {
		return y
	}

	idx := make([]float64, len(x))
	floats.Span(idx, 0, float64(len(x)-1))

	alpha, beta := stat.LinearRegression(idx, x, nil, false)

	for i := range x {
		y[i] = x[i] - (alpha + beta*idx[i])
	}

	return y
}

// Demean returns x minus its mean.
func Demean(x []float64) []float64 {
	y := make([]float64, len(x))

	if len(x) == 0 {
		return y
	}

	m := stat.Mean(x, nil)

	for i := range x {
		y[i] = x[i] - m
	}

	return y
}

// Taper returns x with the raised cosine taper applied.
func Taper(x []float64) []float64 {
	y := make([]float64, len(x))
	copy(y, x)
	taper(y)
	return y
}

// taper applies the window in place.  The ramp covers 5% of the samples
// (at least one) at each end and starts from zero.
func taper(x []float64) {
	n := len(x)
	if n == 0 {
		return
	}

	k := int(math.Max(1, float64(n)*taperFraction))

	ramp := make([]float64, k)
	if k > 1 {
		for i := range ramp {
			ramp[i] = 0.5 * (1 - math.Cos(math.Pi*float64(i)/float64(k-1)))
		}
	}

	w := make([]float64, n)
	for i := range w {
		w[i] = 1
	}

	for i := 0; i < k && i < n; i++ {
		w[i] = ramp[i]
	}

	// the trailing ramp wins where the two overlap on short traces.
	for i := 0; i < k && n-k+i >= 0; i++ {
		w[n-k+i] = ramp[k-1-i]
	}

	floats.Mul(x, w)
}
