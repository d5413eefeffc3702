package signal

import (
	"fmt"
	"math"

	"github.com/GeoNet/quakechar/internal/waveform"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// Warnings added by Conditioner.Bandpass.
const (
	WarnFmaxClipped = "fmax clipped to Nyquist*0.45"
	WarnEmptyBand   = "empty band after clipping: filter not applied"
)

// nyquistFraction limits the upper corner to a fraction of the Nyquist frequency.
const nyquistFraction = 0.45

// Filter names accepted by Conditioner.Apply.
const (
	None     = "none"
	Bandpass = "bandpass"
	Highpass = "highpass"
	Lowpass  = "lowpass"
)

// Conditioner band passes samples with a Filter.  A failing Filter other than
// SpectralMask falls back to SpectralMask.
type Conditioner struct {
	filter Filter
}

// NewConditioner returns a Conditioner using f.  A nil f uses SpectralMask.
func NewConditioner(f Filter) *Conditioner {
	if f == nil {
		f = SpectralMask{}
	}
	return &Conditioner{filter: f}
}

// Nyquist returns the highest upper corner Bandpass will use for fs.
func Nyquist(fs float64) float64 {
	return nyquistFraction * fs / 2
}

// Bandpass filters x to [fmin, fmax] Hz.  fmax is clipped to Nyquist(fs) with a warning.
// If the band is empty after clipping the samples are returned unfiltered with a warning.
// An empty x returns an empty result.
func (c *Conditioner) Bandpass(x []float64, fs, fmin, fmax float64) ([]float64, []string, error) {
	var warnings []string

	if len(x) == 0 {
		return []float64{}, warnings, nil
	}

	if !waveform.ValidRate(fs) {
		return nil, nil, errors.Wrapf(waveform.ErrSampleRate, "got %v", fs)
	}

	if math.IsNaN(fmin) || math.IsNaN(fmax) || fmin < 0 {
		return nil, nil, errors.Errorf("invalid band %v-%v Hz", fmin, fmax)
	}

	if limit := Nyquist(fs); fmax > limit {
		fmax = limit
		warnings = append(warnings, WarnFmaxClipped)
	}

	if fmin >= fmax {
		y := make([]float64, len(x))
		copy(y, x)
		return y, append(warnings, WarnEmptyBand), nil
	}

	y, err := c.filter.Bandpass(x, fs, fmin, fmax)
	if err == nil {
		return y, warnings, nil
	}

	if _, ok := c.filter.(SpectralMask); ok {
		return nil, nil, err
	}

	warnings = append(warnings, fmt.Sprintf("filter failed (%s): used spectral mask", err))

	y, err = SpectralMask{}.Bandpass(x, fs, fmin, fmax)
	if err != nil {
		return nil, nil, err
	}

	return y, warnings, nil
}

// lowpassCorner is the lower corner used for Lowpass.
const lowpassCorner = 0.01

// Apply runs the named filter over x.  Highpass uses fmin up to the Nyquist limit,
// Lowpass uses 0.01 Hz to fmax, and None returns a copy of x.
func (c *Conditioner) Apply(kind string, x []float64, fs, fmin, fmax float64) ([]float64, []string, error) {
	switch kind {
	case None, "":
		y := make([]float64, len(x))
		copy(y, x)
		return y, nil, nil
	case Bandpass:
		return c.Bandpass(x, fs, fmin, fmax)
	case Highpass:
		return c.Bandpass(x, fs, fmin, Nyquist(fs))
	case Lowpass:
		return c.Bandpass(x, fs, lowpassCorner, fmax)
	}

	return nil, nil, errors.Errorf("unknown filter %q", kind)
}

// Integrate returns the cumulative trapezoidal integral of x sampled at fs Hz.
// The result is one sample shorter than x.
func Integrate(x []float64, fs float64) []float64 {
	if len(x) < 2 {
		return []float64{}
	}

	dt := 1 / fs
	y := make([]float64, len(x)-1)

	var sum float64
	for i := range y {
		sum += (x[i] + x[i+1]) / 2
		y[i] = sum * dt
	}

	return y
}

// Normalize scales x so the largest absolute value is 1.  An all zero x is returned as a copy.
func Normalize(x []float64) []float64 {
	y := make([]float64, len(x))
	copy(y, x)

	peak := Peak(x)
	if peak == 0 {
		return y
	}

	for i := range y {
		y[i] /= peak
	}

	return y
}

// Peak returns the largest absolute value in x.
// An empty x has a peak of zero.
func Peak(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}

	a := make([]float64, len(x))
	for i, v := range x {
		a[i] = math.Abs(v)
	}

	return floats.Max(a)
}

// Range returns the smallest and largest values across all of xs.
// It returns 0, 1 when there are no samples.
func Range(xs ...[]float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)

	for _, x := range xs {
		for _, v := range x {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}

	if math.IsInf(lo, 1) {
		return 0, 1
	}

	return lo, hi
}
