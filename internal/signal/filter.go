package signal

import (
	"math"

	"github.com/GeoNet/quakechar/internal/waveform"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/dsp/fourier"
)

// Filter band limits samples taken at fs Hz to [fmin, fmax] Hz.
// fmin may be zero for a low pass.
type Filter interface {
	Bandpass(x []float64, fs, fmin, fmax float64) ([]float64, error)
}

// Butterworth is a zero phase Butterworth band pass built from cascaded
// second order sections.  The data are filtered forwards then backwards
// so the effective order is twice Corners.
type Butterworth struct {
	Corners int // filter order, even.  Zero selects 4.
}

// SpectralMask band limits in the frequency domain with a rectangular mask.
// The mask edges are raised cosine ramps 10% of the pass band wide centred
// on fmin and fmax.
type SpectralMask struct{}

type biquad struct {
	b0, b1, b2, a1, a2 float64
}

func (b Butterworth) Bandpass(x []float64, fs, fmin, fmax float64) ([]float64, error) {
	corners := b.Corners
	if corners == 0 {
		corners = 4
	}

	if corners < 2 || corners%2 != 0 {
		return nil, errors.Errorf("butterworth order must be even and positive, got %d", corners)
	}

	if err := checkBand(fs, fmin, fmax); err != nil {
		return nil, err
	}

	if fmax >= fs/2 {
		return nil, errors.Errorf("butterworth corner %v Hz at or above Nyquist %v Hz", fmax, fs/2)
	}

	var sections []biquad

	for k := 0; k < corners/2; k++ {
		q := 1 / (2 * math.Cos(math.Pi*float64(2*k+1)/float64(2*corners)))
		if fmin > 0 {
			sections = append(sections, highpass(fmin, fs, q))
		}
		sections = append(sections, lowpass(fmax, fs, q))
	}

	y := make([]float64, len(x))
	copy(y, x)

	for _, s := range sections {
		s.filter(y)
	}
	reverse(y)
	for _, s := range sections {
		s.filter(y)
	}
	reverse(y)

	for _, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.Errorf("butterworth unstable for %v-%v Hz at %v Hz", fmin, fmax, fs)
		}
	}

	return y, nil
}

func (SpectralMask) Bandpass(x []float64, fs, fmin, fmax float64) ([]float64, error) {
	if err := checkBand(fs, fmin, fmax); err != nil {
		return nil, err
	}

	n := len(x)
	if n == 0 {
		return []float64{}, nil
	}

	fft := fourier.NewFFT(n)
	coeff := fft.Coefficients(nil, x)

	ramp := 0.1 * (fmax - fmin)

	for i := range coeff {
		coeff[i] *= complex(maskGain(fft.Freq(i)*fs, fmin, fmax, ramp), 0)
	}

	y := fft.Sequence(nil, coeff)

	// the inverse transform is not normalised.
	for i := range y {
		y[i] /= float64(n)
	}

	return y, nil
}

func maskGain(f, lo, hi, ramp float64) float64 {
	half := ramp / 2

	switch {
	case f > hi+half:
		return 0
	case f > hi-half:
		return 0.5 * (1 + math.Cos(math.Pi*(f-(hi-half))/ramp))
	case lo == 0:
		return 1
	case f < lo-half:
		return 0
	case f < lo+half:
		return 0.5 * (1 - math.Cos(math.Pi*(f-(lo-half))/ramp))
	}

	return 1
}

func checkBand(fs, fmin, fmax float64) error {
	switch {
	case !waveform.ValidRate(fs):
		return errors.Wrapf(waveform.ErrSampleRate, "got %v", fs)
	case !(fmin >= 0) || !(fmax > fmin):
		return errors.Errorf("invalid band %v-%v Hz", fmin, fmax)
	}
	return nil
}

// lowpass and highpass are the bilinear transform sections from the
// Audio EQ Cookbook.
func lowpass(fc, fs, q float64) biquad {
	w := 2 * math.Pi * fc / fs
	cos := math.Cos(w)
	alpha := math.Sin(w) / (2 * q)
	a0 := 1 + alpha

	return biquad{
		b0: (1 - cos) / 2 / a0,
		b1: (1 - cos) / a0,
		b2: (1 - cos) / 2 / a0,
		a1: -2 * cos / a0,
		a2: (1 - alpha) / a0,
	}
}

func highpass(fc, fs, q float64) biquad {
	w := 2 * math.Pi * fc / fs
	cos := math.Cos(w)
	alpha := math.Sin(w) / (2 * q)
	a0 := 1 + alpha

	return biquad{
		b0: (1 + cos) / 2 / a0,
		b1: -(1 + cos) / a0,
		b2: (1 + cos) / 2 / a0,
		a1: -2 * cos / a0,
		a2: (1 - alpha) / a0,
	}
}

// filter runs the section over x in place (transposed direct form II).
func (q biquad) filter(x []float64) {
	var z1, z2 float64

	for i, v := range x {
		y := q.b0*v + z1
		z1 = q.b1*v - q.a1*y + z2
		z2 = q.b2*v - q.a2*y
		x[i] = y
	}
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}
