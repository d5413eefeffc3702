package signal_test

import (
	"math"
	"reflect"
	"runtime"
	"strconv"
	"testing"

	"github.com/GeoNet/quakechar/internal/signal"
	"github.com/GeoNet/quakechar/internal/waveform"
	"github.com/pkg/errors"
)

func TestCondition(t *testing.T) {
	if y := signal.Condition([]float64{}); len(y) != 0 {
		t.Errorf("expected empty result got %v", y)
	}

	// a pure line detrends to zero.
	x := make([]float64, 100)
	for i := range x {
		x[i] = 3 + 0.5*float64(i)
	}

	for i, v := range signal.Condition(x) {
		if math.Abs(v) > 1e-9 {
			t.Fatalf("sample %d expected 0 got %v", i, v)
		}
	}

	// taper is zero at both ends and leaves the middle alone.
	ones := make([]float64, 100)
	for i := range ones {
		ones[i] = 1
	}

	y := signal.Taper(ones)
	if y[0] != 0 || y[99] != 0 {
		t.Errorf("expected zero ends got %v %v", y[0], y[99])
	}
	if y[50] != 1 {
		t.Errorf("expected untapered middle got %v", y[50])
	}
	if ones[0] != 1 {
		t.Error("input was modified")
	}

	if y := signal.Condition([]float64{7}); len(y) != 1 || y[0] != 0 {
		t.Errorf("expected [0] got %v", y)
	}
}

func TestIntegrate(t *testing.T) {
	var results = []struct {
		id  string
		x   []float64
		fs  float64
		exp []float64
	}{
		{id: id(), x: []float64{}, fs: 100, exp: []float64{}},
		{id: id(), x: []float64{1}, fs: 100, exp: []float64{}},
		{id: id(), x: []float64{1, 1, 1}, fs: 1, exp: []float64{1, 2}},
		{id: id(), x: []float64{0, 2, 4}, fs: 2, exp: []float64{0.5, 2}},
	}

	for _, r := range results {
		got := signal.Integrate(r.x, r.fs)
		if !reflect.DeepEqual(r.exp, got) {
			t.Errorf("%s: expected %v got %v", r.id, r.exp, got)
		}
	}
}

// rms over the middle half of x, away from filter edge effects.
func rms(x []float64) float64 {
	var s float64
	m := x[len(x)/4 : 3*len(x)/4]
	for _, v := range m {
		s += v * v
	}
	return math.Sqrt(s / float64(len(m)))
}

func tone(n int, fs, f float64) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = math.Sin(2 * math.Pi * f * float64(i) / fs)
	}
	return x
}

func TestFilters(t *testing.T) {
	fs := 100.0

	for _, f := range []signal.Filter{signal.Butterworth{}, signal.SpectralMask{}} {
		pass, err := f.Bandpass(tone(2000, fs, 5), fs, 1, 20)
		if err != nil {
			t.Fatalf("%T: %s", f, err)
		}

		if r := rms(pass); math.Abs(r-math.Sqrt(0.5)) > 0.05 {
			t.Errorf("%T: expected pass band rms near 0.707 got %v", f, r)
		}

		stop, err := f.Bandpass(tone(2000, fs, 40), fs, 1, 20)
		if err != nil {
			t.Fatalf("%T: %s", f, err)
		}

		if r := rms(stop); r > 0.05 {
			t.Errorf("%T: expected stop band rms near 0 got %v", f, r)
		}

		if _, err := f.Bandpass(tone(10, fs, 5), fs, 20, 1); err == nil {
			t.Errorf("%T: expected error for inverted band", f)
		}
	}

	if _, err := (signal.Butterworth{Corners: 3}).Bandpass(tone(10, fs, 5), fs, 1, 20); err == nil {
		t.Error("expected error for odd order")
	}
}

func TestConditionerBandpass(t *testing.T) {
	c := signal.NewConditioner(signal.Butterworth{})

	y, warnings, err := c.Bandpass([]float64{}, 100, 1, 20)
	if err != nil || len(y) != 0 || len(warnings) != 0 {
		t.Errorf("expected empty result got %v %v %v", y, warnings, err)
	}

	_, warnings, err = c.Bandpass(tone(500, 20, 1), 20, 1, 20)
	if err != nil {
		t.Fatal(err)
	}
	if !contains(warnings, signal.WarnFmaxClipped) {
		t.Errorf("expected clip warning got %v", warnings)
	}

	// Nyquist limit is 0.45 * 5 = 2.25 Hz.
	y, warnings, err = c.Bandpass([]float64{1, 2, 3}, 10, 3, 20)
	if err != nil {
		t.Fatal(err)
	}
	if !contains(warnings, signal.WarnEmptyBand) || !reflect.DeepEqual(y, []float64{1, 2, 3}) {
		t.Errorf("expected unfiltered samples with warning got %v %v", y, warnings)
	}

	for _, fs := range []float64{0, -100, math.Inf(1), math.NaN()} {
		if _, _, err := c.Bandpass([]float64{1, 2, 3}, fs, 1, 20); !errors.Is(err, waveform.ErrSampleRate) {
			t.Errorf("fs %v expected ErrSampleRate got %v", fs, err)
		}
	}
}

type broken struct{}

func (broken) Bandpass(x []float64, fs, fmin, fmax float64) ([]float64, error) {
	return nil, errors.New("design failed")
}

func TestConditionerFallback(t *testing.T) {
	c := signal.NewConditioner(broken{})

	y, warnings, err := c.Bandpass(tone(1000, 100, 5), 100, 1, 20)
	if err != nil {
		t.Fatal(err)
	}

	if len(y) != 1000 {
		t.Errorf("expected 1000 samples got %d", len(y))
	}

	if len(warnings) != 1 {
		t.Errorf("expected fallback warning got %v", warnings)
	}
}

func TestConditionerApply(t *testing.T) {
	c := signal.NewConditioner(nil)
	x := tone(1000, 100, 5)

	for _, k := range []string{signal.None, signal.Bandpass, signal.Highpass, signal.Lowpass} {
		y, _, err := c.Apply(k, x, 100, 1, 20)
		if err != nil {
			t.Errorf("%s: %s", k, err)
		}
		if len(y) != len(x) {
			t.Errorf("%s: expected %d samples got %d", k, len(x), len(y))
		}
	}

	if _, _, err := c.Apply("notch", x, 100, 1, 20); err == nil {
		t.Error("expected error for unknown filter")
	}
}

func TestNormalize(t *testing.T) {
	if got := signal.Normalize([]float64{-4, 2, 1}); !reflect.DeepEqual(got, []float64{-1, 0.5, 0.25}) {
		t.Errorf("unexpected %v", got)
	}

	if got := signal.Normalize([]float64{0, 0}); !reflect.DeepEqual(got, []float64{0, 0}) {
		t.Errorf("unexpected %v", got)
	}
}

func TestPeak(t *testing.T) {
	var results = []struct {
		x   []float64
		exp float64
	}{
		{x: nil, exp: 0},
		{x: []float64{0, 0}, exp: 0},
		{x: []float64{1, -4, 3}, exp: 4},
		{x: []float64{-2}, exp: 2},
	}

	for _, r := range results {
		if got := signal.Peak(r.x); got != r.exp {
			t.Errorf("%v: expected %v got %v", r.x, r.exp, got)
		}
	}
}

func TestRange(t *testing.T) {
	if lo, hi := signal.Range(); lo != 0 || hi != 1 {
		t.Errorf("expected 0 1 got %v %v", lo, hi)
	}

	if lo, hi := signal.Range([]float64{}, []float64{3, -2}, []float64{7}); lo != -2 || hi != 7 {
		t.Errorf("expected -2 7 got %v %v", lo, hi)
	}
}

func contains(s []string, v string) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}

func id() string {
	_, _, l, _ := runtime.Caller(1)
	return "L" + strconv.Itoa(l)
}
