package picking_test

import (
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/GeoNet/quakechar/internal/picking"
	"github.com/GeoNet/quakechar/internal/waveform"
)

// event returns 60 s of low noise at 100 Hz with a 5 s, 5 Hz burst starting at 30 s.
func event() waveform.Trace {
	fs := 100.0
	r := rand.New(rand.NewSource(1))

	s := make([]float64, 6000)
	for i := range s {
		s[i] = 0.1 * r.NormFloat64()
		if t := float64(i) / fs; t >= 30 && t < 35 {
			s[i] += 5 * math.Sin(2*math.Pi*5*(t-30))
		}
	}

	return waveform.Trace{Station: "WEL", Channel: "HHZ", SampleRate: fs, Samples: s}
}

func TestSuggest(t *testing.T) {
	tr := event()

	var results = []struct {
		id       string
		trigger  picking.Trigger
		cfg      picking.Config
		count    int
		min, max float64
	}{
		{id: "classic", trigger: picking.ClassicSTALTA{}, cfg: picking.DefaultConfig(), count: 1, min: 29.9, max: 30.5},
		{id: "rms", trigger: picking.RollingRMS{}, cfg: picking.DefaultConfig(), count: 3, min: 30, max: 31.1},
		{id: "nil", trigger: nil, cfg: picking.DefaultConfig(), count: 1, min: 29.9, max: 30.5},
	}

	for _, r := range results {
		d := picking.NewDetector(r.trigger)

		s, err := d.Suggest(tr, r.cfg)
		if err != nil {
			t.Fatalf("%s: %s", r.id, err)
		}

		if len(s) != r.count {
			t.Fatalf("%s: expected %d suggestions got %d: %+v", r.id, r.count, len(s), s)
		}

		if s[0].TimeRel < r.min || s[0].TimeRel > r.max {
			t.Errorf("%s: expected first onset in [%v, %v] got %v", r.id, r.min, r.max, s[0].TimeRel)
		}

		for i, v := range s {
			if v.Phase != picking.PCandidate {
				t.Errorf("%s: expected phase P? got %s", r.id, v.Phase)
			}
			if v.TimeRel < 0 || v.TimeRel > tr.Duration() {
				t.Errorf("%s: time %v outside trace", r.id, v.TimeRel)
			}
			if v.Score < 0 {
				t.Errorf("%s: negative score %v", r.id, v.Score)
			}
			if i > 0 && v.TimeRel <= s[i-1].TimeRel {
				t.Errorf("%s: suggestions out of order", r.id)
			}
		}

		again, err := d.Suggest(tr, r.cfg)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(s, again) {
			t.Errorf("%s: repeated call gave different suggestions", r.id)
		}
	}
}

func TestSuggestLimits(t *testing.T) {
	d := picking.NewDetector(picking.ClassicSTALTA{})
	tr := event()

	cfg := picking.DefaultConfig()
	cfg.MaxSuggestions = 0

	s, err := d.Suggest(tr, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(s) != 0 {
		t.Errorf("expected no suggestions got %d", len(s))
	}

	short := waveform.Trace{SampleRate: 100, Samples: tr.Samples[:500]}

	s, err = d.Suggest(short, picking.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if s == nil || len(s) != 0 {
		t.Errorf("expected empty suggestions for a short trace got %v", s)
	}

	for _, fs := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := d.Suggest(waveform.Trace{SampleRate: fs, Samples: tr.Samples}, picking.DefaultConfig()); err == nil {
			t.Errorf("expected error for sample rate %v", fs)
		}
	}

	bad := []picking.Config{
		{STA: 0, LTA: 10, On: 2.5, Off: 1, MaxSuggestions: 3},
		{STA: 1, LTA: -1, On: 2.5, Off: 1, MaxSuggestions: 3},
		{STA: 1, LTA: 10, On: 2.5, Off: 3, MaxSuggestions: 3},
		{STA: 1, LTA: 10, On: 2.5, Off: 1, MaxSuggestions: -1},
	}

	for _, c := range bad {
		if _, err := d.Suggest(tr, c); err == nil {
			t.Errorf("expected error for config %+v", c)
		}
	}
}

func TestWindows(t *testing.T) {
	var results = []struct {
		cfg        picking.Config
		fs         float64
		nsta, nlta int
	}{
		{cfg: picking.DefaultConfig(), fs: 100, nsta: 100, nlta: 1000},
		{cfg: picking.Config{STA: 0.001, LTA: 0.001}, fs: 100, nsta: 1, nlta: 2},
		{cfg: picking.Config{STA: 2, LTA: 1}, fs: 10, nsta: 20, nlta: 21},
	}

	for _, r := range results {
		nsta, nlta := r.cfg.Windows(r.fs)
		if nsta != r.nsta || nlta != r.nlta {
			t.Errorf("%+v: expected %d %d got %d %d", r.cfg, r.nsta, r.nlta, nsta, nlta)
		}
	}
}

func TestFirst(t *testing.T) {
	picks := []picking.Pick{
		{Phase: picking.S, TimeRel: 12, Station: "WEL"},
		{Phase: picking.P, TimeRel: 10, Station: "WEL"},
		{Phase: picking.P, TimeRel: 11, Station: "WEL"},
		{Phase: picking.P, TimeRel: 5, Station: "TUZ"},
	}

	p, ok := picking.First(picks, "WEL", picking.P)
	if !ok || p.TimeRel != 10 {
		t.Errorf("expected first WEL P at 10 got %+v %v", p, ok)
	}

	if _, ok := picking.First(picks, "TUZ", picking.S); ok {
		t.Error("expected no TUZ S pick")
	}
}

func TestPick(t *testing.T) {
	s := picking.Suggestion{TimeRel: 3.5, Score: 4, Phase: picking.PCandidate}
	p := s.Promote(picking.P, "WEL", "HHZ")

	if p != (picking.Pick{Phase: picking.P, TimeRel: 3.5, Station: "WEL", Channel: "HHZ", Method: picking.STALTA}) {
		t.Errorf("unexpected pick %+v", p)
	}

	if err := p.Validate(); err != nil {
		t.Error(err)
	}

	for _, b := range []picking.Pick{
		{Phase: "X", TimeRel: 1, Station: "WEL"},
		{Phase: picking.P, TimeRel: math.NaN(), Station: "WEL"},
		{Phase: picking.P, TimeRel: 1},
	} {
		if err := b.Validate(); err == nil {
			t.Errorf("expected error for %+v", b)
		}
	}
}
