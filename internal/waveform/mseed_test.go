package waveform_test

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strconv"
	"testing"
	"time"

	"github.com/GeoNet/quakechar/internal/waveform"
	"github.com/pkg/errors"
)

func sine(n int, fs, f float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.Sin(2 * math.Pi * f * float64(i) / fs)
	}
	return s
}

func TestMiniSEEDRoundTrip(t *testing.T) {
	var results = []struct {
		id string
		t  waveform.Trace
	}{
		{
			id: id(),
			t: waveform.Trace{
				Network: "NZ", Station: "WEL", Location: "10", Channel: "HHZ",
				Start:      time.Date(2023, time.May, 1, 10, 11, 12, 0, time.UTC),
				SampleRate: 100,
				Samples:    sine(200, 100, 1.5),
			},
		},
		{
			id: id(),
			t: waveform.Trace{
				Network: "NZ", Station: "SNZO", Channel: "HNE",
				Start:      time.Date(2020, time.January, 31, 23, 59, 0, 0, time.UTC),
				SampleRate: 12.5,
				Samples:    sine(56, 12.5, 0.5),
			},
		},
		{
			id: id(),
			t: waveform.Trace{
				Network: "NZ", Station: "URZ", Channel: "LHZ",
				Start:      time.Date(2019, time.March, 2, 0, 0, 0, 0, time.UTC),
				SampleRate: 0.5,
				Samples:    []float64{1, -2, 3},
			},
		},
	}

	for _, r := range results {
		var b bytes.Buffer

		if err := waveform.EncodeMiniSEED(&b, r.t); err != nil {
			t.Fatalf("%s: %s", r.id, err)
		}

		if b.Len()%512 != 0 {
			t.Errorf("%s: expected whole records got %d bytes", r.id, b.Len())
		}

		got, err := waveform.ReadMiniSEED(&b)
		if err != nil {
			t.Fatalf("%s: %s", r.id, err)
		}

		if !reflect.DeepEqual(r.t, got) {
			t.Errorf("%s: expected %+v got %+v", r.id, r.t, got)
		}
	}
}

func TestReadMiniSEEDErrors(t *testing.T) {
	if _, err := waveform.ReadMiniSEED(bytes.NewReader(nil)); !errors.Is(err, waveform.ErrNoSamples) {
		t.Errorf("expected ErrNoSamples for empty input got %v", err)
	}

	if _, err := waveform.ReadMiniSEED(bytes.NewReader(make([]byte, 100))); err == nil {
		t.Error("expected error for a short record")
	}

	var b bytes.Buffer
	start := time.Date(2023, time.May, 1, 0, 0, 0, 0, time.UTC)

	for _, s := range []string{"WEL", "TUZ"} {
		err := waveform.EncodeMiniSEED(&b, waveform.Trace{Network: "NZ", Station: s, Channel: "HHZ", Start: start, SampleRate: 100, Samples: []float64{1, 2}})
		if err != nil {
			t.Fatal(err)
		}
	}

	if _, err := waveform.ReadMiniSEED(&b); err == nil {
		t.Error("expected error for multiplexed input")
	}
}

func TestEncodeMiniSEEDRate(t *testing.T) {
	for _, fs := range []float64{0, -1, math.Inf(1), math.NaN(), 1234.567} {
		var b bytes.Buffer
		if err := waveform.EncodeMiniSEED(&b, waveform.Trace{SampleRate: fs, Samples: []float64{1}}); err == nil {
			t.Errorf("expected error for sample rate %v", fs)
		}
	}
}

func TestStore(t *testing.T) {
	dir := t.TempDir()

	tr := waveform.Trace{
		Network: "NZ", Station: "WEL", Location: "10", Channel: "HHZ",
		Start:      time.Date(2023, time.May, 1, 10, 11, 12, 0, time.UTC),
		SampleRate: 50,
		Samples:    sine(120, 50, 2),
	}

	var b bytes.Buffer
	if err := waveform.EncodeMiniSEED(&b, tr); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(dir, "wel.mseed"), b.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not data"), 0o600); err != nil {
		t.Fatal(err)
	}

	s := waveform.NewStore("TestStore", dir, 1<<20)

	files, err := s.Files()
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(files, []string{"wel.mseed"}) {
		t.Errorf("expected [wel.mseed] got %v", files)
	}

	// second read is from the cache.
	for i := 0; i < 2; i++ {
		got, err := s.Trace(context.Background(), "wel.mseed")
		if err != nil {
			t.Fatal(err)
		}

		if !reflect.DeepEqual(tr, got) {
			t.Errorf("expected %+v got %+v", tr, got)
		}
	}

	if _, err := s.Trace(context.Background(), "missing.mseed"); !errors.Is(err, waveform.ErrNotFound) {
		t.Errorf("expected ErrNotFound got %v", err)
	}

	for _, f := range []string{"../wel.mseed", "notes.txt", "", "/etc/passwd.mseed"} {
		if _, err := s.Trace(context.Background(), f); !errors.Is(err, waveform.ErrInvalidName) {
			t.Errorf("%q expected ErrInvalidName got %v", f, err)
		}
	}
}

func TestTraceNormalize(t *testing.T) {
	tr := waveform.Trace{Station: " wel", Channel: ""}
	tr.Normalize()

	if tr.Station != "WEL" || tr.Channel != waveform.DefaultChannel {
		t.Errorf("unexpected identifiers %s %s", tr.Station, tr.Channel)
	}

	tr = waveform.Trace{}
	tr.Normalize()

	if tr.Station != waveform.DefaultStation {
		t.Errorf("expected default station got %s", tr.Station)
	}

	if err := tr.Validate(); err == nil {
		t.Error("expected error for zero sample rate")
	}
}

func id() string {
	_, _, l, _ := runtime.Caller(1)
	return "L" + strconv.Itoa(l)
}
