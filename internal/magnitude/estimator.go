package magnitude

import (
	"fmt"
	"math"

	"github.com/GeoNet/quakechar/internal/picking"
	"github.com/GeoNet/quakechar/internal/signal"
	"github.com/GeoNet/quakechar/internal/waveform"
	"github.com/pkg/errors"
)

type Method string

const (
	WoodAndersonMethod     Method = "wood_anderson"
	WoodAndersonInstMethod Method = "wood_anderson_inst"
	PlaceholderMethod      Method = "placeholder"
)

// Notes for results without a magnitude.
const (
	NoteMissingPicks = "Faltan picks P/S"
	NoteInvalidPS    = "Invalid P-S interval"
	NoteInsufficient = "Insufficient data"
	NoteEmptyWindow  = "Empty amplitude window"
	NoteZeroPeak     = "Zero peak amplitude"
)

// Warnings added to every result that reaches amplitude measurement.
const (
	WarnResponseNotRemoved = "IMPORTANT: instrument response not removed"
	WarnSingleStation      = "distance estimated from a single station S-P interval (high uncertainty)"
	WarnPreliminary        = "preliminary magnitude: requires regional calibration"
	WarnPlaceholder        = "non-rigorous placeholder: fictitious amplitude scale and no Wood-Anderson simulation, must not be used for reporting"
)

// WoodAndersonBand prefixes warnings from the Wood-Anderson band pass so they
// can be told apart from the conditioning pass.
const WoodAndersonBand = "wood-anderson band: "

const (
	// minSamples is the shortest trace that will be measured.
	minSamples = 10
	// maxWindow caps the amplitude window after P in seconds.
	maxWindow = 15.0
	// Wood-Anderson approximation band in Hz.
	waMin = 0.5
	waMax = 8.0

	placeholderWindow = 3.0
	placeholderScale  = 0.01
)

// DefaultFMin and DefaultFMax are the conditioning band in Hz.
const (
	DefaultFMin = 1.0
	DefaultFMax = 20.0
)

// Result is a magnitude estimate.  Nil pointers are values that could not be computed.
type Result struct {
	ML              *float64 `json:"ml"`
	AmplitudeMM     *float64 `json:"amplitude_mm"`
	DeltaPS         *float64 `json:"delta_ps"`
	DistanceKM      *float64 `json:"distance_km"`
	Notes           string   `json:"notes"`
	Method          Method   `json:"method"`
	Warnings        []string `json:"warnings"`
	ResponseRemoved bool     `json:"instrument_response_removed"`
	SensorType      string   `json:"sensor_type,omitempty"`
	UnitsAssumed    Unit     `json:"units_assumed,omitempty"`
}

// Estimator estimates ML for the station in t from picks.  Insufficient data is
// reported in the Result; an error is only returned for an unusable sample rate.
type Estimator interface {
	Estimate(picks []picking.Pick, t waveform.Trace) (Result, error)
}

// ResponseRemover corrects samples for the instrument response, returning velocity in m/s.
type ResponseRemover interface {
	RemoveResponse(t waveform.Trace) ([]float64, error)
}

// WoodAnderson estimates ML from an approximate Wood-Anderson displacement.
// A nil Remover leaves the instrument response in place.  A zero FMax uses the
// default band.
type WoodAnderson struct {
	Conditioner *signal.Conditioner
	Remover     ResponseRemover
	FMin, FMax  float64
}

// Placeholder is the legacy estimate kept for comparison only.
type Placeholder struct{}

// New returns the Estimator for m.  "legacy" is accepted for PlaceholderMethod.
func New(m Method, c *signal.Conditioner, r ResponseRemover) (Estimator, error) {
	switch m {
	case WoodAndersonMethod, "":
		return &WoodAnderson{Conditioner: c}, nil
	case WoodAndersonInstMethod:
		return &WoodAnderson{Conditioner: c, Remover: r}, nil
	case PlaceholderMethod, "legacy":
		return Placeholder{}, nil
	}

	return nil, errors.Errorf("unknown magnitude method %q", m)
}

// Method returns the tag used in results.
func (w *WoodAnderson) Method() Method {
	if w.Remover != nil {
		return WoodAndersonInstMethod
	}
	return WoodAndersonMethod
}

func (w *WoodAnderson) Estimate(picks []picking.Pick, t waveform.Trace) (Result, error) {
	if !waveform.ValidRate(t.SampleRate) {
		return Result{}, errors.Wrapf(waveform.ErrSampleRate, "got %v", t.SampleRate)
	}

	r := Result{Method: w.Method(), Warnings: []string{}}

	p, delta, ok := interval(&r, picks, t.Station)
	if !ok {
		return r, nil
	}

	distance := DistanceFromPS(delta)
	r.DistanceKM = &distance

	if len(t.Samples) < minSamples {
		r.Notes = NoteInsufficient
		r.Warnings = append(r.Warnings, fmt.Sprintf("trace has %d samples, need at least %d", len(t.Samples), minSamples))
		return r, nil
	}

	unit, sensor, warning := Classify(t.Channel)
	r.UnitsAssumed, r.SensorType = unit, sensor
	r.Warnings = append(r.Warnings, warning)

	data := t.Samples

	switch w.Remover {
	case nil:
		r.Warnings = append(r.Warnings, "no inventory supplied: instrument response not removed")
	default:
		v, err := w.Remover.RemoveResponse(t)
		switch {
		case err != nil:
			r.Warnings = append(r.Warnings, fmt.Sprintf("instrument response not removed: %s", err))
		case len(v) != len(t.Samples):
			r.Warnings = append(r.Warnings, fmt.Sprintf("instrument response not removed: got %d samples expected %d", len(v), len(t.Samples)))
		default:
			data = v
			unit = Velocity
			r.ResponseRemoved = true
			r.UnitsAssumed, r.SensorType = Velocity, SensorInventory
			r.Warnings = append(r.Warnings, "instrument response removed: velocity in m/s")
		}
	}

	c := w.Conditioner
	if c == nil {
		c = signal.NewConditioner(nil)
	}

	fmin, fmax := w.FMin, w.FMax
	if fmax == 0 {
		fmin, fmax = DefaultFMin, DefaultFMax
	}

	filtered, warnings, err := c.Bandpass(signal.Condition(data), t.SampleRate, fmin, fmax)
	if err != nil {
		return Result{}, err
	}
	r.Warnings = append(r.Warnings, warnings...)

	wa, warnings, err := c.Bandpass(displacementMM(filtered, t.SampleRate, unit), t.SampleRate, waMin, waMax)
	if err != nil {
		return Result{}, err
	}
	for _, w := range warnings {
		r.Warnings = append(r.Warnings, WoodAndersonBand+w)
	}

	peak, ok := windowPeak(&r, wa, t.SampleRate, p.TimeRel, math.Min(2*delta, maxWindow))
	if ok {
		ml, err := HuttonBoore(peak, distance)
		if err == nil {
			r.ML = &ml
			r.Notes = "ML Wood-Anderson (response not removed)"
			if r.ResponseRemoved {
				r.Notes = "ML Wood-Anderson (response removed)"
			}
		}
	}

	if !r.ResponseRemoved {
		r.Warnings = append(r.Warnings, WarnResponseNotRemoved)
	}
	r.Warnings = append(r.Warnings, WarnSingleStation, WarnPreliminary)

	return r, nil
}

func (Placeholder) Estimate(picks []picking.Pick, t waveform.Trace) (Result, error) {
	if !waveform.ValidRate(t.SampleRate) {
		return Result{}, errors.Wrapf(waveform.ErrSampleRate, "got %v", t.SampleRate)
	}

	r := Result{Method: PlaceholderMethod, Warnings: []string{WarnPlaceholder}}

	p, delta, ok := interval(&r, picks, t.Station)
	if !ok {
		return r, nil
	}

	distance := DistanceFromPS(delta)
	r.DistanceKM = &distance

	peak, ok := windowPeak(&r, t.Samples, t.SampleRate, p.TimeRel, placeholderWindow)
	if !ok {
		return r, nil
	}

	amplitude := peak * placeholderScale
	r.AmplitudeMM = &amplitude

	ml, err := Legacy(amplitude, distance)
	if err != nil {
		r.Notes = NoteZeroPeak
		return r, nil
	}

	r.ML = &ml
	r.Notes = "OK (not rigorous)"

	return r, nil
}

// interval finds the first P and S picks for station and the S-P interval.
// It sets the note on r and returns false when they can not be used.
func interval(r *Result, picks []picking.Pick, station string) (picking.Pick, float64, bool) {
	p, okP := picking.First(picks, station, picking.P)
	s, okS := picking.First(picks, station, picking.S)

	if !okP || !okS {
		r.Notes = NoteMissingPicks
		r.Warnings = append(r.Warnings, fmt.Sprintf("P and S picks are required for station %s", station))
		return p, 0, false
	}

	delta := s.TimeRel - p.TimeRel

	if !(delta > 0) || math.IsInf(delta, 0) {
		r.Notes = NoteInvalidPS
		r.Warnings = append(r.Warnings, fmt.Sprintf("S-P interval %v s must be positive", delta))
		if !math.IsNaN(delta) && !math.IsInf(delta, 0) {
			r.DeltaPS = &delta
		}
		return p, 0, false
	}

	r.DeltaPS = &delta

	return p, delta, true
}

// windowPeak returns the largest absolute value of x from tp to tp+window seconds.
// It sets the note on r and returns false for an empty window or a zero peak.
func windowPeak(r *Result, x []float64, fs, tp, window float64) (float64, bool) {
	start := int(tp * fs)
	if start < 0 {
		start = 0
	}

	end := int((tp + window) * fs)
	if end > len(x) {
		end = len(x)
	}

	if end <= start {
		r.Notes = NoteEmptyWindow
		r.Warnings = append(r.Warnings, fmt.Sprintf("no samples between %v and %v s", tp, tp+window))
		return 0, false
	}

	peak := signal.Peak(x[start:end])

	if math.IsNaN(peak) || math.IsInf(peak, 0) {
		r.Notes = NoteZeroPeak
		r.Warnings = append(r.Warnings, "peak amplitude is not finite")
		return 0, false
	}

	r.AmplitudeMM = &peak

	if peak == 0 {
		r.Notes = NoteZeroPeak
		return 0, false
	}

	return peak, true
}

// displacementMM converts conditioned samples in unit u into displacement in mm.
func displacementMM(x []float64, fs float64, u Unit) []float64 {
	var d []float64

	switch u {
	case Acceleration:
		d = signal.Integrate(signal.Integrate(x, fs), fs)
	case AccelerationCGS:
		m := make([]float64, len(x))
		for i, v := range x {
			m[i] = v / 100
		}
		d = signal.Integrate(signal.Integrate(m, fs), fs)
	case Velocity:
		d = signal.Integrate(x, fs)
	default:
		d = make([]float64, len(x))
		copy(d, x)
	}

	for i := range d {
		d[i] *= 1000
	}

	return d
}
