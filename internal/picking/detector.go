package picking

import (
	"math"

	"github.com/GeoNet/quakechar/internal/waveform"
	"github.com/pkg/errors"
)

// Config holds the STA/LTA settings.  Window lengths are in seconds.
type Config struct {
	STA            float64 `schema:"sta" json:"sta"`
	LTA            float64 `schema:"lta" json:"lta"`
	On             float64 `schema:"on" json:"on"`
	Off            float64 `schema:"off" json:"off"`
	MaxSuggestions int     `schema:"max" json:"max_suggestions"`
}

// DefaultConfig returns the standard detector settings.
func DefaultConfig() Config {
	return Config{
		STA:            1.0,
		LTA:            10.0,
		On:             2.5,
		Off:            1.0,
		MaxSuggestions: 3,
	}
}

// Validate returns an error for settings that can not be used.
func (c Config) Validate() error {
	switch {
	case !(c.STA > 0) || math.IsInf(c.STA, 0):
		return errors.Errorf("sta must be positive, got %v", c.STA)
	case !(c.LTA > 0) || math.IsInf(c.LTA, 0):
		return errors.Errorf("lta must be positive, got %v", c.LTA)
	case math.IsNaN(c.On) || c.On <= 0:
		return errors.Errorf("on threshold must be positive, got %v", c.On)
	case math.IsNaN(c.Off) || c.Off < 0 || c.Off > c.On:
		return errors.Errorf("off threshold must be between 0 and on (%v), got %v", c.On, c.Off)
	case c.MaxSuggestions < 0:
		return errors.Errorf("max suggestions must not be negative, got %d", c.MaxSuggestions)
	}

	return nil
}

// Detector suggests P onsets in a trace.
type Detector struct {
	trigger Trigger
}

// NewDetector returns a Detector using t.  A nil t uses ClassicSTALTA.
func NewDetector(t Trigger) *Detector {
	if t == nil {
		t = ClassicSTALTA{}
	}
	return &Detector{trigger: t}
}

// Windows converts the configured window lengths into sample counts for fs.
// The long window is always at least one sample longer than the short window.
func (c Config) Windows(fs float64) (nsta, nlta int) {
	nsta = int(math.Max(1, math.Round(c.STA*fs)))
	nlta = int(math.Max(float64(nsta+1), math.Round(c.LTA*fs)))
	return nsta, nlta
}

// Suggest returns up to cfg.MaxSuggestions P onset candidates in time order.
// A trace too short for the long window gives no suggestions.
func (d *Detector) Suggest(t waveform.Trace, cfg Config) ([]Suggestion, error) {
	if !waveform.ValidRate(t.SampleRate) {
		return nil, errors.Wrapf(waveform.ErrSampleRate, "got %v", t.SampleRate)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	suggestions := []Suggestion{}

	nsta, nlta := cfg.Windows(t.SampleRate)

	for _, o := range d.trigger.Onsets(t.Samples, nsta, nlta, cfg.On, cfg.Off, cfg.MaxSuggestions) {
		suggestions = append(suggestions, Suggestion{
			TimeRel: float64(o.Index) / t.SampleRate,
			Score:   math.Max(0, o.Score),
			Phase:   PCandidate,
		})
	}

	return suggestions, nil
}
