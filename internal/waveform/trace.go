// waveform holds single channel seismic traces and moves them to and from miniSEED.
package waveform

import (
	"math"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Default identifiers used for traces that arrive without stream metadata.
const (
	DefaultStation = "UNK"
	DefaultChannel = "HHZ"
)

var (
	ErrNoSamples  = errors.New("trace has no samples")
	ErrSampleRate = errors.New("sample rate must be positive and finite")
)

// Trace is a single channel of evenly sampled data.  Sample i is at
// Start + i/SampleRate seconds.
type Trace struct {
	Network    string    `json:"network,omitempty"`
	Station    string    `json:"station"`
	Location   string    `json:"location,omitempty"`
	Channel    string    `json:"channel"`
	Start      time.Time `json:"start"`
	SampleRate float64   `json:"sampling_rate"`
	Samples    []float64 `json:"samples"`
}

// Normalize upper cases the stream identifiers and fills in defaults
// for a missing station or channel.
func (t *Trace) Normalize() {
	t.Network = strings.ToUpper(strings.TrimSpace(t.Network))
	t.Station = strings.ToUpper(strings.TrimSpace(t.Station))
	t.Location = strings.ToUpper(strings.TrimSpace(t.Location))
	t.Channel = strings.ToUpper(strings.TrimSpace(t.Channel))

	if t.Station == "" {
		t.Station = DefaultStation
	}
	if t.Channel == "" {
		t.Channel = DefaultChannel
	}
}

// Validate returns an error if t can not be processed.
func (t Trace) Validate() error {
	if !ValidRate(t.SampleRate) {
		return errors.Wrapf(ErrSampleRate, "got %v", t.SampleRate)
	}

	if len(t.Samples) == 0 {
		return ErrNoSamples
	}

	return nil
}

// ValidRate returns true if fs can be used as a sampling rate.
func ValidRate(fs float64) bool {
	return fs > 0 && !math.IsInf(fs, 0) && !math.IsNaN(fs)
}

// Duration returns the span of the trace in seconds.
func (t Trace) Duration() float64 {
	if !ValidRate(t.SampleRate) {
		return 0
	}
	return float64(len(t.Samples)) / t.SampleRate
}

// Index converts a time relative to the trace start into a sample index.
// The index is truncated and may be out of range for the trace.
func (t Trace) Index(sec float64) int {
	return int(sec * t.SampleRate)
}

// Copy returns a copy of t that shares no memory with it.
func (t Trace) Copy() Trace {
	c := t
	c.Samples = make([]float64, len(t.Samples))
	copy(c.Samples, t.Samples)
	return c
}

// SrcName returns the stream identifier as NET_STA_LOC_CHA.
func (t Trace) SrcName() string {
	return strings.Join([]string{t.Network, t.Station, t.Location, t.Channel}, "_")
}
