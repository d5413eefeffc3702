// picking holds phase picks and suggests P onsets with STA/LTA triggers.
package picking

import (
	"math"
	"strings"

	"github.com/pkg/errors"
)

type Phase string

const (
	P          Phase = "P"
	S          Phase = "S"
	PCandidate Phase = "P?"
)

// Pick origins.
const (
	Manual = "manual"
	STALTA = "sta_lta"
)

// Pick is a phase arrival.  TimeRel is in seconds from the trace start.
type Pick struct {
	Phase   Phase   `json:"phase"`
	TimeRel float64 `json:"time_rel"`
	Station string  `json:"station"`
	Channel string  `json:"channel"`
	Method  string  `json:"method"`
}

// Suggestion is a candidate onset from a trigger.  Score is the trigger
// value at the onset and is never negative.
type Suggestion struct {
	TimeRel float64 `json:"time_rel"`
	Score   float64 `json:"score"`
	Phase   Phase   `json:"phase"`
}

// Validate returns an error if p can not be stored or used.
func (p Pick) Validate() error {
	switch p.Phase {
	case P, S, PCandidate:
	default:
		return errors.Errorf("invalid phase %q", p.Phase)
	}

	if math.IsNaN(p.TimeRel) || math.IsInf(p.TimeRel, 0) {
		return errors.Errorf("invalid pick time %v", p.TimeRel)
	}

	if strings.TrimSpace(p.Station) == "" {
		return errors.New("pick has no station")
	}

	return nil
}

// Promote turns s into a pick of phase for a stream.
func (s Suggestion) Promote(phase Phase, station, channel string) Pick {
	return Pick{
		Phase:   phase,
		TimeRel: s.TimeRel,
		Station: station,
		Channel: channel,
		Method:  STALTA,
	}
}

// First returns the first pick of phase for station in picks.
func First(picks []Pick, station string, phase Phase) (Pick, bool) {
	for _, p := range picks {
		if p.Station == station && p.Phase == phase {
			return p, true
		}
	}

	return Pick{}, false
}
