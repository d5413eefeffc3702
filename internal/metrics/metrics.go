// metrics counts engine outcomes for Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels.
const (
	Computed   = "computed"
	Incomplete = "incomplete"
	Located    = "located"
	Unlocated  = "unlocated"
	Failed     = "failed"
)

// Metrics holds the engine counters and histograms.
type Metrics struct {
	Suggestions    prometheus.Counter
	Magnitudes     *prometheus.CounterVec // labels: method, outcome={computed,incomplete,failed}
	Locations      *prometheus.CounterVec // labels: outcome={located,unlocated,failed}
	LocateDuration prometheus.Histogram
}

// New creates the metrics and registers them with reg.  A nil reg leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Suggestions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quakechar",
			Name:      "suggestions_total",
			Help:      "Total P onset suggestions returned.",
		}),
		Magnitudes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quakechar",
			Name:      "magnitude_total",
			Help:      "Magnitude estimates by method and outcome.",
		}, []string{"method", "outcome"}),
		Locations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quakechar",
			Name:      "location_total",
			Help:      "Epicentre searches by outcome.",
		}, []string{"outcome"}),
		LocateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quakechar",
			Name:      "locate_duration_seconds",
			Help:      "Duration of an epicentre grid search.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
	}

	if reg != nil {
		reg.MustRegister(m.Suggestions, m.Magnitudes, m.Locations, m.LocateDuration)
	}

	return m
}

// Magnitude counts an estimate.  ok is false when no magnitude could be computed.
func (m *Metrics) Magnitude(method string, ok bool, err error) {
	outcome := Computed

	switch {
	case err != nil:
		outcome = Failed
	case !ok:
		outcome = Incomplete
	}

	m.Magnitudes.WithLabelValues(method, outcome).Inc()
}

// Location counts a search that started at start.
func (m *Metrics) Location(start time.Time, located bool, err error) {
	outcome := Located

	switch {
	case err != nil:
		outcome = Failed
	case !located:
		outcome = Unlocated
	}

	m.Locations.WithLabelValues(outcome).Inc()
	m.LocateDuration.Observe(time.Since(start).Seconds())
}
