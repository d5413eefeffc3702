// location finds epicentres by grid search over P and S arrival times in a
// homogeneous half space.
package location

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Note is attached to every located result.
const Note = "OK (superficial homogeneous medium)"

// MaxGridPoints is the most grid points a single search may evaluate.
const MaxGridPoints = 1000000

// axisTolerance includes the axis maximum despite rounding in min + i*step.
const axisTolerance = 1e-9

// Station is a receiver on the local plane.  X is east and Y is north in km.
type Station struct {
	Code string  `json:"code"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// PSObservation is a P and S arrival at a station, in seconds on a common time base.
type PSObservation struct {
	Station string  `json:"station"`
	TP      float64 `json:"t_p"`
	TS      float64 `json:"t_s"`
}

// VelocityModel holds P and S velocities in km/s.
type VelocityModel struct {
	VP float64 `json:"vp" schema:"vp"`
	VS float64 `json:"vs" schema:"vs"`
}

// Residual is observed minus predicted P time at a station.
type Residual struct {
	Station  string  `json:"station"`
	Residual float64 `json:"residual"`
}

// Result is the best grid point.
type Result struct {
	X            float64    `json:"x"`
	Y            float64    `json:"y"`
	T0           float64    `json:"t0"`
	RMS          float64    `json:"rms"`
	Residuals    []Residual `json:"residuals"`
	UsedStations int        `json:"used_stations"`
	Notes        string     `json:"notes"`
}

// Options controls the grid search.  Workers greater than one searches
// x columns concurrently with the same result as a sequential search.
type Options struct {
	GridX       Axis `schema:"grid_x"`
	GridY       Axis `schema:"grid_y"`
	MinStations int  `schema:"min_stations"`
	Workers     int  `schema:"-"`
}

// DefaultModel is Vp 6.0 and Vs 3.5 km/s.
func DefaultModel() VelocityModel {
	return VelocityModel{VP: 6.0, VS: 3.5}
}

// DefaultOptions searches ±50 km at 2 km for at least 2 stations.
func DefaultOptions() Options {
	return Options{
		GridX:       Axis{Min: -50, Max: 50, Step: 2},
		GridY:       Axis{Min: -50, Max: 50, Step: 2},
		MinStations: 2,
		Workers:     1,
	}
}

// Validate returns an error for velocities that can not be used.
func (m VelocityModel) Validate() error {
	if !(m.VP > 0) || !(m.VS > 0) || math.IsInf(m.VP, 0) || math.IsInf(m.VS, 0) {
		return errors.Errorf("velocities must be positive and finite, got vp %v vs %v", m.VP, m.VS)
	}
	return nil
}

// valid is an observation joined to its station.
type valid struct {
	code         string
	x, y, tp, ts float64
}

// Locate grid searches for the epicentre that best fits obs.  It returns nil
// when fewer than opts.MinStations observations are usable or no grid point
// can be evaluated.  An error is only returned for an unusable model or grid,
// including a grid with more than MaxGridPoints points.
func Locate(stations []Station, obs []PSObservation, model VelocityModel, opts Options) (*Result, error) {
	if err := model.Validate(); err != nil {
		return nil, err
	}

	xs, err := opts.GridX.Points()
	if err != nil {
		return nil, errors.Wrap(err, "grid x")
	}

	ys, err := opts.GridY.Points()
	if err != nil {
		return nil, errors.Wrap(err, "grid y")
	}

	if len(xs)*len(ys) > MaxGridPoints {
		return nil, errors.Errorf("grid has %d points, the limit is %d", len(xs)*len(ys), MaxGridPoints)
	}

	known := make(map[string]Station)
	for _, s := range stations {
		if _, ok := known[s.Code]; !ok {
			known[s.Code] = s
		}
	}

	var use []valid

	for _, o := range obs {
		s, ok := known[o.Station]
		if !ok || !(o.TS > o.TP) {
			continue
		}
		use = append(use, valid{code: o.Station, x: s.X, y: s.Y, tp: o.TP, ts: o.TS})
	}

	if len(use) == 0 || len(use) < opts.MinStations {
		return nil, nil
	}

	var best *Result

	switch {
	case opts.Workers > 1 && len(xs) > 1:
		best, err = parallel(xs, ys, use, model, opts.Workers)
		if err != nil {
			return nil, err
		}
	default:
		for _, x := range xs {
			best = better(best, column(x, ys, use, model))
		}
	}

	if best == nil {
		return nil, nil
	}

	best.Notes = Note

	return best, nil
}

// parallel evaluates x columns concurrently and reduces them in column order.
func parallel(xs, ys []float64, use []valid, model VelocityModel, workers int) (*Result, error) {
	columns := make([]*Result, len(xs))

	var g errgroup.Group
	g.SetLimit(workers)

	for i := range xs {
		i := i
		g.Go(func() error {
			columns[i] = column(xs[i], ys, use, model)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var best *Result
	for _, c := range columns {
		best = better(best, c)
	}

	return best, nil
}

// column returns the best point for a fixed x, scanning y in order.
func column(x float64, ys []float64, use []valid, model VelocityModel) *Result {
	var best *Result

	candidates := make([]float64, 0, 2*len(use))

	for _, y := range ys {
		candidates = candidates[:0]

		for _, o := range use {
			d := math.Hypot(o.x-x, o.y-y)

			if t0 := o.tp - d/model.VP; finite(t0) {
				candidates = append(candidates, t0)
			}
			if t0 := o.ts - d/model.VS; finite(t0) {
				candidates = append(candidates, t0)
			}
		}

		if len(candidates) == 0 {
			continue
		}

		t0 := median(candidates)

		residuals := make([]Residual, 0, len(use))
		var sum float64

		for _, o := range use {
			d := math.Hypot(o.x-x, o.y-y)
			r := o.tp - (t0 + d/model.VP)
			residuals = append(residuals, Residual{Station: o.code, Residual: r})
			sum += r * r
		}

		rms := math.Sqrt(sum / float64(len(residuals)))

		best = better(best, &Result{X: x, Y: y, T0: t0, RMS: rms, Residuals: residuals, UsedStations: len(residuals)})
	}

	return best
}

// better returns the candidate when it has a strictly lower RMS than best.
func better(best, candidate *Result) *Result {
	switch {
	case candidate == nil || math.IsNaN(candidate.RMS):
		return best
	case best == nil || candidate.RMS < best.RMS:
		return candidate
	}
	return best
}

// median sorts v.  An even count gives the mean of the two middle values.
func median(v []float64) float64 {
	sort.Float64s(v)

	n := len(v)
	if n%2 == 1 {
		return v[n/2]
	}

	return (v[n/2-1] + v[n/2]) / 2
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
