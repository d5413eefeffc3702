package location

import (
	"sort"

	"github.com/GeoNet/quakechar/internal/picking"
)

// Observations pairs the first P and first S pick at each station.  Stations
// without both phases, or with S not after P, are left out.  The result is
// sorted by station code.
func Observations(picks []picking.Pick) []PSObservation {
	type pair struct {
		p, s       float64
		hasP, hasS bool
	}

	stations := make(map[string]*pair)

	for _, pk := range picks {
		v, ok := stations[pk.Station]
		if !ok {
			v = &pair{}
			stations[pk.Station] = v
		}

		switch pk.Phase {
		case picking.P:
			if !v.hasP {
				v.p, v.hasP = pk.TimeRel, true
			}
		case picking.S:
			if !v.hasS {
				v.s, v.hasS = pk.TimeRel, true
			}
		}
	}

	obs := []PSObservation{}

	for code, v := range stations {
		if v.hasP && v.hasS && v.s > v.p {
			obs = append(obs, PSObservation{Station: code, TP: v.p, TS: v.s})
		}
	}

	sort.Slice(obs, func(i, j int) bool { return obs[i].Station < obs[j].Station })

	return obs
}
