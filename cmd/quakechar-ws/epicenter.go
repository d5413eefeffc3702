package main

import (
	"bytes"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/GeoNet/kit/weft"
	"github.com/GeoNet/quakechar/internal/geo"
	"github.com/GeoNet/quakechar/internal/location"
	"github.com/GeoNet/quakechar/internal/picking"
	"github.com/pkg/errors"
)

// WarnSyntheticLayout is returned when no station has coordinates.
const WarnSyntheticLayout = "stations have no coordinates: synthetic circular layout used, epicentre is not geographic"

// stationRequest has plane coordinates in km or a geographic position.
// A station with neither uses inventory coordinates for its code.
type stationRequest struct {
	Code      string   `json:"code"`
	X         *float64 `json:"x"`
	Y         *float64 `json:"y"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type epicenterRequest struct {
	Stations     []stationRequest         `json:"stations"`
	Picks        []picking.Pick           `json:"picks"`
	Observations []location.PSObservation `json:"observations"`
	VP           *float64                 `json:"vp"`
	VS           *float64                 `json:"vs"`
	Reference    *geo.Point               `json:"reference"`
}

type epicenterResponse struct {
	*location.Result
	Latitude  *float64   `json:"latitude,omitempty"`
	Longitude *float64   `json:"longitude,omitempty"`
	Reference *geo.Point `json:"reference,omitempty"`
	Warnings  []string   `json:"warnings"`
}

// layout is the stations on the plane and the reference point when they were projected.
type layout struct {
	stations  []location.Station
	reference *geo.Point
	warnings  []string
}

func (a *app) epicenter(r *http.Request, h http.Header, b *bytes.Buffer) error {
	err := weft.CheckQuery(r, []string{"POST"}, []string{}, []string{"grid_x", "grid_y", "min_stations"})
	if err != nil {
		return err
	}

	opts := location.DefaultOptions()

	if err := decoder.Decode(&opts, r.URL.Query()); err != nil {
		return badRequest(err)
	}
	opts.Workers = a.cfg.LocateWorkers

	var req epicenterRequest

	if err := readJSON(r, &req); err != nil {
		return err
	}

	model := location.DefaultModel()
	if req.VP != nil {
		model.VP = *req.VP
	}
	if req.VS != nil {
		model.VS = *req.VS
	}

	obs := req.Observations
	if len(obs) == 0 {
		picks, err := normalizePicks(req.Picks)
		if err != nil {
			return badRequest(err)
		}
		obs = location.Observations(picks)
	}

	for i := range obs {
		obs[i].Station = strings.ToUpper(strings.TrimSpace(obs[i].Station))
	}

	l, err := a.layout(req.Stations, obs, req.Reference)
	if err != nil {
		return badRequest(err)
	}

	start := time.Now()
	res, err := location.Locate(l.stations, obs, model, opts)
	a.metrics.Location(start, res != nil, err)

	if err != nil {
		return badRequest(err)
	}

	if res == nil {
		return weft.StatusError{Code: http.StatusNoContent}
	}

	out := epicenterResponse{Result: res, Reference: l.reference, Warnings: l.warnings}

	if l.reference != nil {
		lat, lon, err := geo.Unproject(res.X, res.Y, l.reference.Latitude, l.reference.Longitude)
		if err != nil {
			return err
		}
		out.Latitude, out.Longitude = &lat, &lon
	}

	if out.Warnings == nil {
		out.Warnings = []string{}
	}

	return writeJSON(h, b, out)
}

// layout puts stations on the plane.  Stations given in km are used as is.
// Geographic stations, or codes with inventory coordinates, are projected
// about ref or their centroid.  Mixing the two is an error.  With no
// coordinates at all the observed stations are placed on a circle.
func (a *app) layout(req []stationRequest, obs []location.PSObservation, ref *geo.Point) (layout, error) {
	var planar []location.Station
	var codes []string
	var points []geo.Point

	for _, s := range req {
		code := strings.ToUpper(strings.TrimSpace(s.Code))
		if code == "" {
			return layout{}, errors.New("station has no code")
		}

		switch {
		case s.X != nil && s.Y != nil:
			if !finite(*s.X) || !finite(*s.Y) {
				return layout{}, errors.Errorf("station %s has invalid coordinates", code)
			}
			planar = append(planar, location.Station{Code: code, X: *s.X, Y: *s.Y})
		case s.Latitude != nil && s.Longitude != nil:
			codes = append(codes, code)
			points = append(points, geo.Point{Latitude: *s.Latitude, Longitude: *s.Longitude})
		case s.X != nil || s.Y != nil || s.Latitude != nil || s.Longitude != nil:
			return layout{}, errors.Errorf("station %s needs both x and y or latitude and longitude", code)
		default:
			p, ok := a.coordinates(code)
			if !ok {
				return layout{}, errors.Errorf("station %s has no coordinates", code)
			}
			codes = append(codes, code)
			points = append(points, p)
		}
	}

	switch {
	case len(planar) > 0 && len(points) > 0:
		return layout{}, errors.New("stations mix plane and geographic coordinates")
	case len(planar) > 0:
		return layout{stations: planar}, nil
	case len(points) > 0:
		return project(codes, points, ref)
	}

	// no stations supplied: use the inventory when it knows every observed station.
	codes = codes[:0]
	points = points[:0]

	for _, o := range obs {
		p, ok := a.coordinates(o.Station)
		if !ok {
			codes = nil
			break
		}
		codes = append(codes, o.Station)
		points = append(points, p)
	}

	if len(codes) > 0 {
		return project(codes, points, ref)
	}

	codes = codes[:0]
	for _, o := range obs {
		codes = append(codes, o.Station)
	}

	return layout{stations: geo.Circle(codes, geo.DefaultRadius), warnings: []string{WarnSyntheticLayout}}, nil
}

func project(codes []string, points []geo.Point, ref *geo.Point) (layout, error) {
	if ref == nil {
		c, err := geo.Centroid(points)
		if err != nil {
			return layout{}, err
		}
		ref = &c
	}

	if err := ref.Validate(); err != nil {
		return layout{}, errors.Wrap(err, "reference")
	}

	l := layout{reference: ref}

	for i, p := range points {
		x, y, err := geo.Project(p.Latitude, p.Longitude, ref.Latitude, ref.Longitude)
		if err != nil {
			return layout{}, errors.Wrapf(err, "station %s", codes[i])
		}
		l.stations = append(l.stations, location.Station{Code: codes[i], X: x, Y: y})
	}

	return l, nil
}

// coordinates looks up station in the inventory.
func (a *app) coordinates(station string) (geo.Point, bool) {
	if a.inventory == nil {
		return geo.Point{}, false
	}

	lat, lon, ok := a.inventory.Coordinates(station)

	return geo.Point{Latitude: lat, Longitude: lon}, ok
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
