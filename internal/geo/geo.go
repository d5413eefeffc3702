// geo converts between latitude and longitude and the local plane used by
// the epicentre search.  The plane is centred on a reference point with x
// east and y north in km.
package geo

import (
	"math"

	"github.com/GeoNet/kit/wgs84"
	"github.com/GeoNet/quakechar/internal/location"
	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
	"github.com/pkg/errors"
)

// EarthRadius is the mean earth radius in km.
const EarthRadius = 6371.0

// DefaultRadius is the radius in km of the synthetic station circle.
const DefaultRadius = 20.0

// unprojectIterations refines the spherical inverse against the ellipsoidal forward projection.
const unprojectIterations = 5

// Point is a geographic position in decimal degrees.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate returns an error for positions off the globe.
func (p Point) Validate() error {
	switch {
	case math.IsNaN(p.Latitude) || p.Latitude < -90 || p.Latitude > 90:
		return errors.Errorf("invalid latitude %v", p.Latitude)
	case math.IsNaN(p.Longitude) || p.Longitude < -180 || p.Longitude > 360:
		return errors.Errorf("invalid longitude %v", p.Longitude)
	}
	return nil
}

// Project returns the position of lat, lon on the plane centred on refLat, refLon.
// Distance and azimuth are measured on the WGS84 ellipsoid.
func Project(lat, lon, refLat, refLon float64) (x, y float64, err error) {
	if err := (Point{Latitude: lat, Longitude: lon}).Validate(); err != nil {
		return 0, 0, err
	}
	if err := (Point{Latitude: refLat, Longitude: refLon}).Validate(); err != nil {
		return 0, 0, errors.Wrap(err, "reference")
	}

	if lat == refLat && lon == refLon {
		return 0, 0, nil
	}

	d, b, err := wgs84.DistanceBearing(refLat, refLon, lat, lon)
	if err != nil || math.IsNaN(d) || math.IsNaN(b) {
		d, b = sphere(refLat, refLon, lat, lon)
	}

	r := b * math.Pi / 180

	return d * math.Sin(r), d * math.Cos(r), nil
}

// sphere is the great circle distance in km and initial bearing in degrees.
func sphere(lat1, lon1, lat2, lon2 float64) (float64, float64) {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)

	φ1, φ2 := p1.Lat.Radians(), p2.Lat.Radians()
	dλ := p2.Lng.Radians() - p1.Lng.Radians()

	b := math.Atan2(math.Sin(dλ)*math.Cos(φ2), math.Cos(φ1)*math.Sin(φ2)-math.Sin(φ1)*math.Cos(φ2)*math.Cos(dλ))

	return p1.Distance(p2).Radians() * EarthRadius, math.Mod(b*180/math.Pi+360, 360)
}

// Unproject is the inverse of Project.  A spherical destination point is
// corrected until it projects back onto x, y.
func Unproject(x, y, refLat, refLon float64) (lat, lon float64, err error) {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return 0, 0, errors.Errorf("invalid plane position %v, %v", x, y)
	}
	if err := (Point{Latitude: refLat, Longitude: refLon}).Validate(); err != nil {
		return 0, 0, errors.Wrap(err, "reference")
	}

	ex, ey := x, y

	for i := 0; i < unprojectIterations; i++ {
		lat, lon = destination(refLat, refLon, ex, ey)

		px, py, err := Project(lat, lon, refLat, refLon)
		if err != nil {
			return 0, 0, err
		}

		ex += x - px
		ey += y - py
	}

	return lat, lon, nil
}

// destination moves from lat, lon by x east and y north along a great circle.
func destination(lat, lon, x, y float64) (float64, float64) {
	p := s2.LatLngFromDegrees(lat, lon)

	δ := math.Hypot(x, y) / EarthRadius
	θ := math.Atan2(x, y)
	φ, λ := p.Lat.Radians(), p.Lng.Radians()

	φ2 := math.Asin(math.Sin(φ)*math.Cos(δ) + math.Cos(φ)*math.Sin(δ)*math.Cos(θ))
	λ2 := λ + math.Atan2(math.Sin(θ)*math.Sin(δ)*math.Cos(φ), math.Cos(δ)-math.Sin(φ)*math.Sin(φ2))

	ll := s2.LatLng{Lat: s1.Angle(φ2), Lng: s1.Angle(λ2)}.Normalized()

	return ll.Lat.Degrees(), ll.Lng.Degrees()
}

// Centroid is the normalised mean of points on the unit sphere.
func Centroid(points []Point) (Point, error) {
	if len(points) == 0 {
		return Point{}, errors.New("no points for centroid")
	}

	var sum r3.Vector

	for _, p := range points {
		if err := p.Validate(); err != nil {
			return Point{}, err
		}
		sum = sum.Add(s2.PointFromLatLng(s2.LatLngFromDegrees(p.Latitude, p.Longitude)).Vector)
	}

	if sum.Norm() < 1e-12 {
		return Point{}, errors.New("points have no defined centroid")
	}

	ll := s2.LatLngFromPoint(s2.Point{Vector: sum.Normalize()})

	return Point{Latitude: ll.Lat.Degrees(), Longitude: ll.Lng.Degrees()}, nil
}

// Circle places stations at equal angles around the origin, starting on
// the +x axis and turning anticlockwise.  A radius <= 0 uses DefaultRadius.
func Circle(codes []string, radius float64) []location.Station {
	if !(radius > 0) {
		radius = DefaultRadius
	}

	s := make([]location.Station, len(codes))

	for i, c := range codes {
		a := 2 * math.Pi * float64(i) / float64(len(codes))
		s[i] = location.Station{Code: c, X: radius * math.Cos(a), Y: radius * math.Sin(a)}
	}

	return s
}
