package geo_test

import (
	"math"
	"testing"

	"github.com/GeoNet/quakechar/internal/geo"
)

const wellingtonLat, wellingtonLon = -41.28, 174.77

func TestProjectRoundTrip(t *testing.T) {
	var results = []struct {
		id   string
		x, y float64
	}{
		{id: "east", x: 30, y: 0},
		{id: "north", x: 0, y: 45},
		{id: "south west", x: -20, y: -35},
		{id: "near", x: 0.5, y: -0.25},
	}

	for _, r := range results {
		lat, lon, err := geo.Unproject(r.x, r.y, wellingtonLat, wellingtonLon)
		if err != nil {
			t.Errorf("%s: %s", r.id, err)
			continue
		}

		x, y, err := geo.Project(lat, lon, wellingtonLat, wellingtonLon)
		if err != nil {
			t.Errorf("%s: %s", r.id, err)
			continue
		}

		if math.Abs(x-r.x) > 1e-3 || math.Abs(y-r.y) > 1e-3 {
			t.Errorf("%s: expected %v, %v got %v, %v", r.id, r.x, r.y, x, y)
		}
	}
}

func TestProject(t *testing.T) {
	x, y, err := geo.Project(wellingtonLat, wellingtonLon, wellingtonLat, wellingtonLon)
	if err != nil {
		t.Fatal(err)
	}
	if x != 0 || y != 0 {
		t.Errorf("expected the reference at the origin got %v, %v", x, y)
	}

	// one tenth of a degree north is about 11.1 km.
	x, y, err = geo.Project(wellingtonLat+0.1, wellingtonLon, wellingtonLat, wellingtonLon)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(x) > 1e-6 || math.Abs(y-11.1) > 0.1 {
		t.Errorf("expected 0, 11.1 got %v, %v", x, y)
	}

	x, y, err = geo.Project(wellingtonLat, wellingtonLon-0.1, wellingtonLat, wellingtonLon)
	if err != nil {
		t.Fatal(err)
	}
	if x >= 0 || math.Abs(y) > 0.1 {
		t.Errorf("expected a point to the west got %v, %v", x, y)
	}

	if _, _, err := geo.Project(91, 0, 0, 0); err == nil {
		t.Error("expected error for latitude 91")
	}

	if _, _, err := geo.Project(0, 0, math.NaN(), 0); err == nil {
		t.Error("expected error for NaN reference")
	}
}

func TestUnproject(t *testing.T) {
	lat, lon, err := geo.Unproject(0, 0, wellingtonLat, wellingtonLon)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(lat-wellingtonLat) > 1e-9 || math.Abs(lon-wellingtonLon) > 1e-9 {
		t.Errorf("expected the reference got %v, %v", lat, lon)
	}

	// east across the antimeridian.
	_, lon, err = geo.Unproject(100, 0, -41, 179.9)
	if err != nil {
		t.Fatal(err)
	}
	if lon > -178 || lon < -180 {
		t.Errorf("expected a wrapped longitude got %v", lon)
	}

	if _, _, err := geo.Unproject(math.Inf(1), 0, 0, 0); err == nil {
		t.Error("expected error for infinite x")
	}
}

func TestCentroid(t *testing.T) {
	c, err := geo.Centroid([]geo.Point{
		{Latitude: -41, Longitude: 174},
		{Latitude: -41, Longitude: 176},
		{Latitude: -40, Longitude: 175},
		{Latitude: -42, Longitude: 175},
	})
	if err != nil {
		t.Fatal(err)
	}

	if math.Abs(c.Latitude+41) > 0.01 || math.Abs(c.Longitude-175) > 1e-9 {
		t.Errorf("unexpected centroid %+v", c)
	}

	if _, err := geo.Centroid(nil); err == nil {
		t.Error("expected error for no points")
	}

	if _, err := geo.Centroid([]geo.Point{{Latitude: 0, Longitude: 0}, {Latitude: 0, Longitude: 180}}); err == nil {
		t.Error("expected error for antipodal points")
	}
}

func TestCircle(t *testing.T) {
	s := geo.Circle([]string{"AAA", "BBB", "CCC", "DDD"}, 0)

	exp := [][2]float64{{20, 0}, {0, 20}, {-20, 0}, {0, -20}}

	if len(s) != len(exp) {
		t.Fatalf("expected %d stations got %d", len(exp), len(s))
	}

	for i, e := range exp {
		if math.Abs(s[i].X-e[0]) > 1e-9 || math.Abs(s[i].Y-e[1]) > 1e-9 {
			t.Errorf("%s: expected %v got %v, %v", s[i].Code, e, s[i].X, s[i].Y)
		}
	}

	if s := geo.Circle(nil, 10); len(s) != 0 {
		t.Errorf("expected no stations got %v", s)
	}
}
