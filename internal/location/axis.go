package location

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Axis is a grid axis in km from Min to Max inclusive at Step spacing.
type Axis struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

// MaxAxisPoints is the most points a single Axis may have.
const MaxAxisPoints = 10001

// Validate returns an error for an axis that can not be searched or that
// has more than MaxAxisPoints points.
func (a Axis) Validate() error {
	_, err := a.count()
	return err
}

// Points returns Min + i*Step for every i that does not pass Max.
func (a Axis) Points() ([]float64, error) {
	n, err := a.count()
	if err != nil {
		return nil, err
	}

	p := make([]float64, n)
	for i := range p {
		p[i] = a.Min + float64(i)*a.Step
	}

	return p, nil
}

// count returns the number of points on the axis.
func (a Axis) count() (int, error) {
	switch {
	case !finite(a.Min) || !finite(a.Max) || !finite(a.Step):
		return 0, errors.Errorf("axis values must be finite, got %v,%v,%v", a.Min, a.Max, a.Step)
	case a.Step <= 0:
		return 0, errors.Errorf("axis step must be positive, got %v", a.Step)
	case a.Min > a.Max:
		return 0, errors.Errorf("axis min %v is greater than max %v", a.Min, a.Max)
	}

	steps := math.Floor((a.Max - a.Min + axisTolerance) / a.Step)
	if !finite(steps) || steps+1 > MaxAxisPoints {
		return 0, errors.Errorf("axis %v,%v,%v has more than %d points", a.Min, a.Max, a.Step, MaxAxisPoints)
	}

	return int(steps) + 1, nil
}

// UnmarshalText parses "min,max,step".
func (a *Axis) UnmarshalText(text []byte) error {
	parts := strings.Split(string(text), ",")
	if len(parts) != 3 {
		return errors.Errorf("axis must be min,max,step: %q", text)
	}

	var v [3]float64

	for i, s := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return errors.Wrapf(err, "axis %q", text)
		}
		v[i] = f
	}

	*a = Axis{Min: v[0], Max: v[1], Step: v[2]}

	return nil
}

// MarshalText is the inverse of UnmarshalText.
func (a Axis) MarshalText() ([]byte, error) {
	return []byte(strconv.FormatFloat(a.Min, 'g', -1, 64) + "," +
		strconv.FormatFloat(a.Max, 'g', -1, 64) + "," +
		strconv.FormatFloat(a.Step, 'g', -1, 64)), nil
}
