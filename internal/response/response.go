// response removes instrument responses described by FDSN StationXML inventories.
package response

import (
	"encoding/xml"
	"io"
	"math"
	"math/cmplx"
	"strings"

	"github.com/GeoNet/quakechar/internal/signal"
	"github.com/GeoNet/quakechar/internal/waveform"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/dsp/fourier"
)

// DefaultWaterLevel is in dB below the peak of the response.
const DefaultWaterLevel = 60.0

var ErrNotFound = errors.New("no response in inventory")

// Inventory is a parsed StationXML document.
type Inventory struct {
	doc FDSNStationXML
}

// Response is the ground motion to counts response of a channel.
type Response struct {
	Zeros, Poles []complex128
	A0           float64 // normalisation factor for the poles and zeros
	Hertz        bool    // poles and zeros are in Hz not radians/second
	Sensitivity  float64 // counts per InputUnits
	InputUnits   string
}

// Remover removes responses found in Inventory, producing velocity in m/s.
type Remover struct {
	Inventory  *Inventory
	WaterLevel float64 // dB, zero or less disables the water level
}

// ReadInventory decodes StationXML from r.
func ReadInventory(r io.Reader) (*Inventory, error) {
	var inv Inventory

	if err := xml.NewDecoder(r).Decode(&inv.doc); err != nil {
		return nil, errors.Wrap(err, "decoding StationXML")
	}

	return &inv, nil
}

// NewRemover returns a Remover for inv with the default water level.
func NewRemover(inv *Inventory) *Remover {
	return &Remover{Inventory: inv, WaterLevel: DefaultWaterLevel}
}

// Coordinates returns the position of station.  The first matching station wins.
func (inv *Inventory) Coordinates(station string) (lat, lon float64, ok bool) {
	for _, n := range inv.doc.Network {
		for _, s := range n.Station {
			if strings.EqualFold(s.Code, station) {
				return s.Latitude.Value, s.Longitude.Value, true
			}
		}
	}

	return 0, 0, false
}

// Stations returns the station codes in the inventory in document order.
func (inv *Inventory) Stations() []string {
	var codes []string

	for _, n := range inv.doc.Network {
		for _, s := range n.Station {
			codes = append(codes, s.Code)
		}
	}

	return codes
}

// Response finds the response for a stream.  Empty network or location
// match any value.  The first poles and zeros stage is used with the
// instrument sensitivity.  Epochs are not checked.
func (inv *Inventory) Response(network, station, location, channel string) (Response, error) {
	for _, n := range inv.doc.Network {
		if network != "" && !strings.EqualFold(n.Code, network) {
			continue
		}

		for _, s := range n.Station {
			if !strings.EqualFold(s.Code, station) {
				continue
			}

			for _, c := range s.Channel {
				if !strings.EqualFold(c.Code, channel) {
					continue
				}
				if location != "" && !strings.EqualFold(c.LocationCode, location) {
					continue
				}

				return channelResponse(c)
			}
		}
	}

	return Response{}, errors.Wrapf(ErrNotFound, "%s_%s_%s_%s", network, station, location, channel)
}

func channelResponse(c ChannelType) (Response, error) {
	if c.Response == nil || c.Response.InstrumentSensitivity == nil {
		return Response{}, errors.Errorf("channel %s has no instrument sensitivity", c.Code)
	}

	sens := c.Response.InstrumentSensitivity

	var pz *PolesZerosType
	for _, s := range c.Response.Stage {
		if s.PolesZeros != nil {
			pz = s.PolesZeros
			break
		}
	}

	if pz == nil {
		return Response{}, errors.Errorf("channel %s has no poles and zeros stage", c.Code)
	}

	r := Response{
		Sensitivity: sens.Value,
	}

	if sens.InputUnits != nil {
		r.InputUnits = strings.ToUpper(sens.InputUnits.Name)
	}

	switch pz.PzTransferFunctionType {
	case LaplaceRadians, "":
	case LaplaceHertz:
		r.Hertz = true
	default:
		return Response{}, errors.Errorf("channel %s: unsupported transfer function %q", c.Code, pz.PzTransferFunctionType)
	}

	for _, z := range pz.Zero {
		r.Zeros = append(r.Zeros, complex(z.Real.Value, z.Imaginary.Value))
	}
	for _, p := range pz.Pole {
		r.Poles = append(r.Poles, complex(p.Real.Value, p.Imaginary.Value))
	}

	switch {
	case pz.NormalizationFactor != nil:
		r.A0 = *pz.NormalizationFactor
	default:
		var fn float64
		switch {
		case pz.NormalizationFrequency != nil:
			fn = pz.NormalizationFrequency.Value
		case sens.Frequency != nil:
			fn = *sens.Frequency
		default:
			fn = 1
		}

		r.A0 = 1
		if a := cmplx.Abs(r.poleZero(fn)); a > 0 {
			r.A0 = 1 / a
		}
	}

	if !(r.Sensitivity > 0) {
		return Response{}, errors.Errorf("channel %s: invalid sensitivity %v", c.Code, r.Sensitivity)
	}

	if _, err := r.exponent(); err != nil {
		return Response{}, errors.Wrapf(err, "channel %s", c.Code)
	}

	return r, nil
}

func (r Response) poleZero(f float64) complex128 {
	s := complex(0, 2*math.Pi*f)
	if r.Hertz {
		s = complex(0, f)
	}

	h := complex(1, 0)
	for _, z := range r.Zeros {
		h *= s - z
	}
	for _, p := range r.Poles {
		h /= s - p
	}

	return h
}

// exponent is the power of i2πf that converts input units to velocity.
func (r Response) exponent() (int, error) {
	switch r.InputUnits {
	case "M/S":
		return 0, nil
	case "M/S**2", "M/S2", "M/S/S":
		return 1, nil
	case "M":
		return -1, nil
	}

	return 0, errors.Errorf("unsupported input units %q", r.InputUnits)
}

// Eval returns the response in counts per input unit at f Hz.
func (r Response) Eval(f float64) complex128 {
	return complex(r.Sensitivity*r.A0, 0) * r.poleZero(f)
}

// Velocity returns the response in counts per m/s at f Hz.
func (r Response) Velocity(f float64) complex128 {
	h := r.Eval(f)

	k, err := r.exponent()
	if err != nil {
		return 0
	}

	iw := complex(0, 2*math.Pi*f)

	switch {
	case k > 0:
		h *= iw
	case k < 0:
		if iw == 0 {
			return 0
		}
		h /= iw
	}

	return h
}

// RemoveResponse returns the samples of t as velocity in m/s.  The trace is
// detrended and tapered then divided by the response in the frequency domain.
func (rm *Remover) RemoveResponse(t waveform.Trace) ([]float64, error) {
	if rm.Inventory == nil {
		return nil, errors.New("no inventory")
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}

	resp, err := rm.Inventory.Response(t.Network, t.Station, t.Location, t.Channel)
	if err != nil {
		return nil, err
	}

	x := signal.Condition(t.Samples)
	n := len(x)

	fft := fourier.NewFFT(n)
	coeff := fft.Coefficients(nil, x)

	h := make([]complex128, len(coeff))

	var peak float64
	for i := range coeff {
		h[i] = resp.Velocity(fft.Freq(i) * t.SampleRate)
		peak = math.Max(peak, cmplx.Abs(h[i]))
	}

	if peak == 0 {
		return nil, errors.Errorf("%s: response is zero", t.SrcName())
	}

	wl := 0.0
	if rm.WaterLevel > 0 {
		wl = peak * math.Pow(10, -rm.WaterLevel/20)
	}

	for i := range coeff {
		a := cmplx.Abs(h[i])
		if a == 0 {
			coeff[i] = 0
			continue
		}

		if a < wl {
			h[i] *= complex(wl/a, 0)
		}

		coeff[i] /= h[i]
	}

	y := fft.Sequence(nil, coeff)

	for i := range y {
		y[i] /= float64(n)
	}

	return y, nil
}
