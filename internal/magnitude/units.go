package magnitude

import (
	"fmt"
	"strings"
)

// Unit is the physical unit assumed for raw samples.
type Unit string

const (
	Acceleration    Unit = "m/s²"
	AccelerationCGS Unit = "cm/s²"
	Velocity        Unit = "m/s"
	Displacement    Unit = "m"
)

// Sensor types.
const (
	SensorAccelerometer = "accelerometer"
	SensorVelocimeter   = "velocimeter"
	SensorDisplacement  = "displacement"
	SensorUnknown       = "unknown"
	SensorInventory     = "inventory"
)

// channel band and instrument code prefixes.
var families = map[string]struct {
	unit   Unit
	sensor string
}{
	"HN": {Acceleration, SensorAccelerometer},
	"BN": {Acceleration, SensorAccelerometer},
	"EN": {Acceleration, SensorAccelerometer},
	"SN": {Acceleration, SensorAccelerometer},
	"HH": {Velocity, SensorVelocimeter},
	"BH": {Velocity, SensorVelocimeter},
	"EH": {Velocity, SensorVelocimeter},
	"SH": {Velocity, SensorVelocimeter},
	"HL": {Displacement, SensorDisplacement},
	"BL": {Displacement, SensorDisplacement},
}

// Classify guesses the units of raw samples from a channel code.  Unknown
// codes are assumed to be acceleration in cm/s².  The warning describes the
// assumption made.
func Classify(channel string) (Unit, string, string) {
	c := strings.ToUpper(strings.TrimSpace(channel))

	if len(c) >= 2 {
		if f, ok := families[c[:2]]; ok {
			return f.unit, f.sensor, fmt.Sprintf("channel %s assumed %s in %s (no response metadata)", c, f.sensor, f.unit)
		}
	}

	if c == "" {
		return AccelerationCGS, SensorUnknown, "no channel code: assumed acceleration in cm/s²"
	}

	return AccelerationCGS, SensorUnknown, fmt.Sprintf("unknown channel %s: assumed acceleration in cm/s²", c)
}
