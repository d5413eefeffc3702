// config reads service configuration from environment variables.
package config

import (
	"os"
	"strconv"

	"github.com/GeoNet/kit/cfg"
	"github.com/GeoNet/quakechar/internal/magnitude"
	"github.com/GeoNet/quakechar/internal/picking"
	"github.com/GeoNet/quakechar/internal/signal"
	"github.com/pkg/errors"
)

// Filter and trigger implementations.
const (
	Butterworth = "butterworth"
	Spectral    = "spectral"
	Classic     = "classic"
	RMS         = "rms"
)

// Pick archive backends.
const (
	Memory   = "memory"
	Postgres = "postgres"
)

// Config is the service configuration.  Detector and band settings are the
// defaults for requests that do not override them.
type Config struct {
	Detector        picking.Config // [SEISMIC_API_STA, SEISMIC_API_LTA, SEISMIC_API_ON, SEISMIC_API_OFF, SEISMIC_API_MAX_SUGGESTIONS]
	FMin            float64        // Conditioning low corner in Hz [SEISMIC_API_FMIN].
	FMax            float64        // Conditioning high corner in Hz [SEISMIC_API_FMAX].
	Filter          string         // butterworth or spectral [SEISMIC_API_FILTER].
	Trigger         string         // classic or rms [SEISMIC_API_TRIGGER].
	LocateWorkers   int            // Concurrent grid columns [SEISMIC_API_LOCATE_WORKERS].
	DataDir         string         // miniSEED files served by name [DATA_DIR].
	TraceCacheBytes int64          // RAM for cached miniSEED files [TRACE_CACHE_BYTES].
	InventoryFile   string         // StationXML for response removal and coordinates [INVENTORY_FILE].
	HTTPAddr        string         // Listen address [HTTP_ADDR].
	PickDB          string         // memory or postgres [PICK_DB].
	Postgres        cfg.Postgres   // Read with cfg.PostgresEnv when PickDB is postgres.
}

// Default returns the configuration with no environment variables set.
func Default() Config {
	return Config{
		Detector:        picking.DefaultConfig(),
		FMin:            magnitude.DefaultFMin,
		FMax:            magnitude.DefaultFMax,
		Filter:          Butterworth,
		Trigger:         Classic,
		LocateWorkers:   1,
		TraceCacheBytes: 100 * 1024 * 1024,
		HTTPAddr:        ":8080",
		PickDB:          Memory,
	}
}

// Load returns Default overridden by any environment variables that are set.
func Load() (Config, error) {
	c := Default()

	for _, f := range []struct {
		env string
		v   *float64
	}{
		{"SEISMIC_API_STA", &c.Detector.STA},
		{"SEISMIC_API_LTA", &c.Detector.LTA},
		{"SEISMIC_API_ON", &c.Detector.On},
		{"SEISMIC_API_OFF", &c.Detector.Off},
		{"SEISMIC_API_FMIN", &c.FMin},
		{"SEISMIC_API_FMAX", &c.FMax},
	} {
		if err := float(f.env, f.v); err != nil {
			return Config{}, err
		}
	}

	if err := integer("SEISMIC_API_MAX_SUGGESTIONS", &c.Detector.MaxSuggestions); err != nil {
		return Config{}, err
	}

	if err := integer("SEISMIC_API_LOCATE_WORKERS", &c.LocateWorkers); err != nil {
		return Config{}, err
	}

	if s := os.Getenv("TRACE_CACHE_BYTES"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Config{}, errors.Wrap(err, "TRACE_CACHE_BYTES invalid")
		}
		c.TraceCacheBytes = n
	}

	str("SEISMIC_API_FILTER", &c.Filter)
	str("SEISMIC_API_TRIGGER", &c.Trigger)
	str("DATA_DIR", &c.DataDir)
	str("INVENTORY_FILE", &c.InventoryFile)
	str("HTTP_ADDR", &c.HTTPAddr)
	str("PICK_DB", &c.PickDB)

	if c.PickDB == Postgres {
		p, err := cfg.PostgresEnv()
		if err != nil {
			return Config{}, errors.Wrap(err, "reading DB config from the environment vars")
		}
		c.Postgres = p
	}

	return c, c.Validate()
}

// Validate returns an error for settings the service can not run with.
func (c Config) Validate() error {
	if err := c.Detector.Validate(); err != nil {
		return err
	}

	switch {
	case !(c.FMin >= 0) || !(c.FMax > c.FMin):
		return errors.Errorf("invalid conditioning band %v-%v Hz", c.FMin, c.FMax)
	case c.Filter != Butterworth && c.Filter != Spectral:
		return errors.Errorf("SEISMIC_API_FILTER must be %s or %s, got %q", Butterworth, Spectral, c.Filter)
	case c.Trigger != Classic && c.Trigger != RMS:
		return errors.Errorf("SEISMIC_API_TRIGGER must be %s or %s, got %q", Classic, RMS, c.Trigger)
	case c.LocateWorkers < 1:
		return errors.Errorf("SEISMIC_API_LOCATE_WORKERS must be at least 1, got %d", c.LocateWorkers)
	case c.TraceCacheBytes < 0:
		return errors.Errorf("TRACE_CACHE_BYTES must not be negative, got %d", c.TraceCacheBytes)
	case c.HTTPAddr == "":
		return errors.New("HTTP_ADDR must not be empty")
	case c.PickDB != Memory && c.PickDB != Postgres:
		return errors.Errorf("PICK_DB must be %s or %s, got %q", Memory, Postgres, c.PickDB)
	}

	return nil
}

// NewFilter returns the configured band pass implementation.
func (c Config) NewFilter() signal.Filter {
	if c.Filter == Spectral {
		return signal.SpectralMask{}
	}
	return signal.Butterworth{}
}

// NewTrigger returns the configured onset trigger.
func (c Config) NewTrigger() picking.Trigger {
	if c.Trigger == RMS {
		return picking.RollingRMS{}
	}
	return picking.ClassicSTALTA{}
}

func str(env string, v *string) {
	if s := os.Getenv(env); s != "" {
		*v = s
	}
}

func float(env string, v *float64) error {
	s := os.Getenv(env)
	if s == "" {
		return nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return errors.Wrapf(err, "%s invalid", env)
	}

	*v = f

	return nil
}

func integer(env string, v *int) error {
	s := os.Getenv(env)
	if s == "" {
		return nil
	}

	i, err := strconv.Atoi(s)
	if err != nil {
		return errors.Wrapf(err, "%s invalid", env)
	}

	*v = i

	return nil
}
