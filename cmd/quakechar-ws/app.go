package main

import (
	"context"
	"database/sql"
	"log"
	"os"

	"github.com/GeoNet/quakechar/internal/config"
	"github.com/GeoNet/quakechar/internal/magnitude"
	"github.com/GeoNet/quakechar/internal/metrics"
	"github.com/GeoNet/quakechar/internal/pickdb"
	"github.com/GeoNet/quakechar/internal/picking"
	"github.com/GeoNet/quakechar/internal/response"
	"github.com/GeoNet/quakechar/internal/signal"
	"github.com/GeoNet/quakechar/internal/waveform"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// app is for shared application resources
type app struct {
	cfg         config.Config
	traces      *waveform.Store     // nil without DATA_DIR
	inventory   *response.Inventory // nil without INVENTORY_FILE
	remover     magnitude.ResponseRemover
	picks       pickdb.Store
	conditioner *signal.Conditioner
	detector    *picking.Detector
	metrics     *metrics.Metrics
	gatherer    prometheus.Gatherer
	db          *sql.DB
}

func newApp(c config.Config, reg *prometheus.Registry) (*app, error) {
	a := &app{
		cfg:         c,
		conditioner: signal.NewConditioner(c.NewFilter()),
		detector:    picking.NewDetector(c.NewTrigger()),
		metrics:     metrics.New(reg),
		gatherer:    reg,
	}

	if c.DataDir != "" {
		a.traces = waveform.NewStore("traces:"+c.DataDir, c.DataDir, c.TraceCacheBytes)
	}

	if c.InventoryFile != "" {
		if err := a.initInventory(c.InventoryFile); err != nil {
			return nil, err
		}
	}

	switch c.PickDB {
	case config.Postgres:
		if err := a.initDB(); err != nil {
			return nil, err
		}
	default:
		a.picks = pickdb.NewMemory(nil)
	}

	return a, nil
}

func (a *app) initInventory(file string) error {
	f, err := os.Open(file)
	if err != nil {
		return errors.Wrap(err, "opening inventory")
	}
	defer f.Close()

	a.inventory, err = response.ReadInventory(f)
	if err != nil {
		return errors.Wrapf(err, "reading inventory %s", file)
	}

	a.remover = response.NewRemover(a.inventory)

	log.Printf("loaded inventory for %d stations", len(a.inventory.Stations()))

	return nil
}

func (a *app) initDB() error {
	p := a.cfg.Postgres

	var err error

	// set a statement timeout to cancel any very long running DB queries.
	// Value is int milliseconds.
	a.db, err = sql.Open("postgres", p.Connection()+" statement_timeout=60000")
	if err != nil {
		return errors.Wrap(err, "error with DB config")
	}

	a.db.SetMaxIdleConns(p.MaxIdle)
	a.db.SetMaxOpenConns(p.MaxOpen)

	if err = a.db.Ping(); err != nil {
		log.Println("ERROR: problem pinging DB - is it up and contactable? 500s will be served")
	}

	s := pickdb.NewPostgres(a.db, nil)

	if err := s.Init(context.Background()); err != nil {
		log.Printf("ERROR: creating pick schema: %s", err)
	}

	a.picks = s

	return nil
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
}
