package pickdb

import (
	"context"
	"database/sql"

	"github.com/GeoNet/quakechar/internal/picking"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

// http://www.postgresql.org/docs/9.4/static/errcodes-appendix.html
const (
	errorUniqueViolation pq.ErrorCode = "23505"
)

// Schema creates the pick table.
const Schema = `CREATE SCHEMA IF NOT EXISTS quakechar;
CREATE TABLE IF NOT EXISTS quakechar.pick (
	id UUID PRIMARY KEY,
	created TIMESTAMP(6) WITH TIME ZONE NOT NULL,
	station TEXT NOT NULL,
	channel TEXT NOT NULL,
	phase TEXT NOT NULL,
	time_rel DOUBLE PRECISION NOT NULL,
	method TEXT NOT NULL,
	UNIQUE (station, channel, phase, time_rel, method)
);`

const (
	selectPick = `SELECT id, created, station, channel, phase, time_rel, method FROM quakechar.pick `
	orderPick  = ` ORDER BY created, id`
)

// Postgres is a Store in a Postgres database.
type Postgres struct {
	db    *sql.DB
	clock clockwork.Clock
}

// NewPostgres returns a Postgres using db.  A nil clock uses the real clock.
func NewPostgres(db *sql.DB, clock clockwork.Clock) *Postgres {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Postgres{db: db, clock: clock}
}

// Init creates the schema if it does not exist.
func (p *Postgres) Init(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, Schema)
	return errors.Wrap(err, "creating pick schema")
}

func (p *Postgres) Add(ctx context.Context, pk picking.Pick) (Entry, error) {
	pk, err := prepare(pk)
	if err != nil {
		return Entry{}, err
	}

	e := Entry{ID: uuid.NewString(), Created: p.clock.Now().UTC(), Pick: pk}

	_, err = p.db.ExecContext(ctx, `INSERT INTO quakechar.pick (id, created, station, channel, phase, time_rel, method)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.Created, pk.Station, pk.Channel, string(pk.Phase), pk.TimeRel, pk.Method)
	if err != nil {
		if u, ok := err.(*pq.Error); ok && u.Code == errorUniqueViolation {
			return p.existing(ctx, pk)
		}
		return Entry{}, errors.Wrap(err, "saving pick")
	}

	return e, nil
}

func (p *Postgres) existing(ctx context.Context, pk picking.Pick) (Entry, error) {
	rows, err := p.db.QueryContext(ctx, selectPick+
		`WHERE station = $1 AND channel = $2 AND phase = $3 AND time_rel = $4 AND method = $5`,
		pk.Station, pk.Channel, string(pk.Phase), pk.TimeRel, pk.Method)
	if err != nil {
		return Entry{}, errors.Wrap(err, "finding pick")
	}

	l, err := scan(rows)
	if err != nil {
		return Entry{}, err
	}

	if len(l) == 0 {
		return Entry{}, ErrNotFound
	}

	return l[0], nil
}

func (p *Postgres) List(ctx context.Context, station string) ([]Entry, error) {
	var rows *sql.Rows
	var err error

	switch station {
	case "":
		rows, err = p.db.QueryContext(ctx, selectPick+orderPick)
	default:
		rows, err = p.db.QueryContext(ctx, selectPick+`WHERE station = $1`+orderPick, station)
	}
	if err != nil {
		return nil, errors.Wrap(err, "listing picks")
	}

	return scan(rows)
}

func (p *Postgres) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}

	r, err := p.db.ExecContext(ctx, `DELETE FROM quakechar.pick WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting pick")
	}

	n, err := r.RowsAffected()
	if err != nil {
		return err
	}

	if n == 0 {
		return ErrNotFound
	}

	return nil
}

func scan(rows *sql.Rows) ([]Entry, error) {
	defer rows.Close()

	l := []Entry{}

	for rows.Next() {
		var e Entry
		var phase string

		if err := rows.Scan(&e.ID, &e.Created, &e.Station, &e.Channel, &phase, &e.TimeRel, &e.Method); err != nil {
			return nil, errors.Wrap(err, "reading pick")
		}

		e.Phase = picking.Phase(phase)
		e.Created = e.Created.UTC()
		l = append(l, e)
	}

	return l, errors.Wrap(rows.Err(), "reading picks")
}
