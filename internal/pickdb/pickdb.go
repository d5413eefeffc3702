// pickdb archives phase picks.
package pickdb

import (
	"context"
	"sync"
	"time"

	"github.com/GeoNet/quakechar/internal/picking"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("pick not found")

// Entry is an archived pick.
type Entry struct {
	ID      string    `json:"id"`
	Created time.Time `json:"created"`
	picking.Pick
}

// Store archives picks.  Adding a pick identical to one already stored
// returns the stored entry.  List with an empty station returns every pick.
type Store interface {
	Add(ctx context.Context, p picking.Pick) (Entry, error)
	List(ctx context.Context, station string) ([]Entry, error)
	Delete(ctx context.Context, id string) error
}

// prepare validates p and fills the default method.
func prepare(p picking.Pick) (picking.Pick, error) {
	if p.Method == "" {
		p.Method = picking.Manual
	}

	return p, p.Validate()
}

// Memory is a Store held in RAM.
type Memory struct {
	mu      sync.Mutex
	clock   clockwork.Clock
	entries []Entry
}

// NewMemory returns an empty Memory.  A nil clock uses the real clock.
func NewMemory(clock clockwork.Clock) *Memory {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Memory{clock: clock}
}

func (m *Memory) Add(ctx context.Context, p picking.Pick) (Entry, error) {
	p, err := prepare(p)
	if err != nil {
		return Entry{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.entries {
		if e.Pick == p {
			return e, nil
		}
	}

	e := Entry{ID: uuid.NewString(), Created: m.clock.Now().UTC(), Pick: p}
	m.entries = append(m.entries, e)

	return e, nil
}

func (m *Memory) List(ctx context.Context, station string) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l := []Entry{}

	for _, e := range m.entries {
		if station == "" || e.Station == station {
			l = append(l, e)
		}
	}

	return l, nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, e := range m.entries {
		if e.ID == id {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return nil
		}
	}

	return ErrNotFound
}
