package waypoints

import (
	"context"
	"sync"
	"time"

	"aircraft-fusion/internal/expiry"
	"aircraft-fusion/pkg/models"
)

const (
	builderTTL    = 30 * time.Minute
	sweepInterval = time.Minute
)

// Tracker owns one Builder per aircraft inside a short-TTL cache: builders
// for inactive aircraft are never deleted individually, they expire as a
// whole.
type Tracker struct {
	mu       sync.Mutex
	builders *expiry.Cache[models.AircraftID, *Builder]
	airports AirportLookup
}

func NewTracker(airports AirportLookup) *Tracker {
	return &Tracker{
		builders: expiry.New[models.AircraftID, *Builder](builderTTL, nil),
		airports: airports,
	}
}

func (t *Tracker) builder(id models.AircraftID) *Builder {
	t.mu.Lock()
	defer t.mu.Unlock()
	b, ok := t.builders.Get(id)
	if !ok {
		b = newBuilder(t.airports)
		t.builders.Put(id, b)
	} else {
		t.builders.Touch(id)
	}
	return b
}

// AppendState routes an applied state update to the aircraft's builder.
func (t *Tracker) AppendState(s models.StateData) {
	t.builder(s.ID).AppendState(s)
}

// AppendFlight routes an applied flight update to the aircraft's builder.
func (t *Tracker) AppendFlight(f models.FlightData) {
	t.builder(f.ID).AppendFlight(f)
}

// Waypoints returns the reconstructed path for id, or nil when there is no
// builder or no usable path.
func (t *Tracker) Waypoints(id models.AircraftID) []models.Waypoint {
	t.mu.Lock()
	b, ok := t.builders.Get(id)
	t.mu.Unlock()
	if !ok {
		return nil
	}
	return b.Waypoints()
}

// Run periodically expires inactive builders until ctx is cancelled.
func (t *Tracker) Run(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.mu.Lock()
			t.builders.Sweep(time.Now())
			t.mu.Unlock()
		}
	}
}
