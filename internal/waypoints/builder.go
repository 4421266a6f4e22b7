// Package waypoints reconstructs per-aircraft flight paths from the stream of
// applied telemetry updates. A builder records a waypoint only when the
// aircraft has turned, climbed, or enough time has passed, so a long cruise
// collapses to its endpoints.
package waypoints

import (
	"math"
	"sort"
	"sync"
	"time"

	"aircraft-fusion/pkg/models"
)

const (
	gapTrigger      = 15 * time.Minute
	headingTrigger  = 2.5   // degrees
	altitudeTrigger = 100.0 // meters
)

// AirportLookup resolves airport codes to reference data. A nil result means
// the airport is unknown.
type AirportLookup interface {
	Get(code string) *models.Airport
}

// Builder accumulates the path of a single aircraft. All methods are
// serialized by an internal mutex; different aircraft are independent.
type Builder struct {
	mu       sync.Mutex
	airports AirportLookup

	waypoints    []models.Waypoint
	lastState    *models.StateData
	lastRecorded *models.StateData
	departure    *models.Waypoint
	prepended    bool

	path      []models.Waypoint
	pathValid bool
}

func newBuilder(airports AirportLookup) *Builder {
	return &Builder{airports: airports}
}

// AppendState feeds one applied state snapshot into the builder.
func (b *Builder) AppendState(s models.StateData) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if s.OnGround {
		// A new flight is starting.
		b.waypoints = nil
		b.lastState = nil
		b.lastRecorded = nil
		b.departure = nil
		b.prepended = false
		b.invalidate()
		return
	}

	if b.shouldRecord(s) {
		pos := s.Position
		if pos == nil {
			pos = b.lastPosition()
		}
		if pos != nil {
			b.waypoints = append(b.waypoints, models.Waypoint{Time: s.Time, Position: *pos})
			rec := s.Copy()
			b.lastRecorded = &rec
		}
	}

	st := s.Copy()
	b.lastState = &st
	b.invalidate()
}

func (b *Builder) shouldRecord(s models.StateData) bool {
	last := b.lastRecorded
	if last == nil {
		return true
	}
	if s.Time.Sub(last.Time) >= gapTrigger {
		return true
	}
	if s.Heading != nil && last.Heading != nil &&
		headingDelta(*s.Heading, *last.Heading) > headingTrigger {
		return true
	}
	if s.Position != nil && last.Position != nil &&
		math.Abs(s.Position.Alt-last.Position.Alt) > altitudeTrigger {
		return true
	}
	return false
}

func (b *Builder) lastPosition() *models.GeodeticPosition {
	if n := len(b.waypoints); n > 0 {
		p := b.waypoints[n-1].Position
		return &p
	}
	if b.lastState != nil && b.lastState.Position != nil {
		p := *b.lastState.Position
		return &p
	}
	return nil
}

// AppendFlight feeds one applied flight snapshot into the builder. Flight
// updates arriving before any state are ignored.
func (b *Builder) AppendFlight(f models.FlightData) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.lastState == nil {
		return
	}

	// Provider waypoints recover path history lost across a restart. Prepend
	// only the points older than the locally built path, and only once.
	if wps, ok := f.Waypoints.Get(); ok && !b.prepended {
		b.prepended = true
		var early []models.Waypoint
		for _, w := range wps {
			if len(b.waypoints) == 0 || w.Time.Before(b.waypoints[0].Time) {
				early = append(early, w)
			}
		}
		if len(early) > 0 {
			sort.Slice(early, func(i, j int) bool { return early[i].Time.Before(early[j].Time) })
			b.waypoints = append(early, b.waypoints...)
		}
	}

	if b.departure == nil && b.airports != nil {
		if code, ok := f.DepartureAirport.Get(); ok && code != "" {
			if ap := b.airports.Get(code); ap != nil {
				t := b.departureTime(f)
				b.departure = &models.Waypoint{Time: t, Position: ap.Position}
			}
		}
	}

	b.invalidate()
}

func (b *Builder) departureTime(f models.FlightData) time.Time {
	if t, ok := f.DepartureTime.Get(); ok {
		return t
	}
	if len(b.waypoints) > 0 {
		return b.waypoints[0].Time
	}
	return b.lastState.Time
}

// Waypoints materializes the full path: the synthesized departure point, every
// recorded waypoint, and the last known position when it differs from the
// final recorded one. A path of one point or fewer is no path.
func (b *Builder) Waypoints() []models.Waypoint {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.pathValid {
		var path []models.Waypoint
		if b.departure != nil {
			path = append(path, *b.departure)
		}
		path = append(path, b.waypoints...)
		if b.lastState != nil && b.lastState.Position != nil {
			last := *b.lastState.Position
			if n := len(path); n == 0 || path[n-1].Position != last {
				path = append(path, models.Waypoint{Time: b.lastState.Time, Position: last})
			}
		}
		b.path = path
		b.pathValid = true
	}

	if len(b.path) <= 1 {
		return nil
	}
	out := make([]models.Waypoint, len(b.path))
	copy(out, b.path)
	return out
}

func (b *Builder) invalidate() {
	b.path = nil
	b.pathValid = false
}

func headingDelta(a, bdeg float64) float64 {
	d := math.Mod(a-bdeg+180, 360)
	if d < 0 {
		d += 360
	}
	return math.Abs(d - 180)
}
