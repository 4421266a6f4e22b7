package waypoints

import (
	"testing"
	"time"

	"aircraft-fusion/pkg/models"
)

type fakeAirports struct {
	airports map[string]*models.Airport
	calls    int
}

func (f *fakeAirports) Get(code string) *models.Airport {
	f.calls++
	return f.airports[code]
}

func f64(v float64) *float64 { return &v }

func state(t time.Time, lat, lon, alt, heading float64) models.StateData {
	return models.StateData{
		ID:       1,
		Time:     t,
		Position: &models.GeodeticPosition{Lat: lat, Lon: lon, Alt: alt},
		Heading:  f64(heading),
	}
}

func TestSteadyCruiseCollapsesToEndpoints(t *testing.T) {
	b := newBuilder(nil)
	t0 := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	// 100 samples a minute apart, constant heading and altitude.
	for i := 0; i < 100; i++ {
		b.AppendState(state(t0.Add(time.Duration(i)*time.Minute), float64(i)*0.01, 0, 10000, 90))
	}

	wps := b.Waypoints()
	if len(wps) != 2 {
		t.Fatalf("expected first point plus final position, got %d", len(wps))
	}
	if !wps[0].Time.Equal(t0) {
		t.Fatal("first waypoint must be the first sample")
	}
	if !wps[1].Time.Equal(t0.Add(99 * time.Minute)) {
		t.Fatal("last waypoint must be the latest position")
	}
}

func TestGapRecordsWaypoint(t *testing.T) {
	b := newBuilder(nil)
	t0 := time.Now().UTC()

	b.AppendState(state(t0, 0, 0, 10000, 90))
	b.AppendState(state(t0.Add(20*time.Minute), 0.5, 0, 10000, 90))
	b.AppendState(state(t0.Add(21*time.Minute), 0.6, 0, 10000, 90))

	// First sample, the sample after the 20 minute gap, and the live position.
	wps := b.Waypoints()
	if len(wps) != 3 {
		t.Fatalf("expected 3 waypoints, got %d", len(wps))
	}
}

func TestHeadingChangeRecordsWaypoint(t *testing.T) {
	b := newBuilder(nil)
	t0 := time.Now().UTC()

	b.AppendState(state(t0, 0, 0, 10000, 90))
	b.AppendState(state(t0.Add(time.Minute), 0.01, 0, 10000, 91))   // within tolerance
	b.AppendState(state(t0.Add(2*time.Minute), 0.02, 0, 10000, 94)) // turned

	// The turn point is recorded and coincides with the live position.
	wps := b.Waypoints()
	if len(wps) != 2 {
		t.Fatalf("expected turn recorded, got %d waypoints", len(wps))
	}
	if wps[1].Position.Lat != 0.02 {
		t.Fatalf("expected last waypoint at the turn, got %+v", wps[1])
	}
}

func TestHeadingDeltaWrapsAroundNorth(t *testing.T) {
	if d := headingDelta(359, 2); d > 3.001 || d < 2.999 {
		t.Fatalf("expected wrap-aware delta 3, got %v", d)
	}
	if d := headingDelta(10, 350); d > 20.001 || d < 19.999 {
		t.Fatalf("expected wrap-aware delta 20, got %v", d)
	}
}

func TestAltitudeChangeRecordsWaypoint(t *testing.T) {
	b := newBuilder(nil)
	t0 := time.Now().UTC()

	b.AppendState(state(t0, 0, 0, 10000, 90))
	b.AppendState(state(t0.Add(time.Minute), 0.01, 0, 10050, 90))   // within tolerance
	b.AppendState(state(t0.Add(2*time.Minute), 0.02, 0, 10200, 90)) // climbed

	wps := b.Waypoints()
	if len(wps) != 2 {
		t.Fatalf("expected climb recorded, got %d waypoints", len(wps))
	}
	if wps[1].Position.Alt != 10200 {
		t.Fatalf("expected last waypoint at the climb, got %+v", wps[1])
	}
}

func TestOnGroundResetsPath(t *testing.T) {
	b := newBuilder(nil)
	t0 := time.Now().UTC()

	b.AppendState(state(t0, 0, 0, 10000, 90))
	b.AppendState(state(t0.Add(time.Minute), 0.2, 0, 10200, 90))

	landed := models.StateData{ID: 1, Time: t0.Add(2 * time.Minute), OnGround: true}
	b.AppendState(landed)

	if wps := b.Waypoints(); wps != nil {
		t.Fatalf("expected no path after touchdown, got %d waypoints", len(wps))
	}
}

func TestSinglePointIsNoPath(t *testing.T) {
	b := newBuilder(nil)
	b.AppendState(state(time.Now().UTC(), 0, 0, 10000, 90))

	if wps := b.Waypoints(); wps != nil {
		t.Fatalf("expected nil for a single-point path, got %v", wps)
	}
}

func TestDepartureAirportSynthesized(t *testing.T) {
	airports := &fakeAirports{airports: map[string]*models.Airport{
		"KJFK": {Code: "KJFK", Position: models.GeodeticPosition{Lat: 40.64, Lon: -73.78}},
	}}
	b := newBuilder(airports)
	t0 := time.Now().UTC()
	dep := t0.Add(-time.Hour)

	// Flight info before any state is ignored.
	b.AppendFlight(models.FlightData{ID: 1, DepartureAirport: models.Some("KJFK")})
	if b.Waypoints() != nil {
		t.Fatal("flight before first state must not build a path")
	}

	b.AppendState(state(t0, 41, -73, 10000, 90))
	b.AppendFlight(models.FlightData{
		ID:               1,
		DepartureAirport: models.Some("KJFK"),
		DepartureTime:    models.Some(dep),
	})

	wps := b.Waypoints()
	if len(wps) != 2 {
		t.Fatalf("expected departure + recorded point, got %d", len(wps))
	}
	if wps[0].Position.Lat != 40.64 || !wps[0].Time.Equal(dep) {
		t.Fatalf("expected departure waypoint first, got %+v", wps[0])
	}
}

func TestProviderWaypointsPrependedOnce(t *testing.T) {
	b := newBuilder(nil)
	t0 := time.Now().UTC()

	b.AppendState(state(t0, 1, 1, 10000, 90))

	early := []models.Waypoint{
		{Time: t0.Add(-20 * time.Minute), Position: models.GeodeticPosition{Lat: 0.5, Lon: 0.5}},
		{Time: t0.Add(-40 * time.Minute), Position: models.GeodeticPosition{Lat: 0.2, Lon: 0.2}},
		{Time: t0.Add(time.Minute), Position: models.GeodeticPosition{Lat: 2, Lon: 2}}, // not earlier
	}
	b.AppendFlight(models.FlightData{ID: 1, Waypoints: models.Some(early)})

	wps := b.Waypoints()
	if len(wps) != 3 {
		t.Fatalf("expected 2 prepended + recorded point, got %d", len(wps))
	}
	if wps[0].Position.Lat != 0.2 || wps[1].Position.Lat != 0.5 {
		t.Fatal("prepended waypoints must be sorted oldest first")
	}

	// A second provider answer must not prepend again.
	b.AppendFlight(models.FlightData{ID: 1, Waypoints: models.Some(early)})
	if got := b.Waypoints(); len(got) != 3 {
		t.Fatalf("expected prepend to happen once, got %d waypoints", len(got))
	}
}

func TestTrackerRoutesByAircraft(t *testing.T) {
	trk := NewTracker(nil)
	t0 := time.Now().UTC()

	a := state(t0, 0, 0, 10000, 90)
	a.ID = 1
	bState := state(t0, 5, 5, 9000, 180)
	bState.ID = 2

	trk.AppendState(a)
	trk.AppendState(bState)

	a2 := state(t0.Add(time.Minute), 0.1, 0, 10000, 90)
	a2.ID = 1
	trk.AppendState(a2)

	if wps := trk.Waypoints(1); len(wps) != 2 {
		t.Fatalf("expected 2 waypoints for aircraft 1, got %d", len(wps))
	}
	if wps := trk.Waypoints(2); wps != nil {
		t.Fatal("aircraft 2 has a single point, expected no path")
	}
	if wps := trk.Waypoints(3); wps != nil {
		t.Fatal("unknown aircraft must have no path")
	}
}
