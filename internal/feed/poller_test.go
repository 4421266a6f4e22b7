package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"aircraft-fusion/pkg/models"
)

type captureSink struct {
	states  []models.StateData
	flights []models.FlightData
}

func (s *captureSink) SubmitState(_ context.Context, st models.StateData) error {
	s.states = append(s.states, st)
	return nil
}

func (s *captureSink) SubmitFlight(_ context.Context, f models.FlightData) error {
	s.flights = append(s.flights, f)
	return nil
}

func TestStatePollerDecodesVectors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"states": [
			{"icao24": "abc123", "callsign": "UAL1", "time_position": 1767100800,
			 "latitude": 40.5, "longitude": -73.9, "geo_altitude": 10000,
			 "velocity": 230.5, "true_track": 92.0, "vertical_rate": -2.5},
			{"icao24": "notanicao", "latitude": 1, "longitude": 1},
			{"icao24": "4ca"}
		]}`))
	}))
	defer srv.Close()

	sink := &captureSink{}
	p := NewStatePoller("test", srv.URL, time.Second, sink)
	if err := p.poll(context.Background()); err != nil {
		t.Fatalf("poll failed: %v", err)
	}

	// The malformed address is skipped, the other two come through.
	if len(sink.states) != 2 {
		t.Fatalf("expected 2 states, got %d", len(sink.states))
	}

	s := sink.states[0]
	if s.ID != 0xABC123 || s.Callsign != "UAL1" {
		t.Fatalf("unexpected identity %+v", s)
	}
	if s.Time.Unix() != 1767100800 {
		t.Fatalf("expected provider timestamp, got %v", s.Time)
	}
	if s.Position == nil || s.Position.Lat != 40.5 || s.Position.Alt != 10000 {
		t.Fatalf("unexpected position %+v", s.Position)
	}
	if s.Velocity == nil || *s.Velocity != 230.5 {
		t.Fatal("expected velocity decoded")
	}

	// A vector without a position timestamp gets stamped on arrival.
	bare := sink.states[1]
	if bare.Position != nil {
		t.Fatal("expected no position without coordinates")
	}
	if bare.Time.IsZero() {
		t.Fatal("expected arrival timestamp for unstamped vector")
	}
}

func TestFlightPollerDecodesTriState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"flights": [
			{"icao24": "abc123", "flight_number": "UA100",
			 "departure_airport": "KJFK", "arrival_airport": null,
			 "waypoints": [{"time": "2026-08-30T11:00:00Z", "lat": 40.6, "lon": -73.7, "alt": 500}]},
			{"icao24": "4ca", "waypoints": null}
		]}`))
	}))
	defer srv.Close()

	sink := &captureSink{}
	p := NewFlightPoller("test", srv.URL, time.Second, sink)
	if err := p.poll(context.Background()); err != nil {
		t.Fatalf("poll failed: %v", err)
	}

	if len(sink.flights) != 2 {
		t.Fatalf("expected 2 flights, got %d", len(sink.flights))
	}

	f := sink.flights[0]
	if v, _ := f.DepartureAirport.Get(); v != "KJFK" {
		t.Fatal("expected departure airport decoded")
	}
	if !f.ArrivalAirport.IsNull() {
		t.Fatal("expected explicit null arrival preserved")
	}
	if f.EstimatedArrivalTime.IsSet() {
		t.Fatal("expected absent field left unset")
	}
	wps, ok := f.Waypoints.Get()
	if !ok || len(wps) != 1 || wps[0].Position.Lat != 40.6 {
		t.Fatalf("unexpected waypoints %+v", wps)
	}

	if !sink.flights[1].Waypoints.IsNull() {
		t.Fatal("expected explicit null waypoints preserved")
	}
}

func TestPollerReportsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewStatePoller("test", srv.URL, time.Second, &captureSink{})
	if err := p.poll(context.Background()); err == nil {
		t.Fatal("expected error for non-200 response")
	}
	if p.GetStats().Connected {
		t.Fatal("expected stats to report unhealthy after a failure")
	}
}
