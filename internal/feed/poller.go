package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"aircraft-fusion/pkg/models"
)

// pollStats tracks counters shared by both poller kinds.
type pollStats struct {
	mu          sync.RWMutex
	healthy     bool
	lastMessage time.Time
	total       uint64
}

func (s *pollStats) record(n int) {
	s.mu.Lock()
	s.healthy = true
	s.lastMessage = time.Now()
	s.total += uint64(n)
	s.mu.Unlock()
}

func (s *pollStats) fail() {
	s.mu.Lock()
	s.healthy = false
	s.mu.Unlock()
}

func (s *pollStats) snapshot(name string) Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{
		Name:          name,
		Connected:     s.healthy,
		LastMessage:   s.lastMessage,
		MessagesTotal: s.total,
	}
}

// StatePoller polls a third-party REST service publishing aircraft state
// vectors. Iteration failures are logged and the next cycle proceeds.
type StatePoller struct {
	name    string
	url     string
	limiter *rate.Limiter
	client  *http.Client
	sink    Sink
	stats   pollStats
}

func NewStatePoller(name, url string, interval time.Duration, sink Sink) *StatePoller {
	return &StatePoller{
		name:    name,
		url:     url,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		client:  &http.Client{Timeout: 10 * time.Second},
		sink:    sink,
	}
}

func (p *StatePoller) Run(ctx context.Context) {
	for {
		if err := p.limiter.Wait(ctx); err != nil {
			return
		}
		if err := p.poll(ctx); err != nil {
			p.stats.fail()
			log.Printf("[FEED] %s poll failed: %v", p.name, err)
		}
	}
}

func (p *StatePoller) GetStats() Stats {
	return p.stats.snapshot(p.name)
}

type stateVector struct {
	ICAO         string   `json:"icao24"`
	Callsign     string   `json:"callsign"`
	Time         int64    `json:"time_position"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	Altitude     *float64 `json:"geo_altitude"`
	Velocity     *float64 `json:"velocity"`
	Heading      *float64 `json:"true_track"`
	VerticalRate *float64 `json:"vertical_rate"`
	OnGround     bool     `json:"on_ground"`
}

func (p *StatePoller) poll(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	var body struct {
		States []stateVector `json:"states"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	submitted := 0
	for _, v := range body.States {
		s, err := v.toState()
		if err != nil {
			continue
		}
		if err := p.sink.SubmitState(ctx, *s); err != nil {
			return err
		}
		submitted++
	}
	p.stats.record(submitted)
	return nil
}

func (v stateVector) toState() (*models.StateData, error) {
	id, err := models.ParseAircraftID(v.ICAO)
	if err != nil {
		return nil, err
	}

	s := &models.StateData{
		ID:       id,
		Time:     time.Unix(v.Time, 0).UTC(),
		Callsign: v.Callsign,
		OnGround: v.OnGround,
	}
	if v.Time == 0 {
		s.Time = time.Now().UTC()
	}
	if v.Latitude != nil && v.Longitude != nil {
		pos := models.GeodeticPosition{Lat: *v.Latitude, Lon: *v.Longitude}
		if v.Altitude != nil {
			pos.Alt = *v.Altitude
		}
		s.Position = &pos
	}
	s.Velocity = v.Velocity
	s.Heading = v.Heading
	s.VerticalRate = v.VerticalRate
	return s, nil
}

// FlightPoller polls a flight-tracking service for route data: departure and
// arrival airports, flight numbers and historical waypoints. Fields the
// provider leaves out of the JSON stay unset, so "no answer" never clobbers a
// known value downstream.
type FlightPoller struct {
	name    string
	url     string
	limiter *rate.Limiter
	client  *http.Client
	sink    Sink
	stats   pollStats
}

func NewFlightPoller(name, url string, interval time.Duration, sink Sink) *FlightPoller {
	return &FlightPoller{
		name:    name,
		url:     url,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		client:  &http.Client{Timeout: 10 * time.Second},
		sink:    sink,
	}
}

func (p *FlightPoller) Run(ctx context.Context) {
	for {
		if err := p.limiter.Wait(ctx); err != nil {
			return
		}
		if err := p.poll(ctx); err != nil {
			p.stats.fail()
			log.Printf("[FEED] %s poll failed: %v", p.name, err)
		}
	}
}

func (p *FlightPoller) GetStats() Stats {
	return p.stats.snapshot(p.name)
}

type flightRecord struct {
	ICAO             string                    `json:"icao24"`
	FlightNumber     models.Opt[string]        `json:"flight_number"`
	Departure        models.Opt[string]        `json:"departure_airport"`
	DepartureTime    models.Opt[time.Time]     `json:"departure_time"`
	Arrival          models.Opt[string]        `json:"arrival_airport"`
	EstimatedArrival models.Opt[time.Time]     `json:"estimated_arrival_time"`
	Waypoints        models.Opt[[]flightPoint] `json:"waypoints"`
}

type flightPoint struct {
	Time time.Time `json:"time"`
	Lat  float64   `json:"lat"`
	Lon  float64   `json:"lon"`
	Alt  float64   `json:"alt"`
}

func (p *FlightPoller) poll(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	var body struct {
		Flights []flightRecord `json:"flights"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	now := time.Now().UTC()
	submitted := 0
	for _, rec := range body.Flights {
		id, err := models.ParseAircraftID(rec.ICAO)
		if err != nil {
			continue
		}
		f := models.FlightData{
			ID:                   id,
			Time:                 now,
			FlightNumber:         rec.FlightNumber,
			DepartureAirport:     rec.Departure,
			DepartureTime:        rec.DepartureTime,
			ArrivalAirport:       rec.Arrival,
			EstimatedArrivalTime: rec.EstimatedArrival,
		}
		if pts, ok := rec.Waypoints.Get(); ok {
			wps := make([]models.Waypoint, len(pts))
			for i, pt := range pts {
				wps[i] = models.Waypoint{
					Time:     pt.Time,
					Position: models.GeodeticPosition{Lat: pt.Lat, Lon: pt.Lon, Alt: pt.Alt},
				}
			}
			f.Waypoints = models.Some(wps)
		} else if rec.Waypoints.IsNull() {
			f.Waypoints = models.Null[[]models.Waypoint]()
		}
		if err := p.sink.SubmitFlight(ctx, f); err != nil {
			return err
		}
		submitted++
	}
	p.stats.record(submitted)
	return nil
}
