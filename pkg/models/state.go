package models

import "time"

// StateData is one fused telemetry snapshot for an aircraft. Optional fields
// are pointers; merges produce new values, a record is never mutated in place.
type StateData struct {
	ID           AircraftID        `json:"icao"`
	Time         time.Time         `json:"time"`
	Position     *GeodeticPosition `json:"position,omitempty"`
	Velocity     *float64          `json:"velocity,omitempty"`      // ground speed m/s
	Heading      *float64          `json:"heading,omitempty"`       // degrees true
	VerticalRate *float64          `json:"vertical_rate,omitempty"` // m/s, climb positive
	OnGround     bool              `json:"on_ground"`
	Callsign     string            `json:"callsign,omitempty"`
}

// Merge folds update into s: optional fields take the update's value when
// present, OnGround always takes the update's value, and the result keeps the
// older of the two timestamps.
func (s StateData) Merge(update StateData) StateData {
	out := s.Copy()
	if update.Position != nil {
		v := *update.Position
		out.Position = &v
	}
	if update.Velocity != nil {
		v := *update.Velocity
		out.Velocity = &v
	}
	if update.Heading != nil {
		v := *update.Heading
		out.Heading = &v
	}
	if update.VerticalRate != nil {
		v := *update.VerticalRate
		out.VerticalRate = &v
	}
	if update.Callsign != "" {
		out.Callsign = update.Callsign
	}
	out.OnGround = update.OnGround
	if update.Time.Before(out.Time) {
		out.Time = update.Time
	}
	return out
}

func (s StateData) Copy() StateData {
	cpy := StateData{
		ID:       s.ID,
		Time:     s.Time,
		OnGround: s.OnGround,
		Callsign: s.Callsign,
	}
	if s.Position != nil {
		v := *s.Position
		cpy.Position = &v
	}
	if s.Velocity != nil {
		v := *s.Velocity
		cpy.Velocity = &v
	}
	if s.Heading != nil {
		v := *s.Heading
		cpy.Heading = &v
	}
	if s.VerticalRate != nil {
		v := *s.VerticalRate
		cpy.VerticalRate = &v
	}
	return cpy
}
