package models

import "time"

// FlightData is one flight-plan snapshot for an aircraft. All provider fields
// are tri-state: an absent field leaves the stored value alone, an explicit
// null clears it.
type FlightData struct {
	ID                   AircraftID      `json:"icao"`
	Time                 time.Time       `json:"time"`
	DepartureAirport     Opt[string]     `json:"departure_airport,omitzero"`
	DepartureTime        Opt[time.Time]  `json:"departure_time,omitzero"`
	ArrivalAirport       Opt[string]     `json:"arrival_airport,omitzero"`
	EstimatedArrivalTime Opt[time.Time]  `json:"estimated_arrival_time,omitzero"`
	FlightNumber         Opt[string]     `json:"flight_number,omitzero"`
	Waypoints            Opt[[]Waypoint] `json:"waypoints,omitzero"`
}

// Merge folds update into f: tri-state fields only overwrite when set.
func (f FlightData) Merge(update FlightData) FlightData {
	out := f
	out.Time = update.Time
	if update.DepartureAirport.IsSet() {
		out.DepartureAirport = update.DepartureAirport
	}
	if update.DepartureTime.IsSet() {
		out.DepartureTime = update.DepartureTime
	}
	if update.ArrivalAirport.IsSet() {
		out.ArrivalAirport = update.ArrivalAirport
	}
	if update.EstimatedArrivalTime.IsSet() {
		out.EstimatedArrivalTime = update.EstimatedArrivalTime
	}
	if update.FlightNumber.IsSet() {
		out.FlightNumber = update.FlightNumber
	}
	if update.Waypoints.IsSet() {
		out.Waypoints = update.Waypoints
	}
	return out
}

// Waypoint is a timestamped geodetic point on a reconstructed flight path.
type Waypoint struct {
	Time     time.Time        `json:"time"`
	Position GeodeticPosition `json:"position"`
}
