package database

import (
	"database/sql"
	"fmt"
	"time"

	"aircraft-fusion/pkg/models"
)

// Repository is the durable store behind the fusion engine: an append-only
// state log reachable through time-ranged queries, one flight row per
// aircraft, and airport reference data.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *DB) *Repository {
	return &Repository{db: db.Conn()}
}

func (r *Repository) UpsertState(s models.StateData) error {
	query := `
		INSERT INTO aircraft_states (icao, time, lat, lon, alt, velocity, heading, vertical_rate, on_ground, callsign)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	var lat, lon, alt *float64
	if s.Position != nil {
		lat = &s.Position.Lat
		lon = &s.Position.Lon
		alt = &s.Position.Alt
	}

	_, err := r.db.Exec(query, s.ID.String(), s.Time, lat, lon, alt,
		s.Velocity, s.Heading, s.VerticalRate, s.OnGround, nullString(s.Callsign))
	return err
}

func (r *Repository) QueryState(id models.AircraftID, at time.Time, window time.Duration) (*models.StateData, error) {
	query := `
		SELECT icao, time, lat, lon, alt, velocity, heading, vertical_rate, on_ground, callsign
		FROM aircraft_states
		WHERE icao = $1 AND time BETWEEN $2 AND $3
		ORDER BY ABS(EXTRACT(EPOCH FROM (time - $4)))
		LIMIT 1
	`

	row := r.db.QueryRow(query, id.String(), at.Add(-window), at.Add(window), at)
	s, err := scanState(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *Repository) QueryStates(bounds *models.GeodeticBounds, at time.Time, window time.Duration) ([]models.StateData, error) {
	query := `
		SELECT DISTINCT ON (icao) icao, time, lat, lon, alt, velocity, heading, vertical_rate, on_ground, callsign
		FROM aircraft_states
		WHERE time BETWEEN $1 AND $2
	`
	args := []interface{}{at.Add(-window), at.Add(window)}

	if bounds != nil {
		query += fmt.Sprintf(" AND lat BETWEEN $%d AND $%d", len(args)+1, len(args)+2)
		args = append(args, bounds.Min.Lat, bounds.Max.Lat)

		if bounds.Min.Lon > bounds.Max.Lon {
			// Longitude range wraps through the antimeridian.
			query += fmt.Sprintf(" AND (lon >= $%d OR lon <= $%d)", len(args)+1, len(args)+2)
		} else {
			query += fmt.Sprintf(" AND lon BETWEEN $%d AND $%d", len(args)+1, len(args)+2)
		}
		args = append(args, bounds.Min.Lon, bounds.Max.Lon)
	}

	query += fmt.Sprintf(" ORDER BY icao, ABS(EXTRACT(EPOCH FROM (time - $%d)))", len(args)+1)
	args = append(args, at)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var states []models.StateData
	for rows.Next() {
		s, err := scanState(rows)
		if err != nil {
			return nil, err
		}
		states = append(states, *s)
	}
	return states, rows.Err()
}

func (r *Repository) DeleteStatesBefore(t time.Time) error {
	_, err := r.db.Exec(`DELETE FROM aircraft_states WHERE time < $1`, t)
	return err
}

func (r *Repository) UpsertFlight(f models.FlightData) error {
	query := `
		INSERT INTO aircraft_flights (icao, time, departure_airport, departure_time, arrival_airport, estimated_arrival_time, flight_number, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (icao) DO UPDATE SET
			time = $2,
			departure_airport = $3,
			departure_time = $4,
			arrival_airport = $5,
			estimated_arrival_time = $6,
			flight_number = $7,
			updated_at = NOW()
	`

	_, err := r.db.Exec(query, f.ID.String(), f.Time,
		optString(f.DepartureAirport), optTime(f.DepartureTime),
		optString(f.ArrivalAirport), optTime(f.EstimatedArrivalTime),
		optString(f.FlightNumber))
	return err
}

func (r *Repository) QueryFlight(id models.AircraftID) (*models.FlightData, error) {
	query := `
		SELECT icao, time, departure_airport, departure_time, arrival_airport, estimated_arrival_time, flight_number
		FROM aircraft_flights
		WHERE icao = $1
	`

	var (
		icao                                 string
		f                                    models.FlightData
		depAirport, arrAirport, flightNumber sql.NullString
		depTime, arrTime                     sql.NullTime
	)

	err := r.db.QueryRow(query, id.String()).Scan(&icao, &f.Time,
		&depAirport, &depTime, &arrAirport, &arrTime, &flightNumber)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	f.ID = id
	if depAirport.Valid {
		f.DepartureAirport = models.Some(depAirport.String)
	}
	if depTime.Valid {
		f.DepartureTime = models.Some(depTime.Time)
	}
	if arrAirport.Valid {
		f.ArrivalAirport = models.Some(arrAirport.String)
	}
	if arrTime.Valid {
		f.EstimatedArrivalTime = models.Some(arrTime.Time)
	}
	if flightNumber.Valid {
		f.FlightNumber = models.Some(flightNumber.String)
	}
	return &f, nil
}

func (r *Repository) DeleteFlight(id models.AircraftID) error {
	_, err := r.db.Exec(`DELETE FROM aircraft_flights WHERE icao = $1`, id.String())
	return err
}

func (r *Repository) DeleteFlightsBefore(t time.Time) error {
	_, err := r.db.Exec(`DELETE FROM aircraft_flights WHERE updated_at < $1`, t)
	return err
}

func (r *Repository) GetAirport(code string) (*models.Airport, error) {
	query := `SELECT code, name, lat, lon, alt FROM airports WHERE code = $1`

	var ap models.Airport
	var name sql.NullString

	err := r.db.QueryRow(query, code).Scan(&ap.Code, &name, &ap.Position.Lat, &ap.Position.Lon, &ap.Position.Alt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	ap.Name = name.String
	return &ap, nil
}

func (r *Repository) SaveAirport(ap *models.Airport) error {
	query := `
		INSERT INTO airports (code, name, lat, lon, alt)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (code) DO UPDATE SET
			name = $2,
			lat = $3,
			lon = $4,
			alt = $5
	`

	_, err := r.db.Exec(query, ap.Code, ap.Name, ap.Position.Lat, ap.Position.Lon, ap.Position.Alt)
	return err
}

type scannable interface {
	Scan(dest ...interface{}) error
}

func scanState(row scannable) (*models.StateData, error) {
	var (
		icao              string
		s                 models.StateData
		lat, lon, alt     sql.NullFloat64
		velocity, heading sql.NullFloat64
		verticalRate      sql.NullFloat64
		callsign          sql.NullString
	)

	err := row.Scan(&icao, &s.Time, &lat, &lon, &alt,
		&velocity, &heading, &verticalRate, &s.OnGround, &callsign)
	if err != nil {
		return nil, err
	}

	id, err := models.ParseAircraftID(icao)
	if err != nil {
		return nil, fmt.Errorf("bad icao in row: %w", err)
	}
	s.ID = id

	if lat.Valid && lon.Valid {
		s.Position = &models.GeodeticPosition{Lat: lat.Float64, Lon: lon.Float64, Alt: alt.Float64}
	}
	if velocity.Valid {
		s.Velocity = &velocity.Float64
	}
	if heading.Valid {
		s.Heading = &heading.Float64
	}
	if verticalRate.Valid {
		s.VerticalRate = &verticalRate.Float64
	}
	s.Callsign = callsign.String

	return &s, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func optString(o models.Opt[string]) interface{} {
	if v, ok := o.Get(); ok && v != "" {
		return v
	}
	return nil
}

func optTime(o models.Opt[time.Time]) interface{} {
	if v, ok := o.Get(); ok {
		return v
	}
	return nil
}
