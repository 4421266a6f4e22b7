package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
)

type DB struct {
	conn *sql.DB
}

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func (c Config) ConnectionString() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, sslMode)
}

func Connect(cfg Config) (*DB, error) {
	conn, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("[DB] Connected to PostgreSQL at %s:%d", cfg.Host, cfg.Port)
	return &DB{conn: conn}, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS aircraft_states (
		id SERIAL PRIMARY KEY,
		icao VARCHAR(6) NOT NULL,
		time TIMESTAMP WITH TIME ZONE NOT NULL,
		lat DOUBLE PRECISION,
		lon DOUBLE PRECISION,
		alt DOUBLE PRECISION,
		velocity DOUBLE PRECISION,
		heading DOUBLE PRECISION,
		vertical_rate DOUBLE PRECISION,
		on_ground BOOLEAN NOT NULL DEFAULT FALSE,
		callsign VARCHAR(10)
	);

	CREATE INDEX IF NOT EXISTS idx_aircraft_states_icao_time ON aircraft_states(icao, time DESC);
	CREATE INDEX IF NOT EXISTS idx_aircraft_states_time ON aircraft_states(time);

	CREATE TABLE IF NOT EXISTS aircraft_flights (
		icao VARCHAR(6) PRIMARY KEY,
		time TIMESTAMP WITH TIME ZONE NOT NULL,
		departure_airport VARCHAR(8),
		departure_time TIMESTAMP WITH TIME ZONE,
		arrival_airport VARCHAR(8),
		estimated_arrival_time TIMESTAMP WITH TIME ZONE,
		flight_number VARCHAR(10),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS airports (
		code VARCHAR(8) PRIMARY KEY,
		name VARCHAR(100),
		lat DOUBLE PRECISION NOT NULL,
		lon DOUBLE PRECISION NOT NULL,
		alt DOUBLE PRECISION NOT NULL DEFAULT 0
	);
	`

	_, err := db.conn.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Printf("[DB] Database schema migrated successfully")
	return nil
}

func (db *DB) Conn() *sql.DB {
	return db.conn
}
