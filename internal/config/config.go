package config

import (
	"encoding/json"
	"os"
	"time"
)

type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
}

type Config struct {
	ADSBHost        string         `json:"adsb_host"`
	ADSBPort        int            `json:"adsb_port"`
	StatesURL       string         `json:"states_url"`
	StatesInterval  time.Duration  `json:"-"`
	FlightsURL      string         `json:"flights_url"`
	FlightsInterval time.Duration  `json:"-"`
	AirportAPIURL   string         `json:"airport_api_url"`
	HTTPAddr        string         `json:"http_addr"`
	NodeName        string         `json:"node_name"`
	CenterLat       float64        `json:"center_lat"`
	CenterLon       float64        `json:"center_lon"`
	Synthetic       bool           `json:"synthetic"`
	SyntheticCount  int            `json:"synthetic_count"`
	Database        DatabaseConfig `json:"database"`
}

func Default() *Config {
	return &Config{
		ADSBHost:        "127.0.0.1",
		ADSBPort:        30003,
		StatesInterval:  10 * time.Second,
		FlightsInterval: 60 * time.Second,
		HTTPAddr:        ":8080",
		SyntheticCount:  3,
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			User:    "postgres",
			DBName:  "aircraft",
			SSLMode: "disable",
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	var fileCfg struct {
		ADSBHost        string  `json:"adsb_host"`
		ADSBPort        int     `json:"adsb_port"`
		StatesURL       string  `json:"states_url"`
		StatesInterval  string  `json:"states_interval"`
		FlightsURL      string  `json:"flights_url"`
		FlightsInterval string  `json:"flights_interval"`
		AirportAPIURL   string  `json:"airport_api_url"`
		HTTPAddr        string  `json:"http_addr"`
		NodeName        string  `json:"node_name"`
		CenterLat       float64 `json:"center_lat"`
		CenterLon       float64 `json:"center_lon"`
		Synthetic       bool    `json:"synthetic"`
		SyntheticCount  int     `json:"synthetic_count"`
		Database        struct {
			Host     string `json:"host"`
			Port     int    `json:"port"`
			User     string `json:"user"`
			Password string `json:"password"`
			DBName   string `json:"dbname"`
			SSLMode  string `json:"sslmode"`
		} `json:"database"`
	}

	if err := json.Unmarshal(data, &fileCfg); err != nil {
		return nil, err
	}

	if fileCfg.ADSBHost != "" {
		cfg.ADSBHost = fileCfg.ADSBHost
	}
	if fileCfg.ADSBPort != 0 {
		cfg.ADSBPort = fileCfg.ADSBPort
	}
	if fileCfg.StatesURL != "" {
		cfg.StatesURL = fileCfg.StatesURL
	}
	if fileCfg.StatesInterval != "" {
		if d, err := time.ParseDuration(fileCfg.StatesInterval); err == nil {
			cfg.StatesInterval = d
		}
	}
	if fileCfg.FlightsURL != "" {
		cfg.FlightsURL = fileCfg.FlightsURL
	}
	if fileCfg.FlightsInterval != "" {
		if d, err := time.ParseDuration(fileCfg.FlightsInterval); err == nil {
			cfg.FlightsInterval = d
		}
	}
	if fileCfg.AirportAPIURL != "" {
		cfg.AirportAPIURL = fileCfg.AirportAPIURL
	}
	if fileCfg.HTTPAddr != "" {
		cfg.HTTPAddr = fileCfg.HTTPAddr
	}
	if fileCfg.NodeName != "" {
		cfg.NodeName = fileCfg.NodeName
	}
	if fileCfg.CenterLat != 0 {
		cfg.CenterLat = fileCfg.CenterLat
	}
	if fileCfg.CenterLon != 0 {
		cfg.CenterLon = fileCfg.CenterLon
	}
	if fileCfg.Synthetic {
		cfg.Synthetic = true
	}
	if fileCfg.SyntheticCount != 0 {
		cfg.SyntheticCount = fileCfg.SyntheticCount
	}

	if fileCfg.Database.Host != "" {
		cfg.Database.Host = fileCfg.Database.Host
	}
	if fileCfg.Database.Port != 0 {
		cfg.Database.Port = fileCfg.Database.Port
	}
	if fileCfg.Database.User != "" {
		cfg.Database.User = fileCfg.Database.User
	}
	if fileCfg.Database.Password != "" {
		cfg.Database.Password = fileCfg.Database.Password
	}
	if fileCfg.Database.DBName != "" {
		cfg.Database.DBName = fileCfg.Database.DBName
	}
	if fileCfg.Database.SSLMode != "" {
		cfg.Database.SSLMode = fileCfg.Database.SSLMode
	}

	return cfg, nil
}
