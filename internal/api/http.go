package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"aircraft-fusion/internal/feed"
	"aircraft-fusion/internal/fusion"
	"aircraft-fusion/internal/health"
	"aircraft-fusion/internal/waypoints"
	"aircraft-fusion/pkg/models"
)

// FeedStats exposes an adapter's counters to the stats endpoint.
type FeedStats interface {
	GetStats() feed.Stats
}

type Server struct {
	engine    *fusion.Engine
	paths     *waypoints.Tracker
	startTime time.Time
	wsHub     *Hub
	readiness *health.Readiness
	feeds     []FeedStats
	nodeName  string
}

func NewServer(engine *fusion.Engine, paths *waypoints.Tracker) *Server {
	return &Server{
		engine:    engine,
		paths:     paths,
		startTime: time.Now(),
		wsHub:     NewHub(engine),
	}
}

func (s *Server) SetReadiness(r *health.Readiness) { s.readiness = r }
func (s *Server) SetNodeName(name string)          { s.nodeName = name }
func (s *Server) AddFeed(f FeedStats)              { s.feeds = append(s.feeds, f) }

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/aircraft", s.handleAircraft)
	mux.HandleFunc("/api/v1/aircraft/", s.handleAircraftRoutes)
	mux.HandleFunc("/api/v1/visible", s.handleVisible)
	mux.HandleFunc("/api/v1/health", s.handleHealth)
	mux.HandleFunc("/api/v1/stats", s.handleStats)

	mux.HandleFunc("/ws", s.wsHub.HandleWebSocket)
	return mux
}

func (s *Server) StartHub() {
	go s.wsHub.Run()
}

// handleAircraft serves "what is near X at time T": optional lamin/lomin/
// lamax/lomax bounds and an RFC3339 or unix time parameter.
func (s *Server) handleAircraft(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	at, err := parseTimeParam(r.URL.Query().Get("time"))
	if err != nil {
		http.Error(w, "Invalid time parameter", http.StatusBadRequest)
		return
	}

	bounds, err := parseBounds(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	states := s.engine.GetStates(bounds, at)
	if states == nil {
		states = []models.StateData{}
	}
	writeJSON(w, http.StatusOK, states)
}

func (s *Server) handleAircraftRoutes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/v1/aircraft/")
	parts := strings.Split(path, "/")

	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "ICAO address required", http.StatusBadRequest)
		return
	}

	id, err := models.ParseAircraftID(strings.TrimSpace(parts[0]))
	if err != nil {
		http.Error(w, "Invalid ICAO address", http.StatusBadRequest)
		return
	}

	if len(parts) == 1 {
		s.handleAircraftByID(w, r, id)
		return
	}

	switch parts[1] {
	case "flight":
		s.handleFlight(w, r, id)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

func (s *Server) handleAircraftByID(w http.ResponseWriter, r *http.Request, id models.AircraftID) {
	at, err := parseTimeParam(r.URL.Query().Get("time"))
	if err != nil {
		http.Error(w, "Invalid time parameter", http.StatusBadRequest)
		return
	}

	state := s.engine.GetState(id, at)
	if state == nil {
		http.Error(w, "Aircraft not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleFlight(w http.ResponseWriter, r *http.Request, id models.AircraftID) {
	flight := s.engine.GetFlight(id)
	if flight == nil {
		http.Error(w, "Flight not found", http.StatusNotFound)
		return
	}

	resp := struct {
		models.FlightData
		Path []models.Waypoint `json:"path,omitempty"`
	}{
		FlightData: *flight,
		Path:       s.paths.Waypoints(id),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	ready := true
	var components map[string]health.ComponentState
	if s.readiness != nil {
		ready = s.readiness.Ready()
		components = s.readiness.Snapshot()
		if !ready {
			status = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, status, map[string]interface{}{
		"ready":      ready,
		"node":       s.nodeName,
		"uptime_sec": int(time.Since(s.startTime).Seconds()),
		"components": components,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	feedStats := make([]feed.Stats, 0, len(s.feeds))
	for _, f := range s.feeds {
		feedStats = append(feedStats, f.GetStats())
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"engine": s.engine.GetStats(),
		"feeds":  feedStats,
	})
}

func parseTimeParam(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	if unix, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Parse(time.RFC3339, v)
}

func parseBounds(r *http.Request) (*models.GeodeticBounds, error) {
	q := r.URL.Query()
	raw := [4]string{q.Get("lamin"), q.Get("lomin"), q.Get("lamax"), q.Get("lomax")}
	if raw[0] == "" && raw[1] == "" && raw[2] == "" && raw[3] == "" {
		return nil, nil
	}

	var vals [4]float64
	for i, s := range raw {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, errBadBounds
		}
		vals[i] = v
	}
	if vals[0] > vals[2] || vals[0] < -90 || vals[2] > 90 {
		return nil, errBadBounds
	}

	return &models.GeodeticBounds{
		Min: models.GeodeticPosition{Lat: vals[0], Lon: vals[1]},
		Max: models.GeodeticPosition{Lat: vals[2], Lon: vals[3]},
	}, nil
}

var errBadBounds = &apiError{"Invalid bounds parameters"}

type apiError struct{ msg string }

func (e *apiError) Error() string { return e.msg }

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
