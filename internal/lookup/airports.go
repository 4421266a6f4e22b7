package lookup

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"aircraft-fusion/pkg/models"
)

const cacheTTL = 24 * time.Hour

// Repository is the persisted airport reference table.
type Repository interface {
	GetAirport(code string) (*models.Airport, error)
	SaveAirport(ap *models.Airport) error
}

// AirportLookup resolves airport codes to geodetic positions: in-memory cache
// first, then the database, then a best-effort HTTP fetch that fills both.
// Negative answers are cached so unknown codes are not refetched per update.
type AirportLookup struct {
	repo    Repository
	baseURL string
	cache   map[string]*cacheEntry
	mu      sync.RWMutex
	client  *http.Client
}

type cacheEntry struct {
	airport   *models.Airport
	timestamp time.Time
	notFound  bool
}

func NewAirportLookup(repo Repository, baseURL string) *AirportLookup {
	return &AirportLookup{
		repo:    repo,
		baseURL: baseURL,
		cache:   make(map[string]*cacheEntry),
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// Get returns the airport for code, or nil while it is still unknown.
func (l *AirportLookup) Get(code string) *models.Airport {
	if code == "" {
		return nil
	}

	l.mu.RLock()
	entry, ok := l.cache[code]
	l.mu.RUnlock()

	if ok && time.Since(entry.timestamp) < cacheTTL {
		if entry.notFound {
			return nil
		}
		return entry.airport
	}

	if l.repo != nil {
		ap, err := l.repo.GetAirport(code)
		if err == nil && ap != nil {
			l.mu.Lock()
			l.cache[code] = &cacheEntry{airport: ap, timestamp: time.Now()}
			l.mu.Unlock()
			return ap
		}
	}

	go l.fetchAndCache(code)
	return nil
}

func (l *AirportLookup) fetchAndCache(code string) {
	ap := l.fetchRemote(code)

	l.mu.Lock()
	if ap != nil {
		l.cache[code] = &cacheEntry{airport: ap, timestamp: time.Now()}
		if l.repo != nil {
			l.repo.SaveAirport(ap)
		}
	} else {
		l.cache[code] = &cacheEntry{notFound: true, timestamp: time.Now()}
	}
	l.mu.Unlock()
}

func (l *AirportLookup) fetchRemote(code string) *models.Airport {
	if l.baseURL == "" {
		return nil
	}
	url := fmt.Sprintf("%s/airports/%s", l.baseURL, code)

	resp, err := l.client.Get(url)
	if err != nil {
		log.Printf("[AIRPORTS] Lookup failed for %s: %v", code, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var data struct {
		Code      string  `json:"icao"`
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Elevation float64 `json:"elevation_m"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		log.Printf("[AIRPORTS] Decode failed for %s: %v", code, err)
		return nil
	}

	if data.Latitude == 0 && data.Longitude == 0 {
		return nil
	}

	return &models.Airport{
		Code: code,
		Name: data.Name,
		Position: models.GeodeticPosition{
			Lat: data.Latitude,
			Lon: data.Longitude,
			Alt: data.Elevation,
		},
	}
}
