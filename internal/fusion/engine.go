// Package fusion owns the per-aircraft fused telemetry state. Feed adapters
// submit raw state and flight snapshots; a single worker drains them, applies
// the merge policy and keeps two short-TTL caches whose evictions flush to the
// durable store.
package fusion

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"aircraft-fusion/internal/expiry"
	"aircraft-fusion/pkg/models"
)

const (
	// MergeWindow is the maximum gap between two samples for them to fold
	// into one fused record.
	MergeWindow = 3 * time.Second
	// ValidityWindow is the maximum gap between a query time and a stored
	// sample for that sample to be a valid answer.
	ValidityWindow = 25 * time.Second

	stateTTL      = 60 * time.Second
	flightTTL     = 30 * time.Second
	flightRefresh = 10 * time.Minute

	retention     = time.Hour
	cleanupEvery  = 60 * time.Second
	sweepInterval = time.Second
)

// Repository is the durable store the engine writes through. Failures of any
// call are transient from the engine's point of view: logged and skipped.
type Repository interface {
	UpsertState(s models.StateData) error
	UpsertFlight(f models.FlightData) error
	DeleteFlight(id models.AircraftID) error
	DeleteStatesBefore(t time.Time) error
	DeleteFlightsBefore(t time.Time) error
	QueryStates(bounds *models.GeodeticBounds, at time.Time, window time.Duration) ([]models.StateData, error)
	QueryState(id models.AircraftID, at time.Time, window time.Duration) (*models.StateData, error)
	QueryFlight(id models.AircraftID) (*models.FlightData, error)
}

// PathTracker receives every applied update so flight paths can be rebuilt.
type PathTracker interface {
	AppendState(s models.StateData)
	AppendFlight(f models.FlightData)
}

// Update carries exactly one of a state or flight snapshot.
type Update struct {
	State  *models.StateData
	Flight *models.FlightData
}

type flightEntry struct {
	data      models.FlightData
	committed time.Time
}

type Options struct {
	Repo                 Repository
	Paths                PathTracker
	QueueSize            int
	PersistenceWorkers   int
	PersistenceQueueSize int
}

type Engine struct {
	repo  Repository
	paths PathTracker

	updates chan Update
	persist chan func()
	workers int

	mu        sync.RWMutex
	states    *expiry.Cache[models.AircraftID, models.StateData]
	flights   *expiry.Cache[models.AircraftID, flightEntry]
	totalSeen int

	eventsMu    sync.RWMutex
	subscribers []chan models.StateData

	now func() time.Time
}

type Stats struct {
	AircraftCount int `json:"aircraft_count"`
	TotalSeen     int `json:"total_seen"`
}

func New(opts Options) *Engine {
	if opts.QueueSize == 0 {
		opts.QueueSize = 256
	}
	if opts.PersistenceWorkers == 0 {
		opts.PersistenceWorkers = 4
	}
	if opts.PersistenceQueueSize == 0 {
		opts.PersistenceQueueSize = 512
	}
	e := &Engine{
		repo:    opts.Repo,
		paths:   opts.Paths,
		updates: make(chan Update, opts.QueueSize),
		persist: make(chan func(), opts.PersistenceQueueSize),
		workers: opts.PersistenceWorkers,
		flights: expiry.New[models.AircraftID, flightEntry](flightTTL, nil),
		now:     func() time.Time { return time.Now().UTC() },
	}
	// Expiry of a state entry triggers the same durable flush a merge-window
	// gap does.
	e.states = expiry.New(stateTTL, func(_ models.AircraftID, s models.StateData) {
		e.schedulePersist(func() { e.flushState(s) })
	})
	return e
}

// SubmitState queues a state snapshot, blocking when the channel is full so
// backpressure reaches the feed adapter.
func (e *Engine) SubmitState(ctx context.Context, s models.StateData) error {
	select {
	case e.updates <- Update{State: &s}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SubmitFlight queues a flight snapshot.
func (e *Engine) SubmitFlight(ctx context.Context, f models.FlightData) error {
	select {
	case e.updates <- Update{Flight: &f}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run drains the update channel until ctx is cancelled. It is the sole writer
// to the caches; no two merges of the same aircraft ever run concurrently.
func (e *Engine) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for fn := range e.persist {
				fn()
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		e.retentionLoop(ctx)
	}()

	sweep := time.NewTicker(sweepInterval)
	defer sweep.Stop()

	for {
		select {
		case <-ctx.Done():
			close(e.persist)
			wg.Wait()
			return ctx.Err()
		case u := <-e.updates:
			e.apply(u)
		case <-sweep.C:
			e.sweepCaches()
		}
	}
}

func (e *Engine) apply(u Update) {
	switch {
	case u.State != nil:
		e.applyState(*u.State)
	case u.Flight != nil:
		e.applyFlight(*u.Flight)
	}
}

func (e *Engine) applyState(s models.StateData) {
	e.mu.Lock()
	cached, ok := e.states.Get(s.ID)
	var applied models.StateData
	switch {
	case !ok:
		applied = s
		e.states.Put(s.ID, applied)
		e.totalSeen++
	case s.Time.Sub(cached.Time) < MergeWindow:
		applied = cached.Merge(s)
		e.states.Put(s.ID, applied)
	default:
		flush := cached
		applied = s
		e.states.Put(s.ID, applied)
		e.schedulePersist(func() { e.flushState(flush) })
	}
	e.mu.Unlock()

	if e.paths != nil {
		e.paths.AppendState(applied)
	}
	e.broadcast(applied)
}

func (e *Engine) applyFlight(f models.FlightData) {
	now := e.now()

	e.mu.Lock()
	entry, ok := e.flights.Get(f.ID)
	if ok && !airportsChanged(entry.data, f) && now.Sub(entry.committed) <= flightRefresh {
		e.mu.Unlock()
		return
	}

	merged := f
	if ok {
		merged = entry.data.Merge(f)
	}

	dep, hasDep := merged.DepartureAirport.Get()
	arr, hasArr := merged.ArrivalAirport.Get()
	if (!hasDep || dep == "") && (!hasArr || arr == "") {
		// No active flight: drop the record entirely.
		e.flights.Invalidate(f.ID)
		e.mu.Unlock()
		if e.repo != nil {
			e.schedulePersist(func() {
				if err := e.repo.DeleteFlight(f.ID); err != nil {
					log.Printf("[FUSION] Failed to delete flight %s: %v", f.ID, err)
				}
			})
		}
		return
	}

	e.flights.Put(f.ID, flightEntry{data: merged, committed: now})
	e.mu.Unlock()

	if e.repo != nil {
		e.schedulePersist(func() {
			if err := e.repo.UpsertFlight(merged); err != nil {
				log.Printf("[FUSION] Failed to save flight %s: %v", merged.ID, err)
			}
		})
	}
	if e.paths != nil {
		e.paths.AppendFlight(merged)
	}
}

// airportsChanged reports whether the update names a departure or arrival
// airport different from the cached record.
func airportsChanged(old, update models.FlightData) bool {
	if update.DepartureAirport.IsSet() {
		if a, _ := update.DepartureAirport.Get(); a != firstOr(old.DepartureAirport) {
			return true
		}
	}
	if update.ArrivalAirport.IsSet() {
		if a, _ := update.ArrivalAirport.Get(); a != firstOr(old.ArrivalAirport) {
			return true
		}
	}
	return false
}

func firstOr(o models.Opt[string]) string {
	v, _ := o.Get()
	return v
}

func (e *Engine) sweepCaches() {
	now := e.now()
	e.mu.Lock()
	e.states.Sweep(now)
	e.flights.Sweep(now)
	e.mu.Unlock()
}

func (e *Engine) flushState(s models.StateData) {
	if e.repo == nil {
		return
	}
	if err := e.repo.UpsertState(s); err != nil {
		log.Printf("[FUSION] Failed to save state %s: %v", s.ID, err)
	}
}

// schedulePersist hands storage I/O to the worker pool so slow writes never
// block ingestion. A full queue drops the write; flushes are best-effort.
func (e *Engine) schedulePersist(fn func()) {
	select {
	case e.persist <- fn:
	default:
		log.Printf("[FUSION] Persistence queue full, dropping write")
	}
}

func (e *Engine) retentionLoop(ctx context.Context) {
	if e.repo == nil {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(cleanupEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := e.now().Add(-retention)
			if err := e.repo.DeleteStatesBefore(cutoff); err != nil {
				log.Printf("[FUSION] State retention cleanup failed: %v", err)
			}
			if err := e.repo.DeleteFlightsBefore(cutoff); err != nil {
				log.Printf("[FUSION] Flight retention cleanup failed: %v", err)
			}
		}
	}
}

// GetState answers "where was this aircraft at time at": the cached entry if
// it is within the merge window of at, else the nearest stored row within the
// validity window. A zero at means now.
func (e *Engine) GetState(id models.AircraftID, at time.Time) *models.StateData {
	if at.IsZero() {
		at = e.now()
	}

	e.mu.RLock()
	cached, ok := e.states.Get(id)
	e.mu.RUnlock()

	if ok && absDuration(at.Sub(cached.Time)) < MergeWindow {
		v := cached.Copy()
		return &v
	}
	if e.repo == nil {
		return nil
	}

	row, err := e.repo.QueryState(id, at, ValidityWindow)
	if err != nil {
		log.Printf("[FUSION] State query for %s failed: %v", id, err)
		return nil
	}
	return row
}

// GetStates unions cache entries with stored rows around at, cache taking
// priority per aircraft. bounds may be nil for no spatial filter.
func (e *Engine) GetStates(bounds *models.GeodeticBounds, at time.Time) []models.StateData {
	if at.IsZero() {
		at = e.now()
	}

	e.mu.RLock()
	cached := make([]models.StateData, 0, e.states.Len())
	e.states.Each(func(_ models.AircraftID, s models.StateData) {
		cached = append(cached, s)
	})
	e.mu.RUnlock()

	sort.Slice(cached, func(i, j int) bool {
		return cached[i].Time.After(cached[j].Time)
	})

	var out []models.StateData
	seen := make(map[models.AircraftID]bool)
	add := func(s models.StateData) {
		if !seen[s.ID] {
			seen[s.ID] = true
			out = append(out, s.Copy())
		}
	}

	for _, s := range cached {
		if absDuration(at.Sub(s.Time)) < MergeWindow && inBounds(bounds, s) {
			add(s)
		}
	}

	if e.repo != nil {
		rows, err := e.repo.QueryStates(bounds, at, ValidityWindow)
		if err != nil {
			log.Printf("[FUSION] States query failed: %v", err)
		}
		for _, s := range rows {
			add(s)
		}
	}

	for _, s := range cached {
		if absDuration(at.Sub(s.Time)) < ValidityWindow && inBounds(bounds, s) {
			add(s)
		}
	}
	return out
}

// GetFlight returns the cached flight record, falling back to storage.
func (e *Engine) GetFlight(id models.AircraftID) *models.FlightData {
	e.mu.RLock()
	entry, ok := e.flights.Get(id)
	e.mu.RUnlock()

	if ok {
		v := entry.data
		return &v
	}
	if e.repo == nil {
		return nil
	}

	row, err := e.repo.QueryFlight(id)
	if err != nil {
		log.Printf("[FUSION] Flight query for %s failed: %v", id, err)
		return nil
	}
	return row
}

func (e *Engine) GetStats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Stats{AircraftCount: e.states.Len(), TotalSeen: e.totalSeen}
}

func inBounds(bounds *models.GeodeticBounds, s models.StateData) bool {
	if bounds == nil {
		return true
	}
	return s.Position != nil && bounds.Contains(*s.Position)
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
