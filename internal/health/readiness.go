// Package health tracks per-component readiness for the service health
// endpoint.
package health

import (
	"sync"
	"time"
)

// ComponentState is the readiness of one component plus when it last changed.
type ComponentState struct {
	Ready   bool      `json:"ready"`
	Message string    `json:"message,omitempty"`
	Since   time.Time `json:"since"`
}

// Readiness aggregates component states; the service is ready only when every
// registered component is.
type Readiness struct {
	mu         sync.RWMutex
	components map[string]ComponentState
}

func NewReadiness() *Readiness {
	return &Readiness{
		components: make(map[string]ComponentState),
	}
}

// Set records the state of a component, stamping the transition time.
func (r *Readiness) Set(component string, ready bool, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.components[component] = ComponentState{
		Ready:   ready,
		Message: message,
		Since:   time.Now().UTC(),
	}
}

func (r *Readiness) MarkReady(component string) {
	r.Set(component, true, "running")
}

func (r *Readiness) MarkNotReady(component, reason string) {
	if reason == "" {
		reason = "stopped"
	}
	r.Set(component, false, reason)
}

// Snapshot returns a copy of the component map.
func (r *Readiness) Snapshot() map[string]ComponentState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]ComponentState, len(r.components))
	for k, v := range r.components {
		out[k] = v
	}
	return out
}

// Ready reports whether every registered component is ready. No components
// registered means not ready; the process is still starting.
func (r *Readiness) Ready() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.components) == 0 {
		return false
	}
	for _, state := range r.components {
		if !state.Ready {
			return false
		}
	}
	return true
}
