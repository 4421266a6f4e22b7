package fusion

import "aircraft-fusion/pkg/models"

// Subscribe returns a channel receiving every applied state update. Slow
// subscribers drop updates rather than stalling the worker.
func (e *Engine) Subscribe() chan models.StateData {
	ch := make(chan models.StateData, 100)
	e.eventsMu.Lock()
	e.subscribers = append(e.subscribers, ch)
	e.eventsMu.Unlock()
	return ch
}

func (e *Engine) Unsubscribe(ch chan models.StateData) {
	e.eventsMu.Lock()
	defer e.eventsMu.Unlock()
	for i, sub := range e.subscribers {
		if sub == ch {
			e.subscribers = append(e.subscribers[:i], e.subscribers[i+1:]...)
			close(ch)
			return
		}
	}
}

func (e *Engine) broadcast(s models.StateData) {
	e.eventsMu.RLock()
	defer e.eventsMu.RUnlock()
	for _, ch := range e.subscribers {
		select {
		case ch <- s:
		default:
		}
	}
}
