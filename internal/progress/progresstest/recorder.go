// Package progresstest provides an observer that records search events.
package progresstest

import (
	"sync"

	"findfiles/internal/models"
)

// Recorder keeps every event it receives, in order.
type Recorder struct {
	mu     sync.Mutex
	events []models.Event
}

func (r *Recorder) Notify(ev models.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *Recorder) Events() []models.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Event(nil), r.events...)
}

// Count returns how many recorded events have the given type.
func (r *Recorder) Count(t models.EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Type == t {
			n++
		}
	}
	return n
}
