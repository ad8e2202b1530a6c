// events/events.go
// Package events provides a process-wide emitter through which the request
// layer publishes terminal request outcomes for observability. Emission never
// affects control flow; listeners observe, they do not intercept.
package events

import (
	"net/http"
	"sync"
)

// ResponseEvent is the name under which every terminal request outcome
// (success or permanent failure) is published, exactly once per logical call.
const ResponseEvent = "response"

// Event describes a terminal request outcome. RequestHeaders is a snapshot of
// the outgoing headers with sensitive values already redacted by the
// publisher.
type Event struct {
	Name           string
	Method         string
	URL            string
	StatusCode     int
	RequestHeaders http.Header
	Err            error
}

// Listener receives emitted events. Listeners are invoked synchronously in
// subscription order; they must not block.
type Listener func(Event)

// Emitter is a minimal fan-out bus safe for concurrent use.
type Emitter struct {
	mu        sync.RWMutex
	nextID    int
	listeners map[int]Listener
	order     []int
}

// NewEmitter creates an empty Emitter.
func NewEmitter() *Emitter {
	return &Emitter{
		listeners: make(map[int]Listener),
	}
}

// Subscribe registers a listener and returns a function that removes it.
func (e *Emitter) Subscribe(l Listener) func() {
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.listeners[id] = l
	e.order = append(e.order, id)
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		delete(e.listeners, id)
		for i, v := range e.order {
			if v == id {
				e.order = append(e.order[:i], e.order[i+1:]...)
				break
			}
		}
		e.mu.Unlock()
	}
}

// Emit delivers the event to every subscribed listener.
func (e *Emitter) Emit(ev Event) {
	e.mu.RLock()
	snapshot := make([]Listener, 0, len(e.order))
	for _, id := range e.order {
		if l, ok := e.listeners[id]; ok {
			snapshot = append(snapshot, l)
		}
	}
	e.mu.RUnlock()

	for _, l := range snapshot {
		l(ev)
	}
}

// Len returns the number of subscribed listeners.
func (e *Emitter) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.listeners)
}
