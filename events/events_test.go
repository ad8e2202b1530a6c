package events

import (
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmitterDeliversToAllListeners(t *testing.T) {
	e := NewEmitter()

	var got []Event
	e.Subscribe(func(ev Event) { got = append(got, ev) })
	e.Subscribe(func(ev Event) { got = append(got, ev) })

	ev := Event{
		Name:       ResponseEvent,
		Method:     http.MethodGet,
		URL:        "https://api.box.com/2.0/folders/0",
		StatusCode: 200,
	}
	e.Emit(ev)

	assert.Len(t, got, 2)
	assert.Equal(t, ev, got[0])
	assert.Equal(t, ev, got[1])
}

func TestEmitterUnsubscribe(t *testing.T) {
	e := NewEmitter()

	var count int
	unsubscribe := e.Subscribe(func(Event) { count++ })

	e.Emit(Event{Name: ResponseEvent})
	unsubscribe()
	e.Emit(Event{Name: ResponseEvent})

	assert.Equal(t, 1, count)
	assert.Equal(t, 0, e.Len())
}

func TestEmitterCarriesError(t *testing.T) {
	e := NewEmitter()

	cause := errors.New("boom")
	var got Event
	e.Subscribe(func(ev Event) { got = ev })

	e.Emit(Event{Name: ResponseEvent, Err: cause})
	assert.Equal(t, cause, got.Err)
}

func TestEmitterConcurrentEmit(t *testing.T) {
	e := NewEmitter()

	var mu sync.Mutex
	count := 0
	e.Subscribe(func(Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.Emit(Event{Name: ResponseEvent})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, count)
}
