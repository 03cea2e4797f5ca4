// Package events carries typed notifications between components that must not
// hold references to each other.
package events

import (
	"sync"

	"macsim/model"
)

// OpenAppRequest asks the shell to open an application, optionally bound to a file.
type OpenAppRequest struct {
	AppID  model.AppID
	FileID string
}

type subscriber[T any] struct {
	id uint64
	fn func(T)
}

// Emitter is a small typed pub-sub. Subscribers are called synchronously, in
// registration order, on the goroutine that calls Emit.
type Emitter[T any] struct {
	mu     sync.RWMutex
	subs   []subscriber[T]
	nextID uint64
}

// NewEmitter creates an Emitter with no subscribers.
func NewEmitter[T any]() *Emitter[T] {
	return &Emitter[T]{}
}

// Subscribe registers fn and returns a function that removes it.
// Calling the returned function more than once is harmless.
func (e *Emitter[T]) Subscribe(fn func(T)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextID
	e.nextID++
	e.subs = append(e.subs, subscriber[T]{id: id, fn: fn})
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, s := range e.subs {
			if s.id == id {
				e.subs = append(e.subs[:i], e.subs[i+1:]...)
				break
			}
		}
	}
}

// Emit delivers ev to every subscriber. The subscriber list is copied first so
// callbacks may subscribe, unsubscribe or emit again.
func (e *Emitter[T]) Emit(ev T) {
	e.mu.RLock()
	subs := make([]subscriber[T], len(e.subs))
	copy(subs, e.subs)
	e.mu.RUnlock()
	for _, s := range subs {
		s.fn(ev)
	}
}

// Count returns the number of subscribers.
func (e *Emitter[T]) Count() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.subs)
}
