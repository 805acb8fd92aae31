// Package store holds observable snapshots of server-owned aggregates.
//
// A Store keeps the last applied value of type T and notifies subscribers on
// every accepted publication. Fetches take a ticket with Begin before the
// remote call and Publish with it afterwards; a ticket older than the newest
// applied one is rejected, so a slow response can not overwrite fresher state.
package store

import (
	"fmt"
	"sync"

	"github.com/asaskevich/EventBus"
)

type Store[T any] struct {
	mu      sync.RWMutex
	topic   string
	bus     EventBus.Bus
	value   T
	issued  uint64
	applied uint64
	subs    map[uint64]string
	nextSub uint64
}

func New[T any](topic string, initial T) *Store[T] {
	return &Store[T]{
		topic: topic,
		bus:   EventBus.New(),
		value: initial,
		subs:  make(map[uint64]string),
	}
}

// Snapshot returns the current value.
func (s *Store[T]) Snapshot() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Begin issues a ticket for a fetch that will later Publish.
func (s *Store[T]) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// Publish applies v if ticket is newer than the last applied one and
// reports whether it did.
func (s *Store[T]) Publish(ticket uint64, v T) bool {
	s.mu.Lock()
	if ticket <= s.applied {
		s.mu.Unlock()
		return false
	}
	s.applied = ticket
	s.value = v
	topics := make([]string, 0, len(s.subs))
	for _, t := range s.subs {
		topics = append(topics, t)
	}
	s.mu.Unlock()

	for _, t := range topics {
		s.bus.Publish(t, v)
	}
	return true
}

// Subscribe calls fn synchronously on every accepted publication. The
// returned func removes the subscription.
//
// Each subscriber gets its own topic: EventBus identifies handlers by code
// pointer, so closures from one literal would be indistinguishable on a
// shared topic.
func (s *Store[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	s.mu.Lock()
	s.nextSub++
	id := s.nextSub
	topic := fmt.Sprintf("%s:%d", s.topic, id)
	s.subs[id] = topic
	s.mu.Unlock()

	if err := s.bus.Subscribe(topic, fn); err != nil {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
		return func() {}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			_ = s.bus.Unsubscribe(topic, fn)
		})
	}
}
