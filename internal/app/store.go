package app

import (
	"sync"

	"github.com/fold-labs/fahlink/internal/domain"
)

// Observer receives the new document after every publish.
// Observers must not block; defer heavy work to their own goroutine.
type Observer func(doc domain.Value)

// Store holds the current mirrored document and the last-known machine
// identity. Exactly one document is current at any instant; Publish
// replaces it atomically and notifies observers synchronously, in
// registration order, before it returns.
//
// The receive loop is the sole writer. Readers must treat returned
// documents as immutable.
type Store struct {
	mu        sync.RWMutex
	doc       domain.Value
	machine   domain.Machine
	observers []storeObserver
	nextID    int
}

type storeObserver struct {
	id int
	fn Observer
}

// NewStore creates an empty store. The document starts Undefined and stays
// so until the first snapshot arrives.
func NewStore() *Store {
	return &Store{}
}

// Current returns the current document. Undefined when no snapshot has
// arrived yet.
func (s *Store) Current() domain.Value {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}

// Machine returns the last-known machine identity. It survives outages:
// identity learned from an earlier snapshot is kept while disconnected.
func (s *Store) Machine() domain.Machine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.machine
}

// Publish replaces the current document and notifies all observers.
func (s *Store) Publish(doc domain.Value) {
	s.mu.Lock()
	s.doc = doc
	if id := domain.MachineID(doc); id != "" {
		s.machine = domain.MachineInfo(doc)
	}
	observers := make([]storeObserver, len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	for _, o := range observers {
		o.fn(doc)
	}
}

// Subscribe registers an observer and returns a cancel function.
// Observers are notified in registration order.
func (s *Store) Subscribe(fn Observer) (cancel func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.observers = append(s.observers, storeObserver{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, o := range s.observers {
			if o.id == id {
				s.observers = append(s.observers[:i], s.observers[i+1:]...)
				return
			}
		}
	}
}
