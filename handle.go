package confer

import "sync"

// Shared is a synchronized wrapper around a record instance: many readers
// may hold the record concurrently, but a writer is exclusive. It is the Go
// realization of the original's SharedConferModule<T> = Arc<RwLock<T>>; Go's
// garbage collector makes the reference-counting half of that type
// unnecessary, since a *Shared[T] is already a freely shareable pointer
// that is collected once its last reference disappears.
//
// NewShared is the only sanctioned way to construct one: the module binding
// layer always builds its handles through it, so the synchronizer choice
// stays an implementation detail of this package.
type Shared[T any] struct {
	mu    sync.RWMutex
	value T
}

// NewShared wraps v in a new Shared handle.
func NewShared[T any](v T) *Shared[T] {
	return &Shared[T]{value: v}
}

// Lock acquires the handle's writer lock.
func (s *Shared[T]) Lock() { s.mu.Lock() }

// Unlock releases the handle's writer lock.
func (s *Shared[T]) Unlock() { s.mu.Unlock() }

// RLock acquires one of the handle's reader locks.
func (s *Shared[T]) RLock() { s.mu.RLock() }

// RUnlock releases a reader lock acquired with RLock.
func (s *Shared[T]) RUnlock() { s.mu.RUnlock() }

// Get returns a pointer to the guarded record. The caller must hold Lock
// or RLock for the duration of any access through it.
func (s *Shared[T]) Get() *T { return &s.value }

// Load returns a copy of the guarded record, acquired under a reader lock.
// It is a convenience for callers that only need a snapshot.
func (s *Shared[T]) Load() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Store replaces the guarded record wholesale, acquired under the writer
// lock.
func (s *Shared[T]) Store(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = v
}
