// Package live provides small typed publish-subscribe primitives used to
// expose query results that update as the underlying store changes.
package live

import "sync"

// Subscription represents an active subscription to a Value or Signal.
// Cancel is safe to call more than once.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// Cancel detaches the subscriber. No callback is delivered after Cancel
// returns.
func (s *Subscription) Cancel() {
	s.once.Do(s.cancel)
}

// Value holds the latest emission of an observable query. Subscribers
// receive the current value immediately (if one has been published) and
// every subsequent Set.
type Value[T any] struct {
	mu      sync.Mutex
	current T
	set     bool
	nextID  int64
	subs    map[int64]func(T)
}

// NewValue creates an empty Value. Get returns the zero value until the
// first Set.
func NewValue[T any]() *Value[T] {
	return &Value[T]{subs: make(map[int64]func(T))}
}

// NewValueOf creates a Value with an initial published value.
func NewValueOf[T any](initial T) *Value[T] {
	v := NewValue[T]()
	v.current = initial
	v.set = true
	return v
}

// Get returns the most recently published value.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Set publishes a new value to all subscribers.
func (v *Value[T]) Set(val T) {
	v.mu.Lock()
	v.current = val
	v.set = true
	fns := make([]func(T), 0, len(v.subs))
	for _, fn := range v.subs {
		fns = append(fns, fn)
	}
	v.mu.Unlock()

	// Callbacks run outside the lock so a subscriber may re-subscribe or
	// read the value without deadlocking.
	for _, fn := range fns {
		fn(val)
	}
}

// Subscribe registers fn and, if a value has been published, delivers it
// synchronously before returning.
func (v *Value[T]) Subscribe(fn func(T)) *Subscription {
	v.mu.Lock()
	id := v.nextID
	v.nextID++
	v.subs[id] = fn
	replay := v.set
	current := v.current
	v.mu.Unlock()

	if replay {
		fn(current)
	}
	return &Subscription{cancel: func() {
		v.mu.Lock()
		delete(v.subs, id)
		v.mu.Unlock()
	}}
}

// Signal is a value-less change broadcaster. Stores notify it after every
// committed mutation; derived observables subscribe to re-run their query.
type Signal struct {
	mu     sync.Mutex
	nextID int64
	subs   map[int64]func()
}

// NewSignal creates an empty Signal.
func NewSignal() *Signal {
	return &Signal{subs: make(map[int64]func())}
}

// Notify invokes every subscriber.
func (s *Signal) Notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Subscribe registers fn to run on every Notify.
func (s *Signal) Subscribe(fn func()) *Subscription {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return &Subscription{cancel: func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}}
}
