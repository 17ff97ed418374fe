// Package observable provides a minimal observable value: a wrapper that
// stores a value and notifies subscribers synchronously when it changes.
package observable

import "sync"

// Value holds a comparable value and a set of subscriber callbacks.
// Subscribers run synchronously on the mutating goroutine, and only when
// the new value differs from the old one.
type Value[T comparable] struct {
	mu   sync.Mutex
	v    T
	next int
	subs map[int]func(old, new T)
}

// NewValue returns an observable holding the initial value.
func NewValue[T comparable](initial T) *Value[T] {
	return &Value[T]{v: initial, subs: make(map[int]func(old, new T))}
}

// Get returns the current value.
func (o *Value[T]) Get() T {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.v
}

// Set stores v and notifies subscribers if it differs from the current
// value. It reports whether a change occurred.
func (o *Value[T]) Set(v T) bool {
	o.mu.Lock()
	old := o.v
	if old == v {
		o.mu.Unlock()
		return false
	}
	o.v = v
	subs := make([]func(old, new T), 0, len(o.subs))
	for _, fn := range o.subs {
		subs = append(subs, fn)
	}
	o.mu.Unlock()

	for _, fn := range subs {
		fn(old, v)
	}
	return true
}

// Subscribe registers fn to run on every change and returns a function that
// removes the subscription.
func (o *Value[T]) Subscribe(fn func(old, new T)) (unsubscribe func()) {
	o.mu.Lock()
	id := o.next
	o.next++
	o.subs[id] = fn
	o.mu.Unlock()

	return func() {
		o.mu.Lock()
		delete(o.subs, id)
		o.mu.Unlock()
	}
}
