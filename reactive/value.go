// Package reactive provides the minimal reactive value capability the engine
// depends on: anything that can produce a current value, and optionally
// notify subscribers when it changes. Any host reactive system satisfying
// these interfaces can drive the engine.
package reactive

import (
	"reflect"
	"sync"
)

// Source produces a current value of type T each time it is read.
type Source[T any] interface {
	Get() T
}

// AnySource exposes a dynamically typed current value. All containers in
// this package implement it; host systems may too.
type AnySource interface {
	Value() any
}

// Watchable notifies subscribers whenever the underlying value changes.
// Subscribe returns a cancel function that removes the subscription.
type Watchable interface {
	Subscribe(onChange func()) (cancel func())
}

// Cell is a gettable/settable reactive value safe for concurrent use.
type Cell[T any] struct {
	mu   sync.RWMutex
	v    T
	subs map[int]func()
	next int
}

// NewCell creates a cell holding the given initial value.
func NewCell[T any](initial T) *Cell[T] {
	return &Cell[T]{v: initial, subs: make(map[int]func())}
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.v
}

// Value implements AnySource.
func (c *Cell[T]) Value() any {
	return c.Get()
}

// Set replaces the current value and notifies subscribers.
func (c *Cell[T]) Set(v T) {
	c.mu.Lock()
	c.v = v
	listeners := make([]func(), 0, len(c.subs))
	for _, fn := range c.subs {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// Subscribe registers onChange to run after every Set. The returned cancel
// function removes the subscription.
func (c *Cell[T]) Subscribe(onChange func()) (cancel func()) {
	c.mu.Lock()
	id := c.next
	c.next++
	c.subs[id] = onChange
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// Func adapts a zero-argument function to Source.
type Func[T any] func() T

// Get evaluates the function.
func (f Func[T]) Get() T { return f() }

// Value implements AnySource.
func (f Func[T]) Value() any { return f() }

// Static wraps a plain value as a Source that never changes.
type Static[T any] struct{ v T }

// NewStatic creates a constant source.
func NewStatic[T any](v T) Static[T] { return Static[T]{v: v} }

// Get returns the wrapped value.
func (s Static[T]) Get() T { return s.v }

// Value implements AnySource.
func (s Static[T]) Value() any { return s.v }

// Unwrap normalizes the three accepted shapes of a reactive input to its
// current value: an AnySource is read, a zero-argument single-result
// function is called, and anything else is returned as-is. Unwrapping is
// recursive so a source may yield another source.
func Unwrap(v any) any {
	for {
		switch src := v.(type) {
		case nil:
			return nil
		case AnySource:
			v = src.Value()
			continue
		}

		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Func && rv.Type().NumIn() == 0 && rv.Type().NumOut() == 1 {
			out := rv.Call(nil)
			v = out[0].Interface()
			continue
		}
		return v
	}
}

// Watch subscribes onChange to v if it is watchable. It returns a cancel
// function, which is a no-op for plain values and bare functions.
func Watch(v any, onChange func()) (cancel func()) {
	if w, ok := v.(Watchable); ok {
		return w.Subscribe(onChange)
	}
	return func() {}
}
