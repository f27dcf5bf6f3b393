// Package store provides reactive value cells: a single value with
// equality-gated writes, subscribe-is-also-a-read semantics, and pause.
package store

import (
	"github.com/dshills/chartflow/internal/event"
	"github.com/dshills/chartflow/internal/logging"
)

// TypeChange is dispatched by a cell whenever its value changes.
var TypeChange = event.NewType("store change")

// EqualFunc reports whether two cell values are equal.
type EqualFunc func(a, b any) bool

// Option configures a Cell.
type Option func(*options)

type options struct {
	equal    EqualFunc
	logger   *logging.Logger
	observer event.Observer
}

// WithEqual replaces the equality test.
func WithEqual(eq EqualFunc) Option {
	return func(o *options) {
		if eq != nil {
			o.equal = eq
		}
	}
}

// WithLogger sets the logger used by the cell's dispatcher.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithObserver attaches a dispatch statistics observer.
func WithObserver(obs event.Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// Cell holds one reactive value. Writes always record the requested
// value; they change the value and notify subscribers only when the
// equality test fails and the cell is not paused.
//
// A Cell is not safe for concurrent use.
type Cell[T any] struct {
	*event.Dispatcher

	value     T
	requested T
	paused    bool
	equal     EqualFunc
}

// New creates a cell using Identical equality.
func New[T any](initial T, opts ...Option) *Cell[T] {
	o := options{equal: Identical}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Cell[T]{
		value:     initial,
		requested: initial,
		equal:     o.equal,
	}

	dopts := []event.Option{
		event.WithKind("store"),
		event.WithLogger(o.logger),
		event.WithTarget(c),
	}
	if o.observer != nil {
		dopts = append(dopts, event.WithObserver(o.observer))
	}
	c.Dispatcher = event.NewDispatcher(dopts...)
	c.Remember(TypeChange, initial)
	return c
}

// NewDeep creates a cell using DeepEqual.
func NewDeep[T any](initial T, opts ...Option) *Cell[T] {
	return New(initial, append([]Option{WithEqual(DeepEqual)}, opts...)...)
}

// Value returns the current value.
func (c *Cell[T]) Value() T {
	return c.value
}

// RequestedValue returns the last written value, which differs from
// Value while the cell is paused or after an equal write was skipped.
func (c *Cell[T]) RequestedValue() T {
	return c.requested
}

// Set writes v.
func (c *Cell[T]) Set(v T) {
	c.requested = v
	if c.paused || c.equal(v, c.value) {
		return
	}
	c.commit(v)
}

// SetForce writes v bypassing the equality test. Identical values and
// paused cells still do not notify.
func (c *Cell[T]) SetForce(v T) {
	c.requested = v
	if c.paused || Identical(v, c.value) {
		return
	}
	c.commit(v)
}

func (c *Cell[T]) commit(v T) {
	c.value = v
	c.Dispatch(event.New(TypeChange, v), false)
}

// Update sets the value returned by fn applied to the current value.
func (c *Cell[T]) Update(fn func(T) T) {
	c.Set(fn(c.value))
}

// Subscribe calls fn immediately with the current value as both value and
// old value, then after every change. It returns an unsubscribe function.
func (c *Cell[T]) Subscribe(fn func(value, old T)) func() {
	if fn == nil {
		return func() {}
	}
	fn(c.value, c.value)
	return c.OnChange(fn)
}

// OnChange calls fn after every change without the initial call.
func (c *Cell[T]) OnChange(fn func(value, old T)) func() {
	if fn == nil {
		return func() {}
	}
	return c.AddListener(TypeChange, func(e *event.Event) {
		fn(asT[T](e.Data), asT[T](e.OldData))
	})
}

// Paused reports whether notifications are frozen.
func (c *Cell[T]) Paused() bool {
	return c.paused
}

// SetPaused freezes or releases notifications. Releasing re-applies the
// requested value, so at most one notification is fired for everything
// written while paused.
func (c *Cell[T]) SetPaused(paused bool) {
	if c.paused == paused {
		return
	}
	c.paused = paused
	c.SetSilent(paused)
	if !paused {
		c.Set(c.requested)
	}
}

// Destroy drops all subscribers.
func (c *Cell[T]) Destroy() {
	c.Dispatcher.Destroy()
}

func asT[T any](v any) T {
	t, _ := v.(T)
	return t
}
