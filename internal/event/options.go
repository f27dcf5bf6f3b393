package event

import "github.com/dshills/chartflow/internal/logging"

// Observer receives dispatch statistics. metrics.Collectors satisfies it.
type Observer interface {
	EventDispatched(eventType string)
	ListenerPanicked(eventType string)
}

// PanicHandler is called after a listener panic has been recovered.
type PanicHandler func(err *PanicError)

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the dispatcher logger.
func WithLogger(l *logging.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = l
	}
}

// WithTarget sets the value stamped as Target on locally originated events.
// It defaults to the dispatcher itself.
func WithTarget(target any) Option {
	return func(d *Dispatcher) {
		if target != nil {
			d.target = target
		}
	}
}

// WithPanicHandler sets a handler invoked for every recovered listener panic.
func WithPanicHandler(h PanicHandler) Option {
	return func(d *Dispatcher) {
		d.panicHandler = h
	}
}

// WithObserver attaches a statistics observer.
func WithObserver(o Observer) Option {
	return func(d *Dispatcher) {
		d.observer = o
	}
}

// WithKind overrides the kind used to derive the dispatcher id.
func WithKind(kind string) Option {
	return func(d *Dispatcher) {
		if kind != "" {
			d.kind = kind
		}
	}
}
