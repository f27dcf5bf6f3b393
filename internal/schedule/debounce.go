package schedule

import (
	"time"

	"github.com/dshills/chartflow/internal/logging"
)

// Default debounce timings.
const (
	DefaultDebounceInterval = 10 * time.Millisecond
	DefaultDebounceMax      = 100 * time.Millisecond
)

// Debouncer coalesces change names into sessions. A session starts with
// the first Trigger after idle and ends when no Trigger arrives for the
// interval, or immediately on the Trigger that finds the session older
// than the maximum.
type Debouncer struct {
	loop     Loop
	callback func(Names)
	interval time.Duration
	max      time.Duration
	logger   *logging.Logger
	observer Observer

	active bool
	start  time.Time
	names  Names
	cancel func()
}

// DebounceOption configures a Debouncer.
type DebounceOption func(*Debouncer)

// WithDebounceLogger sets the logger used to report callback panics.
func WithDebounceLogger(l *logging.Logger) DebounceOption {
	return func(d *Debouncer) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithDebounceObserver attaches a statistics observer.
func WithDebounceObserver(o Observer) DebounceOption {
	return func(d *Debouncer) {
		d.observer = o
	}
}

// NewDebouncer creates a debouncer. Non-positive durations select the
// defaults.
func NewDebouncer(loop Loop, cb func(Names), interval, max time.Duration, opts ...DebounceOption) *Debouncer {
	if interval <= 0 {
		interval = DefaultDebounceInterval
	}
	if max <= 0 {
		max = DefaultDebounceMax
	}
	d := &Debouncer{
		loop:     loop,
		callback: cb,
		interval: interval,
		max:      max,
		logger:   logging.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Trigger records name in the current session.
func (d *Debouncer) Trigger(name string) {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}

	now := d.loop.Now()
	if !d.active {
		d.active = true
		d.start = now
		d.names = nil
	}
	d.names = d.names.Add(name)

	if now.Sub(d.start) > d.max {
		d.fire(true)
		return
	}
	d.cancel = d.loop.AfterFunc(d.interval, func() {
		d.cancel = nil
		d.fire(false)
	})
}

// Active reports whether a session is open.
func (d *Debouncer) Active() bool {
	return d.active
}

// Stop cancels the pending timer and ends the session without firing.
func (d *Debouncer) Stop() {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.active = false
	d.names = nil
}

func (d *Debouncer) fire(forced bool) {
	names := d.names
	d.active = false
	d.names = nil

	if d.observer != nil {
		d.observer.DebounceFired(forced)
	}

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("debounce callback panicked: %v", r)
		}
	}()
	if d.callback != nil {
		d.callback(names)
	}
}
