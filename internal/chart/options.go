package chart

import (
	"time"

	"github.com/dshills/chartflow/internal/event"
	"github.com/dshills/chartflow/internal/logging"
	"github.com/dshills/chartflow/internal/schedule"
)

// ContextOption configures a Context.
type ContextOption func(*settings)

type settings struct {
	logger           *logging.Logger
	loop             schedule.Loop
	throttles        *schedule.ThrottleService
	initAll          bool
	alwaysOwn        []Option
	debounceInterval time.Duration
	debounceMax      time.Duration
	observer         event.Observer
	schedObserver    schedule.Observer
	name             string
}

// WithLogger sets the context logger.
func WithLogger(l *logging.Logger) ContextOption {
	return func(s *settings) {
		s.logger = l
	}
}

// WithLoop sets the loop used for the data terms debouncer. Unless
// WithThrottles is also given, a throttle service is created on it.
func WithLoop(loop schedule.Loop) ContextOption {
	return func(s *settings) {
		s.loop = loop
	}
}

// WithThrottles shares a throttle service between contexts so that their
// change-complete events flush on the same tick.
func WithThrottles(svc *schedule.ThrottleService) ContextOption {
	return func(s *settings) {
		s.throttles = svc
	}
}

// WithInitAll makes the context own every property.
func WithInitAll() ContextOption {
	return func(s *settings) {
		s.initAll = true
	}
}

// WithAlwaysOwn marks properties that the context owns permanently; Delete
// ignores them.
func WithAlwaysOwn(opts ...Option) ContextOption {
	return func(s *settings) {
		s.alwaysOwn = append(s.alwaysOwn, opts...)
	}
}

// WithDataDebounce sets the data terms session timings.
func WithDataDebounce(interval, max time.Duration) ContextOption {
	return func(s *settings) {
		s.debounceInterval = interval
		s.debounceMax = max
	}
}

// WithObserver attaches dispatch and scheduler statistics observers.
// metrics.Collectors satisfies both.
func WithObserver(o interface {
	event.Observer
	schedule.Observer
}) ContextOption {
	return func(s *settings) {
		s.observer = o
		s.schedObserver = o
	}
}

// WithName sets the context's arbitrary name.
func WithName(name string) ContextOption {
	return func(s *settings) {
		s.name = name
	}
}

// resolve fills in defaults. Without a loop or throttle service a context
// shares its parent's; a parentless one gets a schedule.ManualLoop that the
// caller drives, so no scheduler goroutine ever touches it.
func (s *settings) resolve(parent *Context) {
	if s.logger == nil {
		s.logger = logging.Default()
	}
	switch {
	case s.throttles != nil && s.loop == nil:
		s.loop = s.throttles.Loop()
	case s.throttles == nil && s.loop != nil:
		s.throttles = schedule.NewThrottleService(s.loop, schedule.WithServiceLogger(s.logger))
	case s.throttles == nil && s.loop == nil && parent != nil:
		s.loop, s.throttles = parent.cfg.loop, parent.cfg.throttles
	case s.throttles == nil && s.loop == nil:
		s.loop = schedule.NewManualLoop(time.Now())
		s.throttles = schedule.NewThrottleService(s.loop, schedule.WithServiceLogger(s.logger))
	}
}

// inherited returns the settings a derived context (clone, registry
// entry) starts from.
func (s settings) inherited() []ContextOption {
	opts := []ContextOption{
		WithLogger(s.logger),
		WithThrottles(s.throttles),
		WithDataDebounce(s.debounceInterval, s.debounceMax),
	}
	if len(s.alwaysOwn) > 0 {
		opts = append(opts, WithAlwaysOwn(s.alwaysOwn...))
	}
	if s.observer != nil {
		opts = append(opts, func(d *settings) {
			d.observer = s.observer
			d.schedObserver = s.schedObserver
		})
	}
	return opts
}
