package schedule

import (
	"time"

	"github.com/dshills/chartflow/internal/logging"
)

// ThrottleService aggregates change names for every registered Throttle
// and flushes all of them together on the next frame of its Loop, in the
// order they were first triggered. Throttles registered with a delay are
// flushed by their own timer instead.
//
// A ThrottleService is confined to its loop goroutine.
type ThrottleService struct {
	loop     Loop
	logger   *logging.Logger
	observer Observer

	pending     []*pendingNames
	index       map[*Throttle]*pendingNames
	cancelFrame func()
}

type pendingNames struct {
	owner *Throttle
	names Names
}

// ServiceOption configures a ThrottleService.
type ServiceOption func(*ThrottleService)

// WithServiceLogger sets the logger used to report callback panics.
func WithServiceLogger(l *logging.Logger) ServiceOption {
	return func(s *ThrottleService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithServiceObserver attaches a statistics observer.
func WithServiceObserver(o Observer) ServiceOption {
	return func(s *ThrottleService) {
		s.observer = o
	}
}

// NewThrottleService creates a service on loop.
func NewThrottleService(loop Loop, opts ...ServiceOption) *ThrottleService {
	s := &ThrottleService{
		loop:   loop,
		logger: logging.Default(),
		index:  make(map[*Throttle]*pendingNames),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Loop returns the loop the service schedules on.
func (s *ThrottleService) Loop() Loop {
	return s.loop
}

// Register creates a Throttle that calls cb with the names accumulated
// since its last flush. A positive delay gives the throttle its own timer.
func (s *ThrottleService) Register(cb func(Names), delay time.Duration) *Throttle {
	return &Throttle{service: s, callback: cb, delay: delay}
}

// Pending returns the number of throttles with accumulated names.
func (s *ThrottleService) Pending() int {
	return len(s.pending)
}

func (s *ThrottleService) add(t *Throttle, name string) {
	entry, ok := s.index[t]
	if !ok {
		entry = &pendingNames{owner: t}
		s.index[t] = entry
		s.pending = append(s.pending, entry)
	}
	entry.names = entry.names.Add(name)
}

func (s *ThrottleService) take(t *Throttle) (Names, bool) {
	entry, ok := s.index[t]
	if !ok {
		return nil, false
	}
	delete(s.index, t)
	for i, p := range s.pending {
		if p == entry {
			s.pending = append(s.pending[:i:i], s.pending[i+1:]...)
			break
		}
	}
	return entry.names, true
}

func (s *ThrottleService) scheduleFrame() {
	if s.cancelFrame != nil {
		return
	}
	s.cancelFrame = s.loop.NextFrame(s.flush)
}

// flush runs every pending non-delayed throttle. Throttles triggered by
// these callbacks are collected for the following frame.
func (s *ThrottleService) flush() {
	s.cancelFrame = nil

	batch := s.pending
	s.pending = nil
	for _, entry := range batch {
		if entry.owner.delay > 0 {
			s.pending = append(s.pending, entry)
			continue
		}
		delete(s.index, entry.owner)
	}

	ran := 0
	for _, entry := range batch {
		t := entry.owner
		if t.delay > 0 || t.stopped {
			continue
		}
		s.invoke(t, entry.names)
		ran++
	}

	if s.observer != nil && ran > 0 {
		s.observer.ThrottleFlushed(ran)
	}
}

func (s *ThrottleService) invoke(t *Throttle, names Names) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("throttle callback panicked: %v", r)
		}
	}()
	t.callback(names)
}

// Throttle coalesces change names until its service flushes it.
type Throttle struct {
	service  *ThrottleService
	callback func(Names)
	delay    time.Duration
	cancel   func()
	stopped  bool
}

// Trigger records name and makes sure a flush is scheduled.
func (t *Throttle) Trigger(name string) {
	if t.stopped {
		return
	}
	s := t.service
	s.add(t, name)

	if t.delay <= 0 {
		s.scheduleFrame()
		return
	}
	if t.cancel != nil {
		return
	}
	t.cancel = s.loop.AfterFunc(t.delay, func() {
		t.cancel = nil
		names, ok := s.take(t)
		if !ok || t.stopped {
			return
		}
		s.invoke(t, names)
		if s.observer != nil {
			s.observer.ThrottleFlushed(1)
		}
	})
}

// Stop drops the pending names and cancels the pending timer. The
// callback is not called afterwards. A stopped throttle ignores Trigger.
func (t *Throttle) Stop() {
	t.stopped = true
	t.service.take(t)
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}

// Stopped reports whether Stop has been called.
func (t *Throttle) Stopped() bool {
	return t.stopped
}
