package schedule

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/chartflow/internal/logging"
)

// RealLoop runs callbacks on the goroutine executing Run, driven by the
// wall clock. Scheduling methods are safe to call from any goroutine.
type RealLoop struct {
	mu      sync.Mutex
	pending []func()
	wake    chan struct{}
	frame   time.Duration
	logger  *logging.Logger
	running atomic.Bool
}

// RealLoopOption configures a RealLoop.
type RealLoopOption func(*RealLoop)

// WithFrameInterval sets the delay used by NextFrame. Zero, the default,
// runs frame callbacks on the next turn of the loop.
func WithFrameInterval(d time.Duration) RealLoopOption {
	return func(l *RealLoop) {
		if d >= 0 {
			l.frame = d
		}
	}
}

// WithLoopLogger sets the logger used to report recovered panics.
func WithLoopLogger(logger *logging.Logger) RealLoopOption {
	return func(l *RealLoop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewRealLoop creates a loop. Call Run to start processing.
func NewRealLoop(opts ...RealLoopOption) *RealLoop {
	l := &RealLoop{
		wake:   make(chan struct{}, 1),
		logger: logging.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Now returns the wall clock time.
func (l *RealLoop) Now() time.Time {
	return time.Now()
}

// Do queues fn to run on the loop goroutine.
func (l *RealLoop) Do(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.pending = append(l.pending, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Call runs fn on the loop goroutine and waits for it to return or for
// ctx to be done.
func (l *RealLoop) Call(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	l.Do(func() {
		defer close(done)
		fn()
	})
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AfterFunc runs fn on the loop goroutine after d.
func (l *RealLoop) AfterFunc(d time.Duration, fn func()) func() {
	var cancelled atomic.Bool
	timer := time.AfterFunc(d, func() {
		l.Do(func() {
			if !cancelled.Load() {
				fn()
			}
		})
	})
	return func() {
		cancelled.Store(true)
		timer.Stop()
	}
}

// NextFrame runs fn on the loop goroutine on the next frame.
func (l *RealLoop) NextFrame(fn func()) func() {
	if l.frame > 0 {
		return l.AfterFunc(l.frame, fn)
	}
	var cancelled atomic.Bool
	l.Do(func() {
		if !cancelled.Load() {
			fn()
		}
	})
	return func() {
		cancelled.Store(true)
	}
}

// Running reports whether Run is executing.
func (l *RealLoop) Running() bool {
	return l.running.Load()
}

// Run processes callbacks until ctx is done. Panics in callbacks are
// recovered and logged so that one faulty callback cannot stop the loop.
func (l *RealLoop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrLoopRunning
	}
	defer l.running.Store(false)

	for {
		l.mu.Lock()
		batch := l.pending
		l.pending = nil
		l.mu.Unlock()

		for _, fn := range batch {
			l.run(fn)
		}
		if len(batch) > 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

func (l *RealLoop) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("loop callback panicked: %v", r)
		}
	}()
	fn()
}
