package schedule

import (
	"sort"
	"time"
)

// ManualLoop is a deterministic Loop driven by the caller: time only moves
// on Advance and frames only run on RunFrame. Callbacks run synchronously
// on the calling goroutine. It is meant for tests and simulations.
type ManualLoop struct {
	now    time.Time
	seq    uint64
	timers []*manualTask
	frame  []*manualTask
}

type manualTask struct {
	when      time.Time
	seq       uint64
	fn        func()
	cancelled bool
}

// NewManualLoop creates a loop whose clock starts at start. A zero start
// uses a fixed epoch.
func NewManualLoop(start time.Time) *ManualLoop {
	if start.IsZero() {
		start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return &ManualLoop{now: start}
}

// Now returns the simulated time.
func (l *ManualLoop) Now() time.Time {
	return l.now
}

// AfterFunc schedules fn at Now()+d.
func (l *ManualLoop) AfterFunc(d time.Duration, fn func()) func() {
	l.seq++
	task := &manualTask{when: l.now.Add(d), seq: l.seq, fn: fn}
	l.timers = append(l.timers, task)
	return func() { task.cancelled = true }
}

// NextFrame schedules fn for the next RunFrame.
func (l *ManualLoop) NextFrame(fn func()) func() {
	l.seq++
	task := &manualTask{seq: l.seq, fn: fn}
	l.frame = append(l.frame, task)
	return func() { task.cancelled = true }
}

// Advance moves the clock forward by d, running due timers in time order.
// The clock is set to each timer's deadline before it runs, so timers
// scheduled from a callback also fire if they fall within the window.
func (l *ManualLoop) Advance(d time.Duration) {
	target := l.now.Add(d)
	for {
		task := l.nextDue(target)
		if task == nil {
			break
		}
		if task.when.After(l.now) {
			l.now = task.when
		}
		task.fn()
	}
	l.now = target
}

func (l *ManualLoop) nextDue(target time.Time) *manualTask {
	live := l.timers[:0]
	for _, t := range l.timers {
		if !t.cancelled {
			live = append(live, t)
		}
	}
	l.timers = live

	sort.SliceStable(l.timers, func(i, j int) bool {
		if l.timers[i].when.Equal(l.timers[j].when) {
			return l.timers[i].seq < l.timers[j].seq
		}
		return l.timers[i].when.Before(l.timers[j].when)
	})

	if len(l.timers) == 0 || l.timers[0].when.After(target) {
		return nil
	}
	task := l.timers[0]
	l.timers = l.timers[1:]
	return task
}

// RunFrame runs the callbacks scheduled for the current frame and returns
// how many ran. Callbacks scheduled while the frame runs wait for the
// next RunFrame.
func (l *ManualLoop) RunFrame() int {
	batch := l.frame
	l.frame = nil

	ran := 0
	for _, task := range batch {
		if task.cancelled {
			continue
		}
		task.fn()
		ran++
	}
	return ran
}

// PendingTimers returns the number of live timers.
func (l *ManualLoop) PendingTimers() int {
	n := 0
	for _, t := range l.timers {
		if !t.cancelled {
			n++
		}
	}
	return n
}

// PendingFrames returns the number of live frame callbacks.
func (l *ManualLoop) PendingFrames() int {
	n := 0
	for _, t := range l.frame {
		if !t.cancelled {
			n++
		}
	}
	return n
}
