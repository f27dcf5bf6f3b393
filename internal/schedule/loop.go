// Package schedule provides the suspension points of the chartflow engine:
// an event loop abstraction and the two batching schedulers built on it,
// Throttle (per-tick coalescing) and Debouncer (session coalescing with a
// hard maximum delay).
//
// Engine objects are confined to the goroutine running their Loop. All
// callbacks scheduled through a Loop run on that goroutine, one at a time.
package schedule

import "time"

// Loop schedules callbacks. Cancel functions are idempotent and guarantee
// that the callback does not run after they return.
type Loop interface {
	// Now returns the loop's current time.
	Now() time.Time

	// AfterFunc runs fn once after d.
	AfterFunc(d time.Duration, fn func()) (cancel func())

	// NextFrame runs fn on the next tick.
	NextFrame(fn func()) (cancel func())
}

// Observer receives scheduler statistics. metrics.Collectors satisfies it.
type Observer interface {
	ThrottleFlushed(callbacks int)
	DebounceFired(forced bool)
}
