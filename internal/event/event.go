// Package event implements the per-instance publish/subscribe bus used by
// every chartflow engine object.
//
// A Dispatcher delivers events synchronously, type-specific listeners
// first and wildcard (Any) listeners after, each group in registration
// order. While silent, events are queued and later flushed as a single
// TypeChangeSilence event.
package event

import "github.com/dshills/chartflow/internal/component"

// Type identifies a kind of event.
type Type string

// Any is the wildcard type; its listeners receive every event.
const Any Type = "*"

// NewType returns a unique event type derived from name.
func NewType(name string) Type {
	return Type(component.UID(name))
}

// String returns the type as a string.
func (t Type) String() string {
	return string(t)
}

// TypeChangeSilence is dispatched, bypassing silence, whenever a
// dispatcher's silent flag toggles. Its Data is nil when silence starts
// and the deduplicated []*Event queue when it ends.
var TypeChangeSilence = NewType("change silence")

// Event is a single notification.
type Event struct {
	// Type is the event type.
	Type Type

	// Data is the event payload.
	Data any

	// OldData is the Data of the previous locally originated event of the
	// same type on the dispatcher that first delivered this event.
	OldData any

	// Target is the owner of the dispatcher that first delivered the event.
	Target any

	bubbled bool
}

// New creates an event of type t carrying data.
func New(t Type, data any) *Event {
	return &Event{Type: t, Data: data}
}

// Bubbled reports whether the event was forwarded from another dispatcher.
func (e *Event) Bubbled() bool {
	return e.bubbled
}

// Dedup keeps the last event of every type and returns them in the
// chronological order of those last occurrences. For types [A, B, A, C]
// the result is [B, A(second), C].
func Dedup(events []*Event) []*Event {
	if len(events) == 0 {
		return nil
	}

	seen := make(map[Type]bool, len(events))
	kept := make([]*Event, 0, len(events))
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		if e == nil || seen[e.Type] {
			continue
		}
		seen[e.Type] = true
		kept = append(kept, e)
	}

	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	return kept
}
