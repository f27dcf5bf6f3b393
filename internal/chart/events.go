package chart

import "github.com/dshills/chartflow/internal/event"

// Context event types.
var (
	// TypeChange is dispatched on every property change with a Change.
	TypeChange = event.NewType("CHANGE")
	// TypeChangeComplete carries the schedule.Names changed during a tick.
	TypeChangeComplete = event.NewType("CHANGE_COMPLETE")
	// TypeChangeDataTerms is dispatched on every data-affecting change with a Change.
	TypeChangeDataTerms = event.NewType("CHANGE_DATA_TERMS")
	// TypeChangeCompleteDataTerms carries the schedule.Names of a data terms session.
	TypeChangeCompleteDataTerms = event.NewType("CHANGE_COMPLETE_DATA_TERMS")
	// TypeChangeParent carries the new parent, or nil.
	TypeChangeParent = event.NewType("CHANGE_PARENT")
	// TypeChangeEventBubbling carries the new bubbling flag.
	TypeChangeEventBubbling = event.NewType("CHANGE_EVENT_BUBBLING")
	// TypeChangePause carries the new pause flag.
	TypeChangePause = event.NewType("CHANGE_PAUSE")
	// TypeAddChild carries the added child.
	TypeAddChild = event.NewType("ADD_CHILD")
	// TypeRemoveChild carries the removed child.
	TypeRemoveChild = event.NewType("REMOVE_CHILD")
	// TypeDestroyed is the terminal event of a context.
	TypeDestroyed = event.NewType("DESTROYED")
	// TypeReset follows a completed Reset.
	TypeReset = event.NewType("RESET")
)

// Change is the payload of TypeChange and TypeChangeDataTerms.
type Change struct {
	Option   Option
	Value    any
	OldValue any
}
