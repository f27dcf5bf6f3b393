package event

import (
	"errors"
	"fmt"
)

// Sentinel errors for the event dispatcher.
var (
	// ErrNilListener is returned when a nil listener is registered.
	ErrNilListener = errors.New("listener cannot be nil")

	// ErrInvalidType is returned when an event type is empty.
	ErrInvalidType = errors.New("invalid event type")

	// ErrListenerPanic is matched by PanicError.
	ErrListenerPanic = errors.New("listener panicked")
)

// PanicError describes a recovered listener panic.
type PanicError struct {
	// Type is the type of the event being delivered.
	Type Type

	// Listener is the id of the listener that panicked.
	Listener ListenerID

	// Value is the value passed to panic().
	Value any

	// Stack is the stack trace captured at recovery.
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("listener %d panicked on %s: %v", e.Listener, e.Type, e.Value)
}

// Is allows errors.Is to match PanicError with ErrListenerPanic.
func (e *PanicError) Is(target error) bool {
	return target == ErrListenerPanic
}
