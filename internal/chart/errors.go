package chart

import "errors"

// Sentinel errors for chart contexts.
var (
	// ErrUnknownOption is matched by UnknownOptionError.
	ErrUnknownOption = errors.New("unknown chart option")

	// ErrCycle is returned when reparenting would create a cycle.
	ErrCycle = errors.New("context parent cycle")

	// ErrNoSnapshot is returned by Reset when Save was never called.
	ErrNoSnapshot = errors.New("no saved snapshot")

	// ErrNilContext is returned when a nil context is passed where one is required.
	ErrNilContext = errors.New("context cannot be nil")

	// ErrDestroyed is returned by operations on a destroyed context.
	ErrDestroyed = errors.New("context is destroyed")
)

// UnknownOptionError reports an unrecognized property name.
type UnknownOptionError struct {
	// Name is the offending wire name.
	Name string
}

// Error implements the error interface.
func (e *UnknownOptionError) Error() string {
	return "unknown chart option " + e.Name
}

// Is allows errors.Is to match UnknownOptionError with ErrUnknownOption.
func (e *UnknownOptionError) Is(target error) bool {
	return target == ErrUnknownOption
}
