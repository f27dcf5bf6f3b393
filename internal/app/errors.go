package app

import "errors"

// Application errors.
var (
	// ErrAlreadyRunning indicates Run was called on a running application.
	ErrAlreadyRunning = errors.New("application already running")

	// ErrNotRunning indicates the application loop is not running.
	ErrNotRunning = errors.New("application not running")

	// ErrNoData indicates no graph has been loaded yet.
	ErrNoData = errors.New("no graph data loaded")
)

// InitError reports the component that failed to initialize.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return "init " + e.Component + ": " + e.Err.Error()
}

func (e *InitError) Unwrap() error {
	return e.Err
}
