package data

import (
	"errors"
	"fmt"
)

// Errors returned by data operations.
var (
	// ErrUnknownDataType indicates a data type no source serves.
	ErrUnknownDataType = errors.New("unknown data type")

	// ErrInvalidOptions indicates an options query that is not JSON.
	ErrInvalidOptions = errors.New("invalid options")
)

// APIError is a non-success response from the data API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("data api: %d %s", e.Status, e.Message)
}
