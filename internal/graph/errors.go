package graph

import (
	"errors"
	"fmt"
)

// Errors returned by graph operations.
var (
	// ErrUnknownNodeType indicates a row whose type key has no node kind.
	ErrUnknownNodeType = errors.New("unknown node type")

	// ErrUnknownNode indicates an id that is not in the graph.
	ErrUnknownNode = errors.New("unknown node")

	// ErrUnknownViewState indicates a VIEW_STATE value with no selection.
	ErrUnknownViewState = errors.New("unknown view state")
)

// UnknownNodeTypeError reports the row whose Type and SubType did not
// classify. It is fatal for the whole data set.
type UnknownNodeTypeError struct {
	Node string
	Key  string
}

func (e *UnknownNodeTypeError) Error() string {
	return fmt.Sprintf("unknown type %q for node %q", e.Key, e.Node)
}

// Is reports whether target is ErrUnknownNodeType.
func (e *UnknownNodeTypeError) Is(target error) bool {
	return target == ErrUnknownNodeType
}
