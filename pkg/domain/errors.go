package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrFlowNotFound is returned when a flow ID cannot be found by the loader.
var ErrFlowNotFound = errors.New("flow not found")

// ErrNoStartNode is returned when a flow has no start node.
var ErrNoStartNode = errors.New("flow has no start node")

// ErrSessionEnded is returned when a turn is attempted on a call that has
// already hung up or been transferred.
var ErrSessionEnded = errors.New("session has ended")
