package engine

import "errors"

// Engine errors.
var (
	ErrIncidentNotFound  = errors.New("incident not found")
	ErrStageNotFound     = errors.New("stage not found")
	ErrExecutionNotFound = errors.New("stage execution not found")
	ErrInvalidSeverity   = errors.New("invalid severity")
	ErrShuttingDown      = errors.New("engine is shutting down")
)
