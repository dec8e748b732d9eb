package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid database exec context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")

	// Pipeline errors
	ErrPipelineDisabled = errors.New("web memory pipeline is disabled")
	ErrLockBusy         = errors.New("worker lock is held by another invocation")
	ErrMissingAPIKey    = errors.New("ai api key not configured")
	ErrJobTerminal      = errors.New("job is in a terminal state")
)
