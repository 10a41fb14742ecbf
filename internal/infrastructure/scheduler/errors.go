package scheduler

import "errors"

var (
	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")

	// ErrSweepInProgress is returned by RunOnce while a sweep is already running
	ErrSweepInProgress = errors.New("reservation sweep already in progress")
)
