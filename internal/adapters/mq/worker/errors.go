package worker

import "errors"

// Sentinel kinds for worker errors.
var (
	ErrStopped      = errors.New("worker pool stopped")
	ErrUnknownLane  = errors.New("no lane for device")
	ErrLaneExists   = errors.New("lane already exists")
	ErrBackpressure = errors.New("lane queue full")
)
