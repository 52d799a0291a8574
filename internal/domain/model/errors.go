package model

import "errors"

// Error taxonomy shared across the engine. Package level errors wrap one of
// these so callers can classify with errors.Is.
var (
	// ErrData marks a malformed or out of range sample. Always recovered.
	ErrData = errors.New("data error")
	// ErrConfiguration marks structural misuse: unknown metric, adapter or
	// invalid registration.
	ErrConfiguration = errors.New("configuration error")
	// ErrUnknownDevice marks an operation on a device id the registry does
	// not hold.
	ErrUnknownDevice = errors.New("unknown device")
)
