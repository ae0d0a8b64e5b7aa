package model

import "errors"

// Snapshot validation errors.
var (
	// ErrEmptySnapshot is returned when a snapshot carries no bins.
	ErrEmptySnapshot = errors.New("snapshot has no bins")

	// ErrInvalidSnapshot is returned when bins are unordered, prices are not
	// strictly increasing, or the active bin is missing.
	ErrInvalidSnapshot = errors.New("invalid snapshot")

	// ErrUnknownStrategy is returned by ParseStrategy for unsupported names.
	ErrUnknownStrategy = errors.New("unknown strategy")

	// ErrUnknownDirection is returned by ParseDirection for unsupported names.
	ErrUnknownDirection = errors.New("unknown direction")
)
