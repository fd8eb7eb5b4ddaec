// Package repository provides data access layer implementations.
package repository

import "errors"

// Common errors for repository operations.
var (
	ErrGameNotFound        = errors.New("game not found")
	ErrInteractionNotFound = errors.New("interaction not found")
	ErrAmbiguous           = errors.New("more than one interaction matches")
	ErrRoundNotFound       = errors.New("round not found")
	ErrSettingsNotFound    = errors.New("settings not found")
	ErrVersionConflict     = errors.New("game was modified concurrently")
)
