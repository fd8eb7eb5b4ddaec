package game

import "time"

// Config holds the engine's tunables.
type Config struct {
	MinPlayers int
	MaxPlayers int
	// DevMode lifts the minimum roster size.
	DevMode bool
	// DeveloperUserID, when set in dev mode, must be part of the roster to begin.
	DeveloperUserID int64
	NextRoundWait   time.Duration
	Points          Points
}

// DefaultConfig returns the standard game settings.
func DefaultConfig() Config {
	return Config{
		MinPlayers:    4,
		MaxPlayers:    10,
		NextRoundWait: 3 * time.Second,
		Points:        DefaultPoints(),
	}
}
