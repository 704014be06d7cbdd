package services

import "time"

// PlayContext is the player's active level for the current session. It is
// carried by the client and handed back on every response; the server keeps
// no copy, and losing it only sends the player back to level 1.
type PlayContext struct {
	Level     int       `json:"active_level"`
	EnteredAt time.Time `json:"entered_at"`
}

// NewPlayContext starts a fresh run on level.
func NewPlayContext(level int) PlayContext {
	return PlayContext{Level: level, EnteredAt: time.Now().UTC()}
}

// StartingPlayContext is where every new game begins.
func StartingPlayContext() PlayContext {
	return NewPlayContext(1)
}
