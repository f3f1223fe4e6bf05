package client

import "time"

// ClientState holds per-connection state outside the game session.
type ClientState struct {
	Running       bool          // Client loop running
	delta         time.Duration // Time since the previous frame
	lastInput     time.Time     // Last key or mouse event
	isInactive    bool          // Whether the inactivity warning is showing
	prevOverlay   overlay       // Overlay drawn in the previous frame
	shuttingDown  bool          // Server announced shutdown
	shutdownTimer float64       // Countdown before auto-disconnect on shutdown
}

// NewClientState creates a new initialized client state.
func NewClientState() *ClientState {
	return &ClientState{
		Running:   true,
		lastInput: time.Now(),
	}
}
