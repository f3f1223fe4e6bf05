package session

import "fmt"

// State is the session phase.
type State int

const (
	StateNotStarted State = iota // Score surface not created yet
	StatePaused                  // Loops stopped
	StateRunning                 // Spawn and motion loops active
)

// String returns a readable state name.
func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StatePaused:
		return "paused"
	case StateRunning:
		return "running"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ScoreText formats the score display.
func ScoreText(score int) string {
	return fmt.Sprintf("Score: %d", score)
}

// SpeedText formats the speed slider label.
func SpeedText(level int) string {
	return fmt.Sprintf("Speed: %d", level)
}
