package session

import "github.com/tomz197/dotdrop/internal/object"

// Handle is an opaque reference to a drawn dot, issued by a RenderSurface.
type Handle uint64

// RenderSurface draws dots on the playfield.
type RenderSurface interface {
	// Width and Height return the playfield dimensions.
	Width() int
	Height() int
	// SpawnVisual draws a new dot and arranges for onClick to be called
	// with the dot's ID when the player hits it.
	SpawnVisual(dot object.Dot, onClick func(object.DotID)) Handle
	RemoveVisual(h Handle)
	AdvanceVisual(h Handle, y int)
}

// ScoreSurface displays the score text.
type ScoreSurface interface {
	CreateScore(text string)
	UpdateScore(text string)
}

// InputSurface is the start/pause button and the speed slider.
// Button presses and slider changes reach the session through
// Session.ToggleStart and Session.SpeedChanged.
type InputSurface interface {
	SetButtonLabel(text string)
	SpeedLevel() int
	SetSpeedLabel(text string)
}
