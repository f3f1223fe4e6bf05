// Package config centralizes all tunable game parameters.
package config

import "time"

// Dot sizing. Diameters are discretized to tens within [MinDotSize, MaxDotSize].
const (
	MinDotSize     = 5
	MaxDotSize     = 50
	DotSizeStep    = 10
	DotValueBase   = 11.0
	DotValueFactor = 0.1
)

// Dot motion
const (
	DotTopOffset = 20 // Vertical position of a freshly spawned dot
	DotFallStep  = 1  // Vertical units advanced per motion tick
)

// Speed mapping
const (
	BaseCreatePeriod = 1000 * time.Millisecond
	SpawnSpeedStep   = 50 * time.Millisecond // Spawn period reduction per speed level
	MinSpeedLevel    = 1
	MaxSpeedLevel    = 19 // Highest level with a positive spawn period
)

// Slider range offered by the front ends.
const (
	SliderMin     = 1
	SliderMax     = 10
	SliderDefault = 5
)

// Labels
const (
	LabelStart = "Start"
	LabelPause = "Pause"
)

// Playfield dimensions in logical units.
const (
	TermPlayfieldWidth  = 300
	TermPlayfieldHeight = 300
	WebPlayfieldWidth   = 400
	WebPlayfieldHeight  = 500
)

// Shutdown
const (
	ShutdownDisplaySeconds = 10.0 // Seconds to show shutdown message before auto-disconnect
)

// Inactivity
const (
	InactivityWarnUser       = 90  // Seconds
	InactivityDisconnectUser = 120 // Seconds
)

// Client rendering
const (
	ClientTargetFPS       = 30
	ClientTargetFrameTime = time.Second / ClientTargetFPS
)

// Max render resolution for terminal clients; larger terminals get a centered, bordered area.
const (
	MaxTermWidth  = 160
	MaxTermHeight = 60
)

// Rows reserved under the playfield for the HUD.
const HUDRows = 2

// MaxUsernameLength caps the display length of SSH usernames.
const MaxUsernameLength = 16
