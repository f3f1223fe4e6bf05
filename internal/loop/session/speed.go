package session

import (
	"time"

	"github.com/tomz197/dotdrop/internal/loop/config"
)

// Periods holds the two tick periods derived from a speed level.
type Periods struct {
	Spawn  time.Duration
	Motion time.Duration
}

// ClampLevel bounds a speed level to [MinSpeedLevel, MaxSpeedLevel].
// Zero and negative levels would divide by zero or invert the mapping;
// levels past the maximum would make the spawn period non-positive.
func ClampLevel(level int) int {
	if level < config.MinSpeedLevel {
		return config.MinSpeedLevel
	}
	if level > config.MaxSpeedLevel {
		return config.MaxSpeedLevel
	}
	return level
}

// SpawnPeriod returns the time between dot spawns: base - level*50ms.
func SpawnPeriod(level int) time.Duration {
	level = ClampLevel(level)
	return config.BaseCreatePeriod - time.Duration(level)*config.SpawnSpeedStep
}

// MotionPeriod returns the time between motion ticks: floor(base / level / 2),
// in whole milliseconds.
func MotionPeriod(level int) time.Duration {
	level = ClampLevel(level)
	baseMs := config.BaseCreatePeriod.Milliseconds()
	return time.Duration(baseMs/int64(level)/2) * time.Millisecond
}

// PeriodsFor derives both periods for a speed level.
func PeriodsFor(level int) Periods {
	return Periods{
		Spawn:  SpawnPeriod(level),
		Motion: MotionPeriod(level),
	}
}
