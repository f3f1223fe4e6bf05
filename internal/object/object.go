// Package object defines the game entities and the pure policies that create them.
package object

// DotID identifies a dot within one session. IDs are never reused.
type DotID uint64

// Dot is a single falling, clickable target.
// X is fixed at creation; Y grows by the fall step on every motion tick.
type Dot struct {
	ID       DotID
	Diameter int
	Value    float64
	X        int
	Y        int
}

// Radius returns half the diameter.
func (d Dot) Radius() float64 {
	return float64(d.Diameter) / 2
}

// Center returns the center of the dot's bounding square.
func (d Dot) Center() (x, y float64) {
	r := d.Radius()
	return float64(d.X) + r, float64(d.Y) + r
}

// Bottom returns the vertical position of the dot's lower edge.
func (d Dot) Bottom() int {
	return d.Y + d.Diameter
}

// Screen represents playfield dimensions.
type Screen struct {
	Width  int
	Height int
}

// NewScreen creates a Screen.
func NewScreen(width, height int) Screen {
	return Screen{Width: width, Height: height}
}

// Below reports whether the dot's lower edge has passed the bottom of the screen.
func (s Screen) Below(d Dot) bool {
	return d.Bottom() > s.Height
}
