package object

import (
	"math"
	"math/rand"

	"github.com/tomz197/dotdrop/internal/loop/config"
)

// Sizer produces randomized dot geometry. It holds no game state;
// the random source is injected so sequences are reproducible.
type Sizer struct {
	rng *rand.Rand
}

// NewSizer creates a Sizer backed by rng. A nil rng gets a time-seeded source.
func NewSizer(rng *rand.Rand) *Sizer {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Sizer{rng: rng}
}

// RandomDiameter samples a diameter uniformly in [MinDotSize, MaxDotSize),
// rounds it to the nearest multiple of ten and clamps into [MinDotSize, MaxDotSize].
func (s *Sizer) RandomDiameter() int {
	raw := s.rng.Float64()*(config.MaxDotSize-config.MinDotSize) + config.MinDotSize
	d := int(math.Round(raw/config.DotSizeStep)) * config.DotSizeStep
	return clamp(d, config.MinDotSize, config.MaxDotSize)
}

// RandomHorizontalOffset samples an integer in [0, maxWidth).
// A non-positive maxWidth (playfield narrower than the largest dot) yields 0.
func (s *Sizer) RandomHorizontalOffset(maxWidth int) int {
	if maxWidth <= 0 {
		return 0
	}
	return s.rng.Intn(maxWidth)
}

// NewDot creates a dot with a random diameter at a random horizontal offset
// that keeps the largest possible dot inside playfieldWidth.
func (s *Sizer) NewDot(id DotID, playfieldWidth int) Dot {
	d := s.RandomDiameter()
	return Dot{
		ID:       id,
		Diameter: d,
		Value:    ValueFor(d),
		X:        s.RandomHorizontalOffset(playfieldWidth - config.MaxDotSize),
		Y:        config.DotTopOffset,
	}
}

// ValueFor maps a diameter to its point value: 11 - diameter*0.1.
// Smaller dots are worth more.
func ValueFor(diameter int) float64 {
	return config.DotValueBase - float64(diameter)*config.DotValueFactor
}

// Points returns the integer score credit for a dot value.
// Rounding absorbs float error such as 11 - 30*0.1 = 7.999...
func Points(value float64) int {
	return int(math.Round(value))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
