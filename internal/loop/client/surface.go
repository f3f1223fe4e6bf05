package client

import (
	"sort"

	"github.com/tomz197/dotdrop/internal/loop/config"
	"github.com/tomz197/dotdrop/internal/loop/session"
	"github.com/tomz197/dotdrop/internal/object"
	"github.com/tomz197/dotdrop/internal/physics"
)

// visual is a dot as the terminal draws it.
type visual struct {
	dot     object.Dot
	onClick func(object.DotID)
}

// playfield is the terminal RenderSurface. Handles are the dot IDs.
type playfield struct {
	width   int
	height  int
	visuals map[session.Handle]*visual
}

var _ session.RenderSurface = (*playfield)(nil)

func newPlayfield(width, height int) *playfield {
	return &playfield{
		width:   width,
		height:  height,
		visuals: make(map[session.Handle]*visual),
	}
}

func (p *playfield) Width() int  { return p.width }
func (p *playfield) Height() int { return p.height }

func (p *playfield) SpawnVisual(dot object.Dot, onClick func(object.DotID)) session.Handle {
	h := session.Handle(dot.ID)
	p.visuals[h] = &visual{dot: dot, onClick: onClick}
	return h
}

func (p *playfield) RemoveVisual(h session.Handle) {
	delete(p.visuals, h)
}

func (p *playfield) AdvanceVisual(h session.Handle, y int) {
	if v, ok := p.visuals[h]; ok {
		v.dot.Y = y
	}
}

// sorted returns the visuals in spawn order, so newer dots draw on top.
func (p *playfield) sorted() []*visual {
	vs := make([]*visual, 0, len(p.visuals))
	for _, v := range p.visuals {
		vs = append(vs, v)
	}
	sort.Slice(vs, func(i, j int) bool { return vs[i].dot.ID < vs[j].dot.ID })
	return vs
}

// hit returns the topmost dot whose circle, widened by slack, contains (x, y).
// slack makes up for a terminal cell covering several logical units.
func (p *playfield) hit(x, y, slack float64) *visual {
	var best *visual
	for _, v := range p.visuals {
		cx, cy := v.dot.Center()
		if !physics.PointInCircle(x, y, cx, cy, v.dot.Radius()+slack) {
			continue
		}
		if best == nil || v.dot.ID > best.dot.ID {
			best = v
		}
	}
	return best
}

// hud holds the score display, the start/pause button and the speed slider.
type hud struct {
	scoreCreated bool
	scoreText    string
	buttonLabel  string
	slider       int
	speedLabel   string
}

var (
	_ session.ScoreSurface = (*hud)(nil)
	_ session.InputSurface = (*hud)(nil)
)

func newHUD() *hud {
	return &hud{
		buttonLabel: config.LabelStart,
		slider:      config.SliderDefault,
	}
}

func (h *hud) CreateScore(text string) {
	h.scoreCreated = true
	h.scoreText = text
}

func (h *hud) UpdateScore(text string) {
	h.scoreText = text
}

func (h *hud) SetButtonLabel(text string) { h.buttonLabel = text }
func (h *hud) SpeedLevel() int            { return h.slider }
func (h *hud) SetSpeedLabel(text string)  { h.speedLabel = text }

// setSlider moves the slider within its range and reports whether it changed.
func (h *hud) setSlider(v int) bool {
	if v < config.SliderMin {
		v = config.SliderMin
	}
	if v > config.SliderMax {
		v = config.SliderMax
	}
	if v == h.slider {
		return false
	}
	h.slider = v
	return true
}
