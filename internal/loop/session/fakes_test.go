package session

import (
	"math/rand"
	"testing"

	"github.com/tomz197/dotdrop/internal/loop/sched"
	"github.com/tomz197/dotdrop/internal/object"
)

type fakeVisual struct {
	dot     object.Dot
	y       int
	onClick func(object.DotID)
}

type fakeRender struct {
	width, height int
	next          Handle
	visuals       map[Handle]*fakeVisual
	byID          map[object.DotID]Handle
	removed       int
}

func newFakeRender(width, height int) *fakeRender {
	return &fakeRender{
		width:   width,
		height:  height,
		visuals: make(map[Handle]*fakeVisual),
		byID:    make(map[object.DotID]Handle),
	}
}

func (r *fakeRender) Width() int  { return r.width }
func (r *fakeRender) Height() int { return r.height }

func (r *fakeRender) SpawnVisual(dot object.Dot, onClick func(object.DotID)) Handle {
	r.next++
	r.visuals[r.next] = &fakeVisual{dot: dot, y: dot.Y, onClick: onClick}
	r.byID[dot.ID] = r.next
	return r.next
}

func (r *fakeRender) RemoveVisual(h Handle) {
	if v, ok := r.visuals[h]; ok {
		delete(r.byID, v.dot.ID)
		delete(r.visuals, h)
		r.removed++
	}
}

func (r *fakeRender) AdvanceVisual(h Handle, y int) {
	if v, ok := r.visuals[h]; ok {
		v.y = y
	}
}

// click simulates the player hitting the visual of dot id.
// Visuals that were already removed keep no listener, like a detached element.
func (r *fakeRender) click(id object.DotID) {
	h, ok := r.byID[id]
	if !ok {
		return
	}
	v := r.visuals[h]
	v.onClick(id)
}

type fakeScore struct {
	creates int
	text    string
}

func (s *fakeScore) CreateScore(text string) {
	s.creates++
	s.text = text
}

func (s *fakeScore) UpdateScore(text string) {
	s.text = text
}

type fakeInput struct {
	level      int
	button     string
	speedLabel string
}

func (i *fakeInput) SetButtonLabel(text string) { i.button = text }
func (i *fakeInput) SpeedLevel() int            { return i.level }
func (i *fakeInput) SetSpeedLabel(text string)  { i.speedLabel = text }

type harness struct {
	s      *Session
	render *fakeRender
	score  *fakeScore
	input  *fakeInput
	clock  *sched.Manual
}

func newHarness(t *testing.T, level, width, height int) *harness {
	t.Helper()
	h := &harness{
		render: newFakeRender(width, height),
		score:  &fakeScore{},
		input:  &fakeInput{level: level},
		clock:  sched.NewManual(),
	}
	h.s = New(Options{
		Render:    h.render,
		Score:     h.score,
		Input:     h.input,
		Scheduler: h.clock,
		Rand:      rand.New(rand.NewSource(42)),
	})
	return h
}

// place puts a dot directly on the playfield, as if it had been spawned.
func (h *harness) place(diameter, x, y int) object.DotID {
	h.s.nextID++
	dot := object.Dot{
		ID:       h.s.nextID,
		Diameter: diameter,
		Value:    object.ValueFor(diameter),
		X:        x,
		Y:        y,
	}
	ld := &liveDot{dot: dot}
	h.s.dots[dot.ID] = ld
	ld.handle = h.render.SpawnVisual(dot, h.s.Click)
	return dot.ID
}
