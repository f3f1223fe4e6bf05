package web

import (
	"github.com/tomz197/dotdrop/internal/loop/config"
	"github.com/tomz197/dotdrop/internal/loop/session"
	"github.com/tomz197/dotdrop/internal/object"
)

// surface mirrors the session onto the browser. Dot moves are collected and
// go out as one advance message per flush; every other call becomes one
// message right away, after any collected moves. Click handlers stay on the
// server, keyed by dot ID.
type surface struct {
	width   int
	height  int
	slider  int
	button  string
	label   string
	onClick map[object.DotID]func(object.DotID)
	moved   []dotPosition
	send    func(msg any)
}

var (
	_ session.RenderSurface = (*surface)(nil)
	_ session.ScoreSurface  = (*surface)(nil)
	_ session.InputSurface  = (*surface)(nil)
)

func newSurface(width, height int, send func(msg any)) *surface {
	return &surface{
		width:   width,
		height:  height,
		slider:  config.SliderDefault,
		button:  config.LabelStart,
		onClick: make(map[object.DotID]func(object.DotID)),
		send:    send,
	}
}

func (s *surface) Width() int  { return s.width }
func (s *surface) Height() int { return s.height }

func (s *surface) SpawnVisual(dot object.Dot, onClick func(object.DotID)) session.Handle {
	s.onClick[dot.ID] = onClick
	s.emit(spawnMessage{Type: typeSpawn, ID: uint64(dot.ID), X: dot.X, Y: dot.Y, Diameter: dot.Diameter})
	return session.Handle(dot.ID)
}

func (s *surface) RemoveVisual(h session.Handle) {
	delete(s.onClick, object.DotID(h))
	s.emit(removeMessage{Type: typeRemove, ID: uint64(h)})
}

func (s *surface) AdvanceVisual(h session.Handle, y int) {
	s.moved = append(s.moved, dotPosition{ID: uint64(h), Y: y})
}

func (s *surface) CreateScore(text string) {
	s.emit(scoreMessage{Type: typeScore, Text: text, Created: true})
}

func (s *surface) UpdateScore(text string) {
	s.emit(scoreMessage{Type: typeScore, Text: text})
}

func (s *surface) SetButtonLabel(text string) {
	s.button = text
	s.emit(textMessage{Type: typeButton, Text: text})
}

func (s *surface) SpeedLevel() int { return s.slider }

func (s *surface) SetSpeedLabel(text string) {
	s.label = text
	s.emit(textMessage{Type: typeSpeed, Text: text})
}

// emit sends msg behind any collected moves.
func (s *surface) emit(msg any) {
	s.flush()
	s.send(msg)
}

// flush sends the collected moves as a single advance message.
func (s *surface) flush() {
	if len(s.moved) == 0 {
		return
	}
	s.send(advanceMessage{Type: typeAdvance, Dots: s.moved})
	s.moved = nil
}

// click invokes the handler registered for id. Unknown IDs are ignored:
// the dot may have fallen out between the browser's click and now.
func (s *surface) click(id object.DotID) bool {
	fn, ok := s.onClick[id]
	if !ok {
		return false
	}
	fn(id)
	return true
}

// setSlider stores a new slider value clamped to the slider range and
// reports whether it changed.
func (s *surface) setSlider(v int) bool {
	v = min(max(v, config.SliderMin), config.SliderMax)
	if v == s.slider {
		return false
	}
	s.slider = v
	return true
}

// initMessage describes the playfield and controls for a fresh page.
func (s *surface) initMessage() initMessage {
	return initMessage{
		Type:       typeInit,
		Width:      s.width,
		Height:     s.height,
		MinSpeed:   config.SliderMin,
		MaxSpeed:   config.SliderMax,
		Speed:      s.slider,
		Button:     s.button,
		SpeedLabel: s.label,
	}
}
