package client

import (
	"bytes"
	"context"
	"io"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/tomz197/dotdrop/internal/input"
	"github.com/tomz197/dotdrop/internal/loop/config"
	"github.com/tomz197/dotdrop/internal/loop/server"
	"github.com/tomz197/dotdrop/internal/loop/session"
	"github.com/tomz197/dotdrop/internal/object"
)

func fixedSize(w, h int) func() (int, int, error) {
	return func() (int, int, error) { return w, h, nil }
}

// newTestClient builds a client on a 100x52 terminal that is not running its loop.
func newTestClient(t *testing.T) (*Client, *server.Registry) {
	t.Helper()
	reg := server.NewRegistry(nil)
	c := NewClient(reg, strings.NewReader(""), io.Discard, ClientOptions{
		TermSizeFunc: fixedSize(100, 52),
		Username:     "tester",
		Rand:         rand.New(rand.NewSource(7)),
	})
	t.Cleanup(func() {
		c.session.Close()
		c.scheduler.Close()
	})
	return c, reg
}

func TestPlayfieldHitPrefersNewest(t *testing.T) {
	p := newPlayfield(300, 300)
	p.SpawnVisual(object.Dot{ID: 1, Diameter: 40, X: 0, Y: 0}, nil)
	p.SpawnVisual(object.Dot{ID: 2, Diameter: 40, X: 10, Y: 10}, nil)
	p.SpawnVisual(object.Dot{ID: 3, Diameter: 10, X: 200, Y: 200}, nil)

	if v := p.hit(25, 25, 0); v == nil || v.dot.ID != 2 {
		t.Errorf("overlap hit = %+v, want dot 2", v)
	}
	if v := p.hit(5, 20, 0); v == nil || v.dot.ID != 1 {
		t.Errorf("hit = %+v, want dot 1", v)
	}
	if v := p.hit(150, 150, 0); v != nil {
		t.Errorf("empty area hit dot %d", v.dot.ID)
	}
	if v := p.hit(212, 205, 0); v != nil {
		t.Errorf("hit outside radius returned dot %d", v.dot.ID)
	}
	if v := p.hit(212, 205, 3); v == nil || v.dot.ID != 3 {
		t.Errorf("hit with slack = %+v, want dot 3", v)
	}

	p.AdvanceVisual(session.Handle(3), 250)
	if v := p.hit(205, 255, 0); v == nil || v.dot.ID != 3 {
		t.Errorf("hit after advance = %+v, want dot 3", v)
	}
	p.RemoveVisual(session.Handle(3))
	if v := p.hit(205, 255, 0); v != nil {
		t.Errorf("removed dot still hit")
	}
}

func TestHUDSliderClamps(t *testing.T) {
	h := newHUD()
	if h.SpeedLevel() != config.SliderDefault {
		t.Fatalf("default slider = %d", h.SpeedLevel())
	}

	tests := []struct {
		set, want int
		changed   bool
	}{
		{7, 7, true},
		{7, 7, false},
		{42, config.SliderMax, true},
		{-3, config.SliderMin, true},
		{0, config.SliderMin, false},
	}
	for _, tt := range tests {
		if got := h.setSlider(tt.set); got != tt.changed {
			t.Errorf("setSlider(%d) changed = %v, want %v", tt.set, got, tt.changed)
		}
		if h.slider != tt.want {
			t.Errorf("setSlider(%d) slider = %d, want %d", tt.set, h.slider, tt.want)
		}
	}
}

func TestClampTermSize(t *testing.T) {
	tests := []struct {
		name           string
		w, h           int
		rw, rh, oc, or int
	}{
		{"fits", 80, 24, 80, 24, 0, 0},
		{"wide", 200, 40, config.MaxTermWidth, 40, 20, 0},
		{"tall", 100, 80, 100, config.MaxTermHeight, 0, 10},
		{"zero", 0, 0, 1, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rw, rh, oc, or := clampTermSize(tt.w, tt.h)
			if rw != tt.rw || rh != tt.rh || oc != tt.oc || or != tt.or {
				t.Errorf("clampTermSize(%d, %d) = %d, %d, %d, %d", tt.w, tt.h, rw, rh, oc, or)
			}
		})
	}

	if got := canvasRows(1); got != 1 {
		t.Errorf("canvasRows(1) = %d, want 1", got)
	}
}

func TestKeysDriveSession(t *testing.T) {
	c, _ := newTestClient(t)

	key := func(r rune) input.Event { return input.Event{Type: input.EventKey, Key: input.KeyRune, Rune: r} }

	c.handleInput(key(' '))
	if c.session.State() != session.StateRunning {
		t.Fatalf("state after space = %v", c.session.State())
	}
	if c.hud.buttonLabel != config.LabelPause || !c.hud.scoreCreated || c.hud.scoreText != "Score: 0" {
		t.Errorf("hud after start = %+v", c.hud)
	}

	c.handleInput(key('3'))
	if c.session.SpeedLevel() != 3 || c.hud.speedLabel != "Speed: 3" {
		t.Errorf("after '3': level %d, label %q", c.session.SpeedLevel(), c.hud.speedLabel)
	}
	c.handleInput(key('0'))
	if c.session.SpeedLevel() != 10 {
		t.Errorf("after '0': level %d, want 10", c.session.SpeedLevel())
	}
	c.handleInput(key('+'))
	if c.session.SpeedLevel() != 10 {
		t.Errorf("'+' past max: level %d", c.session.SpeedLevel())
	}
	c.handleInput(input.Event{Type: input.EventKey, Key: input.KeyDown})
	if c.session.SpeedLevel() != 9 {
		t.Errorf("after down: level %d, want 9", c.session.SpeedLevel())
	}
	c.handleInput(input.Event{Type: input.EventMouse, Button: input.MouseWheelUp, Press: true})
	if c.session.SpeedLevel() != 10 {
		t.Errorf("after wheel up: level %d, want 10", c.session.SpeedLevel())
	}

	c.handleInput(input.Event{Type: input.EventKey, Key: input.KeyEnter})
	if c.session.State() != session.StatePaused || c.hud.buttonLabel != config.LabelStart {
		t.Errorf("after enter: state %v, label %q", c.session.State(), c.hud.buttonLabel)
	}

	c.handleInput(key('q'))
	if c.state.Running {
		t.Error("q did not stop the client")
	}
}

func TestMouseClickScoresDot(t *testing.T) {
	c, _ := newTestClient(t)
	c.session.ToggleStart()

	// Let the real scheduler run until the first dot appears.
	deadline := time.After(5 * time.Second)
	for len(c.session.Dots()) == 0 {
		select {
		case tok := <-c.scheduler.Fires():
			c.scheduler.Dispatch(tok)
		case <-deadline:
			t.Fatal("no dot spawned")
		}
	}

	dot := c.session.Dots()[0]
	cx, cy := dot.Center()
	cellW, cellH := c.canvas.CellSize()
	col := int(cx / cellW)
	row := int(cy / cellH)

	// A release is not a click.
	c.handleInput(input.Event{Type: input.EventMouse, Button: input.MouseLeft, MouseX: col, MouseY: row})
	if c.session.Score() != 0 {
		t.Fatalf("release scored %d", c.session.Score())
	}

	c.handleInput(input.Event{Type: input.EventMouse, Button: input.MouseLeft, Press: true, MouseX: col, MouseY: row})
	want := object.Points(dot.Value)
	if c.session.Score() != want {
		t.Errorf("score = %d, want %d", c.session.Score(), want)
	}
	if len(c.field.visuals) != len(c.session.Dots()) {
		t.Errorf("visuals %d, live dots %d", len(c.field.visuals), len(c.session.Dots()))
	}
	if c.hud.scoreText != session.ScoreText(want) {
		t.Errorf("score text = %q", c.hud.scoreText)
	}
}

func TestShutdownPausesAndDisconnects(t *testing.T) {
	c, _ := newTestClient(t)
	c.session.ToggleStart()

	c.handleServerEvent(server.ClientEvent{Type: server.EventServerShutdown})
	if c.session.State() != session.StatePaused {
		t.Errorf("state after shutdown = %v, want paused", c.session.State())
	}
	if c.currentOverlay() != overlayShutdown {
		t.Errorf("overlay = %v, want shutdown", c.currentOverlay())
	}

	// Game keys are ignored during the countdown.
	c.handleInput(input.Event{Type: input.EventKey, Key: input.KeyRune, Rune: ' '})
	if c.session.State() != session.StatePaused {
		t.Errorf("space during shutdown changed state to %v", c.session.State())
	}

	c.state.delta = time.Duration(config.ShutdownDisplaySeconds*float64(time.Second)) / 2
	c.update()
	if !c.state.Running {
		t.Fatal("client stopped before the countdown ended")
	}
	c.update()
	if c.state.Running {
		t.Error("client still running after the countdown")
	}
}

func TestInactivityWarnsThenDisconnects(t *testing.T) {
	c, _ := newTestClient(t)

	c.state.lastInput = time.Now().Add(-(config.InactivityWarnUser + 5) * time.Second)
	c.update()
	if !c.state.isInactive || !c.state.Running {
		t.Fatalf("after warn threshold: inactive %v running %v", c.state.isInactive, c.state.Running)
	}

	c.handleInput(input.Event{Type: input.EventKey, Key: input.KeyRune, Rune: 'x'})
	if c.state.isInactive {
		t.Error("input did not clear the inactivity warning")
	}

	c.state.lastInput = time.Now().Add(-(config.InactivityDisconnectUser + 5) * time.Second)
	c.update()
	if c.state.Running {
		t.Error("inactive client not disconnected")
	}
}

func TestRunUntilQuit(t *testing.T) {
	reg := server.NewRegistry(nil)
	pr, pw := io.Pipe()
	var out bytes.Buffer
	c := NewClient(reg, pr, &out, ClientOptions{TermSizeFunc: fixedSize(80, 24), Transport: "ssh"})

	if got := reg.CountByTransport()["ssh"]; got != 1 {
		t.Fatalf("registered ssh clients = %d", got)
	}

	go func() {
		pw.Write([]byte(" \x1b[<0;10;5M"))
		time.Sleep(3 * config.ClientTargetFrameTime)
		pw.Write([]byte("q"))
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	pw.Close()

	if ctx.Err() != nil {
		t.Fatal("Run ended by timeout, not by quit")
	}
	if reg.Count() != 0 {
		t.Errorf("client still registered")
	}
	if c.session.State() != session.StateRunning {
		t.Errorf("state = %v, want running", c.session.State())
	}
	if c.scheduler.Active() != 0 {
		t.Errorf("scheduler still has %d tasks", c.scheduler.Active())
	}

	got := out.String()
	for _, want := range []string{"\033[?1000h", "[ Pause ]", "Speed: 5", "\033[?1000l", "\033[?25h"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	reg := server.NewRegistry(nil)
	pr, pw := io.Pipe()
	defer pw.Close()
	c := NewClient(reg, pr, io.Discard, ClientOptions{TermSizeFunc: fixedSize(80, 24)})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if reg.Count() != 0 {
		t.Error("client still registered")
	}
}

func TestUsernameTruncated(t *testing.T) {
	reg := server.NewRegistry(nil)
	c := NewClient(reg, strings.NewReader(""), io.Discard, ClientOptions{
		TermSizeFunc: fixedSize(80, 24),
		Username:     strings.Repeat("a", 40),
	})
	defer c.scheduler.Close()

	if len(c.username) != config.MaxUsernameLength {
		t.Errorf("username length = %d", len(c.username))
	}
	if c.canvas.TerminalHeight() != 24-config.HUDRows {
		t.Errorf("canvas rows = %d", c.canvas.TerminalHeight())
	}
}
