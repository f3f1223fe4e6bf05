// Package client runs one dot game on an ANSI terminal, locally or over SSH.
package client

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tomz197/dotdrop/internal/draw"
	"github.com/tomz197/dotdrop/internal/input"
	"github.com/tomz197/dotdrop/internal/loop/config"
	"github.com/tomz197/dotdrop/internal/loop/sched"
	"github.com/tomz197/dotdrop/internal/loop/server"
	"github.com/tomz197/dotdrop/internal/loop/session"
)

// Client handles rendering and input for a single connection.
type Client struct {
	registry     *server.Registry
	handle       *server.ClientHandle
	session      *session.Session
	scheduler    *sched.Ticker
	field        *playfield
	hud          *hud
	state        *ClientState
	canvas       *draw.Canvas
	frame        *draw.Frame // Output of the frame being drawn
	writer       io.Writer
	inputStream  *input.Stream
	username     string
	termSizeFunc draw.TermSizeFunc
	log          *log.Logger
}

// ClientOptions configures the client.
type ClientOptions struct {
	TermSizeFunc draw.TermSizeFunc
	Username     string
	Transport    string      // Registry label; defaults to "local"
	Logger       *log.Logger // Optional; discards when nil
	Rand         *rand.Rand  // Optional dot randomness
}

// NewClient creates a client registered with reg that reads input from r and draws to w.
func NewClient(reg *server.Registry, r io.Reader, w io.Writer, opts ClientOptions) *Client {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
	transport := opts.Transport
	if transport == "" {
		transport = "local"
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	username := opts.Username
	if len(username) > config.MaxUsernameLength {
		username = username[:config.MaxUsernameLength]
	}

	handle := reg.RegisterClient(username, transport)
	logger = logger.With("client", handle.ID)

	field := newPlayfield(config.TermPlayfieldWidth, config.TermPlayfieldHeight)
	hud := newHUD()
	scheduler := sched.NewTicker()

	// Create canvas with clamped dimensions for max render resolution
	termWidth, termHeight, _ := termSizeFunc()
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)
	canvas := draw.NewScaledCanvas(renderWidth, canvasRows(renderHeight), config.TermPlayfieldWidth, config.TermPlayfieldHeight)
	canvas.SetOffset(offsetCol, offsetRow)
	frame := draw.NewFrame(w, offsetCol, offsetRow)

	return &Client{
		registry: reg,
		handle:   handle,
		session: session.New(session.Options{
			Render:    field,
			Score:     hud,
			Input:     hud,
			Scheduler: scheduler,
			Rand:      opts.Rand,
			Logger:    logger,
		}),
		scheduler:    scheduler,
		field:        field,
		hud:          hud,
		state:        NewClientState(),
		canvas:       canvas,
		frame:        frame,
		writer:       w,
		inputStream:  input.StartStream(r),
		username:     username,
		termSizeFunc: termSizeFunc,
		log:          logger,
	}
}

// Run starts the client loop. Blocks until the player quits, the input
// closes, the context is cancelled or the server shutdown countdown ends.
//
// Everything that touches the session happens on this goroutine: scheduler
// fires, input events and frame ticks are multiplexed in one select.
func (c *Client) Run(ctx context.Context) error {
	draw.EnterGame(c.writer)
	defer func() {
		c.session.Close()
		c.scheduler.Close()
		c.registry.UnregisterClient(c.handle.ID)

		draw.LeaveGame(c.writer)
	}()

	frame := time.NewTicker(config.ClientTargetFrameTime)
	defer frame.Stop()
	lastFrame := time.Now()

	for c.state.Running {
		select {
		case <-ctx.Done():
			c.state.Running = false

		case tok := <-c.scheduler.Fires():
			c.scheduler.Dispatch(tok)

		case ev, ok := <-c.inputStream.Events():
			if !ok {
				c.state.Running = false
				break
			}
			c.handleInput(ev)

		case ev, ok := <-c.handle.EventsCh:
			if !ok {
				c.state.Running = false
				break
			}
			c.handleServerEvent(ev)

		case now := <-frame.C:
			c.state.delta = now.Sub(lastFrame)
			lastFrame = now
			c.update()
			if err := c.drawFrame(); err != nil {
				return fmt.Errorf("draw frame: %w", err)
			}
		}
	}

	c.log.Debug("client finished", "score", c.session.Score())
	return nil
}

// handleInput routes a key or mouse event to the session.
func (c *Client) handleInput(ev input.Event) {
	c.state.lastInput = time.Now()
	c.state.isInactive = false

	if c.state.shuttingDown {
		if ev.Type == input.EventKey && (ev.Key == input.KeyCtrlC || ev.Rune == 'q' || ev.Rune == 'Q') {
			c.state.Running = false
		}
		return
	}

	switch ev.Type {
	case input.EventKey:
		c.handleKey(ev)
	case input.EventMouse:
		c.handleMouse(ev)
	}
}

func (c *Client) handleKey(ev input.Event) {
	switch ev.Key {
	case input.KeyCtrlC:
		c.state.Running = false
	case input.KeyEnter:
		c.session.ToggleStart()
	case input.KeyUp, input.KeyRight:
		c.moveSlider(c.hud.slider + 1)
	case input.KeyDown, input.KeyLeft:
		c.moveSlider(c.hud.slider - 1)
	case input.KeyRune:
		switch r := ev.Rune; {
		case r == 'q' || r == 'Q':
			c.state.Running = false
		case r == ' ':
			c.session.ToggleStart()
		case r == '+' || r == '=':
			c.moveSlider(c.hud.slider + 1)
		case r == '-' || r == '_':
			c.moveSlider(c.hud.slider - 1)
		case r == '0':
			c.moveSlider(10)
		case r >= '1' && r <= '9':
			c.moveSlider(int(r - '0'))
		}
	}
}

func (c *Client) handleMouse(ev input.Event) {
	switch ev.Button {
	case input.MouseWheelUp:
		c.moveSlider(c.hud.slider + 1)
	case input.MouseWheelDown:
		c.moveSlider(c.hud.slider - 1)
	case input.MouseLeft:
		if !ev.Press {
			return
		}
		x, y, ok := c.canvas.TerminalToLogical(ev.MouseX, ev.MouseY)
		if !ok {
			return
		}
		cellW, cellH := c.canvas.CellSize()
		if v := c.field.hit(x, y, math.Max(cellW, cellH)/2); v != nil {
			v.onClick(v.dot.ID)
		}
	}
}

// moveSlider changes the slider and notifies the session when the value moved.
func (c *Client) moveSlider(v int) {
	if c.hud.setSlider(v) {
		c.session.SpeedChanged()
	}
}

func (c *Client) handleServerEvent(ev server.ClientEvent) {
	switch ev.Type {
	case server.EventServerShutdown:
		if c.session.State() == session.StateRunning {
			c.session.ToggleStart()
		}
		c.state.shuttingDown = true
		c.state.shutdownTimer = config.ShutdownDisplaySeconds
	}
}

// update advances per-frame timers and follows terminal resizes.
func (c *Client) update() {
	if c.state.shuttingDown {
		c.state.shutdownTimer -= c.state.delta.Seconds()
		if c.state.shutdownTimer <= 0 {
			c.state.Running = false
		}
	}

	idle := time.Since(c.state.lastInput).Seconds()
	switch {
	case idle > config.InactivityDisconnectUser:
		c.log.Info("disconnecting inactive client", "idle", time.Duration(idle*float64(time.Second)).Round(time.Second))
		c.state.Running = false
	case idle > config.InactivityWarnUser:
		c.state.isInactive = true
	}

	c.updateScreen()
}

// updateScreen handles terminal resize, clamping to max render resolution.
// On actual size changes, clears the terminal to remove residual pixels
// outside the new canvas area.
func (c *Client) updateScreen() {
	termWidth, termHeight, err := c.termSizeFunc()
	if err != nil {
		return
	}
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)
	rows := canvasRows(renderHeight)

	if renderWidth != c.canvas.TerminalWidth() || rows != c.canvas.TerminalHeight() ||
		offsetCol != c.canvas.OffsetCol() || offsetRow != c.canvas.OffsetRow() {
		c.frame.ClearScreen()
		c.canvas.ForceRedraw()
	}

	c.canvas.Resize(renderWidth, rows)
	c.canvas.SetOffset(offsetCol, offsetRow)
	c.frame.SetOffset(offsetCol, offsetRow)
}

// clampTermSize clamps terminal dimensions to the max render resolution and computes
// the centering offset for the render area.
func clampTermSize(termWidth, termHeight int) (renderWidth, renderHeight, offsetCol, offsetRow int) {
	renderWidth = termWidth
	renderHeight = termHeight
	if renderWidth > config.MaxTermWidth {
		renderWidth = config.MaxTermWidth
	}
	if renderHeight > config.MaxTermHeight {
		renderHeight = config.MaxTermHeight
	}
	if renderWidth < 1 {
		renderWidth = 1
	}
	offsetCol = (termWidth - renderWidth) / 2
	offsetRow = (termHeight - renderHeight) / 2
	if offsetCol < 0 {
		offsetCol = 0
	}
	if offsetRow < 0 {
		offsetRow = 0
	}
	return
}

// canvasRows returns the rows left for the playfield once the HUD is reserved.
func canvasRows(renderHeight int) int {
	rows := renderHeight - config.HUDRows
	if rows < 1 {
		rows = 1
	}
	return rows
}
