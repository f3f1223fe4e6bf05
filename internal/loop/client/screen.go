package client

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomz197/dotdrop/internal/loop/config"
	"github.com/tomz197/dotdrop/internal/loop/session"
)

// overlay is the full-screen message drawn over the playfield, if any.
type overlay int

const (
	overlayNone overlay = iota
	overlayTitle
	overlayInactive
	overlayShutdown
)

// currentOverlay picks the overlay for this frame. Shutdown wins over
// inactivity, which wins over the title screen.
func (c *Client) currentOverlay() overlay {
	switch {
	case c.state.shuttingDown:
		return overlayShutdown
	case c.state.isInactive:
		return overlayInactive
	case c.session.State() == session.StateNotStarted:
		return overlayTitle
	default:
		return overlayNone
	}
}

// drawFrame draws the current frame.
func (c *Client) drawFrame() error {
	// On overlay transitions, do a full terminal clear so text from the
	// previous overlay doesn't persist on screen.
	ov := c.currentOverlay()
	if ov != c.state.prevOverlay {
		c.frame.ClearScreen()
		c.canvas.ForceRedraw()
		c.state.prevOverlay = ov
	}

	c.canvas.Clear()
	if ov == overlayNone {
		for _, v := range c.field.sorted() {
			cx, cy := v.dot.Center()
			c.canvas.FillCircle(cx, cy, v.dot.Radius())
		}
	}

	c.canvas.Render(c.frame)
	c.canvas.RenderBorder(c.frame)
	c.drawHUD()

	termWidth := c.canvas.TerminalWidth()
	centerX := termWidth / 2
	centerY := c.canvas.TerminalHeight() / 2
	switch ov {
	case overlayTitle:
		c.drawTitleScreen(centerX, centerY)
	case overlayInactive:
		c.drawInactivityScreen(centerX, centerY)
	case overlayShutdown:
		c.drawShutdownScreen(centerX, centerY)
	}

	return c.frame.Flush()
}

// drawHUD writes the button, speed and score line under the playfield.
func (c *Client) drawHUD() {
	parts := []string{"[ " + c.hud.buttonLabel + " ]", c.hud.speedLabel}
	if c.hud.scoreCreated {
		parts = append(parts, c.hud.scoreText)
	}
	if c.username != "" {
		parts = append(parts, c.username)
	}
	c.frame.Line(c.canvas.TerminalHeight()+config.HUDRows, strings.Join(parts, "   "), c.canvas.TerminalWidth())
}

// drawTitleScreen draws the title and controls before the first start.
func (c *Client) drawTitleScreen(centerX, centerY int) {
	// figlet "small" font
	titleArt := []string{
		`  ___   ___ _____   ___  ___  ___  ___  `,
		` |   \ / _ \_   _| |   \| _ \/ _ \| _ \ `,
		` | |) | (_) || |   | |) |   / (_) |  _/ `,
		` |___/ \___/ |_|   |___/|_|_\\___/|_|   `,
	}
	titleWidth := len(titleArt[0])

	f := c.frame
	startY := centerY - 6
	if titleWidth <= c.canvas.TerminalWidth() {
		for i, line := range titleArt {
			f.Text(centerX-titleWidth/2+1, startY+i, line)
		}
	} else {
		title := "DOT DROP"
		f.Text(centerX-len(title)/2+1, startY+1, title)
	}

	subtitle := "~ Click the falling dots ~"
	f.Text(centerX-len(subtitle)/2+1, startY+len(titleArt)+1, subtitle)

	controls := []string{
		"Click . . . . . . Pop a dot",
		"SPACE / Enter  Start/Pause",
		"1-9 0 + - . . . . . . Speed",
		"Q  . . . . . . . . . . Quit",
	}
	for i, line := range controls {
		f.Text(centerX-len(line)/2+1, startY+len(titleArt)+3+i, line)
	}
}

// drawInactivityScreen draws the inactivity warning screen.
func (c *Client) drawInactivityScreen(centerX, centerY int) {
	f := c.frame
	title := "INACTIVITY WARNING"
	f.Text(centerX-len(title)/2+1, centerY-2, title)

	left := int(config.InactivityDisconnectUser - time.Since(c.state.lastInput).Seconds())
	msg := fmt.Sprintf("Disconnecting in %d seconds.", max(left, 0))
	f.Text(centerX-len(msg)/2+1, centerY, msg)

	hint := "Press any key to continue"
	f.Text(centerX-len(hint)/2+1, centerY+2, hint)
}

// drawShutdownScreen draws the server shutdown notice with the final score.
func (c *Client) drawShutdownScreen(centerX, centerY int) {
	f := c.frame
	title := "SERVER SHUTTING DOWN"
	f.Text(centerX-len(title)/2+1, centerY-2, title)

	score := session.ScoreText(c.session.Score())
	f.Text(centerX-len(score)/2+1, centerY, score)

	msg := fmt.Sprintf("Disconnecting in %d seconds. Press Q to leave now.", max(int(c.state.shutdownTimer+0.999), 0))
	f.Text(centerX-len(msg)/2+1, centerY+2, msg)
}
