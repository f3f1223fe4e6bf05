package web

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/tomz197/dotdrop/internal/loop/config"
	"github.com/tomz197/dotdrop/internal/loop/sched"
	"github.com/tomz197/dotdrop/internal/loop/server"
	"github.com/tomz197/dotdrop/internal/loop/session"
	"github.com/tomz197/dotdrop/internal/object"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 1024
	sendBuffer     = 256
)

// player is one browser connection running its own session.
//
// The session and surface are only touched by run. readPump feeds raw
// messages into inbox; writePump drains send.
type player struct {
	conn    *websocket.Conn
	handle  *server.ClientHandle
	surface *surface
	session *session.Session
	sched   *sched.Ticker
	send    chan []byte
	inbox   chan []byte
	done    chan struct{}
	log     *log.Logger

	overflow bool // send buffer filled up; the browser is not keeping up
}

func newPlayer(conn *websocket.Conn, handle *server.ClientHandle, width, height int, logger *log.Logger) *player {
	p := &player{
		conn:   conn,
		handle: handle,
		sched:  sched.NewTicker(),
		send:   make(chan []byte, sendBuffer),
		inbox:  make(chan []byte, 16),
		done:   make(chan struct{}),
		log:    logger,
	}
	p.surface = newSurface(width, height, p.enqueue)
	p.session = session.New(session.Options{
		Render:    p.surface,
		Score:     p.surface,
		Input:     p.surface,
		Scheduler: p.sched,
		Logger:    logger,
	})
	return p
}

// enqueue marshals msg and queues it for writePump without blocking.
func (p *player) enqueue(msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		p.log.Error("marshal message", "err", err)
		return
	}
	select {
	case p.send <- data:
	default:
		p.overflow = true
	}
}

// run is the player's event loop. It returns when the browser disconnects,
// the context ends, the send buffer overflows or the shutdown notice expires.
func (p *player) run(ctx context.Context) {
	defer func() {
		close(p.done)
		p.session.Close()
		p.sched.Close()
		close(p.send)
	}()

	p.enqueue(p.surface.initMessage())

	var shutdownC <-chan time.Time
	for !p.overflow {
		select {
		case <-ctx.Done():
			return

		case tok := <-p.sched.Fires():
			p.sched.Dispatch(tok)
			p.surface.flush()

		case data, ok := <-p.inbox:
			if !ok {
				return
			}
			p.handleMessage(data)

		case ev, ok := <-p.handle.EventsCh:
			if !ok {
				return
			}
			if ev.Type == server.EventServerShutdown && shutdownC == nil {
				if p.session.State() == session.StateRunning {
					p.session.ToggleStart()
				}
				p.enqueue(shutdownMessage{Type: typeShutdown, Seconds: int(config.ShutdownDisplaySeconds)})
				shutdownC = time.After(time.Duration(config.ShutdownDisplaySeconds * float64(time.Second)))
			}

		case <-shutdownC:
			return
		}
	}
	p.log.Warn("send buffer full, dropping connection")
}

// handleMessage applies one browser message to the session.
func (p *player) handleMessage(data []byte) {
	msg, err := decodeClientMessage(data)
	if err != nil {
		p.log.Debug("bad message", "err", err)
		p.enqueue(errorMessage{Type: typeError, Message: err.Error()})
		return
	}

	switch msg.Type {
	case typeToggle:
		p.session.ToggleStart()
	case typeSpeed:
		if p.surface.setSlider(*msg.Level) {
			p.session.SpeedChanged()
		}
	case typeClick:
		p.surface.click(object.DotID(*msg.ID))
	}
}

// readPump reads browser messages into inbox until the connection fails.
func (p *player) readPump() {
	defer close(p.inbox)

	p.conn.SetReadLimit(maxMessageSize)
	p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(string) error {
		p.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				p.log.Warn("websocket read", "err", err)
			}
			return
		}
		select {
		case p.inbox <- data:
		case <-p.done:
			return
		}
	}
}

// writePump writes queued messages and keeps the connection alive with pings.
// It closes the connection once send is closed.
func (p *player) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		p.conn.Close()
	}()

	for {
		select {
		case data, ok := <-p.send:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				p.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				p.log.Warn("websocket write", "err", err)
				return
			}

		case <-ticker.C:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				p.log.Warn("websocket ping", "err", err)
				return
			}
		}
	}
}
