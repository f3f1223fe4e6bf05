// Package web serves the dot game to browsers: an embedded page, a
// websocket per player and a health endpoint.
package web

import (
	_ "embed"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/tomz197/dotdrop/internal/loop/config"
	"github.com/tomz197/dotdrop/internal/loop/server"
)

//go:embed index.html
var indexHTML []byte

// Options configures a Server.
type Options struct {
	Registry *server.Registry
	Logger   *log.Logger // Optional; discards when nil
	Width    int         // Playfield width; defaults to config.WebPlayfieldWidth
	Height   int         // Playfield height; defaults to config.WebPlayfieldHeight
}

// Server routes HTTP and websocket traffic to per-player sessions.
type Server struct {
	registry *server.Registry
	log      *log.Logger
	width    int
	height   int
	started  time.Time
	upgrader websocket.Upgrader
	router   *gin.Engine
}

// NewServer builds the router.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = config.WebPlayfieldWidth
	}
	if height <= 0 {
		height = config.WebPlayfieldHeight
	}

	s := &Server{
		registry: opts.Registry,
		log:      logger,
		width:    width,
		height:   height,
		started:  time.Now(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins
			},
		},
	}

	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())
	router.GET("/", s.handleIndex)
	router.GET("/health", s.handleHealth)
	router.GET("/ws", s.handleWebSocket)
	s.router = router

	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// requestLogger logs each request through the server's logger.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"took", time.Since(start),
		)
	}
}

func (s *Server) handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"clients":    s.registry.Count(),
		"transports": s.registry.CountByTransport(),
		"uptime":     time.Since(s.started).Round(time.Second).String(),
	})
}

// handleWebSocket upgrades the request and runs the player's session until
// the connection ends.
func (s *Server) handleWebSocket(c *gin.Context) {
	name := c.DefaultQuery("name", "web")
	if len(name) > config.MaxUsernameLength {
		name = name[:config.MaxUsernameLength]
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("websocket upgrade", "remote", c.ClientIP(), "err", err)
		return
	}

	handle := s.registry.RegisterClient(name, "web")
	defer s.registry.UnregisterClient(handle.ID)

	p := newPlayer(conn, handle, s.width, s.height, s.log.With("client", handle.ID))
	go p.writePump()
	go p.readPump()
	p.run(c.Request.Context())
}
