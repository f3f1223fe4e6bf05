package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tomz197/dotdrop/internal/config"
	"github.com/tomz197/dotdrop/internal/loop/server"
	"github.com/tomz197/dotdrop/internal/web"
)

const (
	defaultHost = "0.0.0.0"
	defaultPort = "8080"
)

func main() {
	config.LoadDotEnv()
	gin.SetMode(config.GetEnv("GIN_MODE", gin.ReleaseMode))
	logger := config.NewLogger("web")

	host := config.GetEnv("WEB_HOST", defaultHost)
	port := config.GetEnv("WEB_PORT", defaultPort)

	registry := server.NewRegistry(logger)
	srv := &http.Server{
		Addr: net.JoinHostPort(host, port),
		Handler: web.NewServer(web.Options{
			Registry: registry,
			Logger:   logger,
			Width:    config.GetEnvInt("PLAYFIELD_WIDTH", 0),
			Height:   config.GetEnvInt("PLAYFIELD_HEIGHT", 0),
		}).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("starting web server", "url", "http://"+srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-done
	logger.Info("shutting down server")

	// Websocket players are hijacked connections, so Shutdown won't wait for them.
	if remaining := registry.Shutdown(15 * time.Second); remaining > 0 {
		logger.Warn("players still connected", "players", remaining)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("shutdown error", "err", err)
	}
}
