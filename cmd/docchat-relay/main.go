// Package main provides the same-origin relay server for docchat.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raphaelgruber/docchat-go/internal/backend"
	"github.com/raphaelgruber/docchat-go/internal/config"
	"github.com/raphaelgruber/docchat-go/internal/metrics"
	"github.com/raphaelgruber/docchat-go/internal/relay"
)

func main() {
	cfg := config.Load()

	port := flag.String("port", cfg.RelayPort, "port to listen on")
	backendURL := flag.String("backend", cfg.BackendURL, "question-answering backend URL")
	flag.Parse()

	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer func() { _ = cleanup() }()
	slog.SetDefault(logger)

	collector := metrics.NewCollector()
	client := backend.New(*backendURL,
		backend.WithTimeout(cfg.RequestTimeout),
		backend.WithLogger(logger),
		backend.WithMetrics(collector),
	)
	srv := relay.NewServer(client,
		relay.WithLogger(logger),
		relay.WithMetrics(collector),
		relay.WithAllowedOrigins(cfg.AllowedOrigins),
	)

	// LLM answers are slow; the write deadline follows the backend timeout.
	var writeTimeout time.Duration
	if cfg.RequestTimeout > 0 {
		writeTimeout = cfg.RequestTimeout + 10*time.Second
	}

	httpServer := &http.Server{
		Addr:         ":" + *port,
		Handler:      srv.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting docchat-relay", "port", *port, "backend", client.BaseURL())
		slog.Info("chat endpoint available", "url", fmt.Sprintf("http://localhost:%s%s", *port, relay.PathChat))

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
