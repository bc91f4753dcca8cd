package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dreschagin/megalith-dashboard/internal/simulator"
	"github.com/dreschagin/megalith-dashboard/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := simulator.LoadConfigFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load simulator config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(os.Getenv("LOG_LEVEL"))
	log.Info(
		"Starting stream simulator",
		"interval", cfg.Interval.String(),
		"port", cfg.Port,
		"anomaly_every", cfg.AnomalyEvery,
		"seed", cfg.Seed,
	)

	handler := simulator.NewHandler(simulator.NewGenerator(cfg), cfg.Interval, log)

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler.Routes(),
		ReadTimeout: 5 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		log.Info("Stream simulator listening", "ws", "ws://localhost:"+cfg.Port+"/ws")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Stream simulator HTTP server failed", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	// Hijacked WebSocket соединения Shutdown не ждет, они закроются вместе с процессом
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Stream simulator HTTP server shutdown failed", err)
	}

	log.Info("Stream simulator stopped")
}
