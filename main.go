package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/YouWantToPinch/hearth-api/internal/api"
)

func main() {
	conf, err := api.LoadConfig(".env")
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	cfg := &api.APIConfig{}
	if err := cfg.Init(conf); err != nil {
		log.Fatalf("could not initialize: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.ConnectToDB(ctx); err != nil {
		slog.Error("could not connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cfg.Close()

	hearth := &http.Server{
		Addr:              ":" + cfg.Port(),
		Handler:           api.NewHandler(cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := hearth.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", slog.String("error", err.Error()))
		}
	}()

	// start server
	slog.Info("serving", slog.String("addr", hearth.Addr))
	if err := hearth.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
