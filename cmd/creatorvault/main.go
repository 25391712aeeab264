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

	"github.com/comigor/creatorvault/internal/api"
	"github.com/comigor/creatorvault/internal/config"
	"github.com/comigor/creatorvault/internal/contract"
	"github.com/comigor/creatorvault/internal/forecast"
	"github.com/comigor/creatorvault/internal/llm"
	"github.com/comigor/creatorvault/internal/logger"
	"github.com/comigor/creatorvault/internal/negotiation"
	"github.com/comigor/creatorvault/internal/session"
	"github.com/comigor/creatorvault/internal/vault"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.L.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.Log.Level)

	// Completion service client, built once and injected
	completer, err := llm.New(ctx, cfg.LLM)
	if err != nil {
		logger.L.Error("failed to create llm client", "provider", cfg.LLM.Provider, "error", err)
		os.Exit(1)
	}

	store := vault.Open(ctx, cfg.Vault.DBPath)
	defer store.Close()

	router := api.NewRouter(api.RouterDependencies{
		Registry:       store,
		Sessions:       session.NewManager(negotiation.New(completer), cfg.LLM.Timeout),
		Summarizer:     contract.NewSummarizer(completer),
		Forecaster:     forecast.New(completer),
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.L.Info("starting server", "address", srv.Addr, "provider", cfg.LLM.Provider, "model", cfg.LLM.Model)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L.Error("failed to start server", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.L.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.L.Error("server shutdown failed", "error", err)
	}
}
