package main

import (
	"context"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/comigor/creatorvault/internal/config"
	"github.com/comigor/creatorvault/internal/contract"
	"github.com/comigor/creatorvault/internal/forecast"
	"github.com/comigor/creatorvault/internal/llm"
	"github.com/comigor/creatorvault/internal/logger"
	"github.com/comigor/creatorvault/internal/mcpserver"
	"github.com/comigor/creatorvault/internal/negotiation"
	"github.com/comigor/creatorvault/internal/session"
	"github.com/comigor/creatorvault/internal/vault"
)

const version = "0.1.0"

func main() {
	ctx := context.Background()
	// stdout carries the protocol
	logger.SetOutput(os.Stderr)

	cfg, err := config.Load()
	if err != nil {
		logger.L.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.Log.Level)

	completer, err := llm.New(ctx, cfg.LLM)
	if err != nil {
		logger.L.Error("failed to create llm client", "provider", cfg.LLM.Provider, "error", err)
		os.Exit(1)
	}

	store := vault.Open(ctx, cfg.Vault.DBPath)
	defer store.Close()

	s := mcpserver.New("creatorvault", version, mcpserver.Dependencies{
		Registry:   store,
		Sessions:   session.NewManager(negotiation.New(completer), cfg.LLM.Timeout),
		Summarizer: contract.NewSummarizer(completer),
		Forecaster: forecast.New(completer),
	})

	if err := server.ServeStdio(s); err != nil {
		logger.L.Error("mcp server stopped", "error", err)
		os.Exit(1)
	}
}
