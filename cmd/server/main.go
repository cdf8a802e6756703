package main

import (
	"log"

	"github.com/alkime/intake/internal/analysis"
	"github.com/alkime/intake/internal/config"
	"github.com/alkime/intake/internal/keyring"
	"github.com/alkime/intake/internal/logger"
	"github.com/alkime/intake/internal/server"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup structured logging
	slogger := logger.SetupLogger(cfg)

	slogger.Info("Starting intake server",
		"env", cfg.Env,
		"port", cfg.Port,
		"static_dir", cfg.StaticDir,
	)

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Environment variables take priority, fallback to keychain
	openAIKey, err := keyring.Resolve(keyring.OpenAI, cfg.OpenAIAPIKey)
	if err != nil {
		slogger.Error("No OpenAI key configured", "error", err)
		log.Fatalf("Fatal: set OPENAI_API_KEY or run 'intake config set-key openai <key>'")
	}

	anthropicKey, err := keyring.Resolve(keyring.Anthropic, cfg.AnthropicAPIKey)
	if err != nil {
		slogger.Error("No Anthropic key configured", "error", err)
		log.Fatalf("Fatal: set ANTHROPIC_API_KEY or run 'intake config set-key anthropic <key>'")
	}

	svc := analysis.NewService(
		analysis.NewWhisperTranscriber(openAIKey),
		analysis.NewClaudeAnalyst(anthropicKey),
	)

	srv := server.New(cfg, slogger, svc)

	if err := server.Run(srv); err != nil {
		slogger.Error("Failed to start server", "error", err)
		log.Fatalf("Fatal: %v", err)
	}
}
