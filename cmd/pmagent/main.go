// Package main provides the CLI entry point for pmagent, a chat-integrated
// assistant that collects e-commerce pain points into a git-backed
// knowledge base.
//
// # Basic Usage
//
// Start the service in Socket Mode:
//
//	pmagent serve --config pmagent.yaml
//
// Start in polling mode where Socket Mode is unavailable:
//
//	pmagent serve --mode poll
//
// # Environment Variables
//
// Secrets are usually supplied via the environment and referenced from the
// YAML config:
//
//   - ANTHROPIC_API_KEY: Anthropic API key
//   - SLACK_BOT_TOKEN: Slack bot OAuth token (xoxb-)
//   - SLACK_APP_TOKEN: Slack app-level token for Socket Mode (xapp-)
//
// A .env file in the working directory is loaded at startup when present.
package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// Values already present in the environment win over .env entries.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	rootCmd := buildRootCmd()
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}
