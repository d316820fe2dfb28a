package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Build-time version information, set via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func buildRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pmagent",
		Short: "Chat assistant that collects e-commerce pain points",
		Long: `pmagent connects a team chat channel to a tool-calling AI agent.

Members mention the bot to ask questions or submit pain points; the agent
records cards in a git-backed knowledge base, pushes them to the remote,
and reports back in the channel.`,
		SilenceUsage: true,
	}
	cmd.AddCommand(buildServeCmd(), buildVersionCmd())
	return cmd
}

func buildServeCmd() *cobra.Command {
	var (
		configPath string
		mode       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the pmagent service",
		Long: `Start the pmagent service.

The service will:
1. Load configuration from the specified file
2. Connect to the chat platform (Socket Mode push or history polling)
3. Register the agent tools over the knowledge base
4. Run the single worker that answers queued requests

Graceful shutdown is handled on SIGINT/SIGTERM signals.`,
		Example: `  # Start with default config in Socket Mode
  pmagent serve

  # Start with custom config
  pmagent serve --config /etc/pmagent/production.yaml

  # Start in polling mode
  pmagent serve --mode poll`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath, mode)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "pmagent.yaml",
		"Path to YAML configuration file")
	cmd.Flags().StringVarP(&mode, "mode", "m", "socket",
		"Ingest mode: socket (push) or poll (history polling)")

	return cmd
}

func buildVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("pmagent %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}
