// Package config loads the pmagent configuration from YAML with environment
// variable expansion and sensible defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the main configuration structure for pmagent.
type Config struct {
	Slack     SlackConfig     `yaml:"slack"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
	Agent     AgentConfig     `yaml:"agent"`
	Ingest    IngestConfig    `yaml:"ingest"`
	KB        KBConfig        `yaml:"kb"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type SlackConfig struct {
	BotToken  string `yaml:"bot_token"`
	AppToken  string `yaml:"app_token"`
	ChannelID string `yaml:"channel_id"`
	BotUserID string `yaml:"bot_user_id"`
}

type AnthropicConfig struct {
	APIKey       string   `yaml:"api_key"`
	BaseURL      string   `yaml:"base_url"`
	Models       []string `yaml:"models"`
	MaxTokens    int      `yaml:"max_tokens"`
	SystemPrompt string   `yaml:"system_prompt"`
}

type AgentConfig struct {
	MaxRounds      int           `yaml:"max_rounds"`
	RetryAttempts  int           `yaml:"retry_attempts"`
	RetryBaseDelay time.Duration `yaml:"retry_base_delay"`
	// CallTimeout bounds one model API call; RequestTimeout bounds the
	// whole conversation for one work item.
	CallTimeout    time.Duration `yaml:"call_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type IngestConfig struct {
	DedupSize    int           `yaml:"dedup_size"`
	QueueSize    int           `yaml:"queue_size"`
	PollInterval time.Duration `yaml:"poll_interval"`
	PageSize     int           `yaml:"page_size"`
}

type KBConfig struct {
	Root   string `yaml:"root"`
	Remote string `yaml:"remote"`
	Branch string `yaml:"branch"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads the configuration from a YAML file.
// Environment variables in the format ${VAR} or $VAR are expanded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if len(cfg.Anthropic.Models) == 0 {
		cfg.Anthropic.Models = []string{"claude-sonnet-4-6", "claude-haiku-4-5"}
	}
	if cfg.Anthropic.MaxTokens == 0 {
		cfg.Anthropic.MaxTokens = 4096
	}
	if cfg.Anthropic.SystemPrompt == "" {
		cfg.Anthropic.SystemPrompt = DefaultSystemPrompt
	}
	if cfg.Agent.MaxRounds == 0 {
		cfg.Agent.MaxRounds = 10
	}
	if cfg.Agent.RetryAttempts == 0 {
		cfg.Agent.RetryAttempts = 3
	}
	if cfg.Agent.RetryBaseDelay == 0 {
		cfg.Agent.RetryBaseDelay = 5 * time.Second
	}
	if cfg.Agent.CallTimeout == 0 {
		cfg.Agent.CallTimeout = 60 * time.Second
	}
	if cfg.Agent.RequestTimeout == 0 {
		cfg.Agent.RequestTimeout = 5 * time.Minute
	}
	if cfg.Ingest.DedupSize == 0 {
		cfg.Ingest.DedupSize = 100
	}
	if cfg.Ingest.QueueSize == 0 {
		cfg.Ingest.QueueSize = 64
	}
	if cfg.Ingest.PollInterval == 0 {
		cfg.Ingest.PollInterval = 5 * time.Second
	}
	if cfg.Ingest.PageSize == 0 {
		cfg.Ingest.PageSize = 10
	}
	if cfg.KB.Root == "" {
		cfg.KB.Root = "knowledge-base"
	}
	if cfg.KB.Branch == "" {
		cfg.KB.Branch = "main"
	}
	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = ":9090"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// Validate checks that the configuration has the required credentials for
// the given ingest mode ("socket" or "poll").
func (c *Config) Validate(mode string) error {
	if c.Slack.BotToken == "" {
		return fmt.Errorf("slack.bot_token is required")
	}
	if mode == "socket" && c.Slack.AppToken == "" {
		return fmt.Errorf("slack.app_token is required in socket mode")
	}
	if c.Slack.ChannelID == "" {
		return fmt.Errorf("slack.channel_id is required")
	}
	if c.Anthropic.APIKey == "" {
		return fmt.Errorf("anthropic.api_key is required")
	}
	return nil
}
