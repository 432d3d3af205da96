// Package config handles configuration for llamachat.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style"`              // "dark", "light", "auto", or path to JSON theme
	EnableEmoji      bool   `json:"enable_emoji"`       // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines"`  // Preserve original line breaks
	TableWrap        bool   `json:"table_wrap"`         // Enable word wrap in table cells
	InlineTableLinks bool   `json:"inline_table_links"` // Render links inline in tables
}

// ResourceConfig configures the CPU/memory overlay of the chat UI
type ResourceConfig struct {
	Enabled    bool `json:"enabled"`
	IntervalMS int  `json:"interval_ms"`
}

// Interval returns the sampling cadence, falling back to the default when
// the configured value is unusable
func (r ResourceConfig) Interval() time.Duration {
	if r.IntervalMS <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(r.IntervalMS) * time.Millisecond
}

// Config represents the user configuration
type Config struct {
	// Host is the address of the Ollama server, with or without scheme.
	Host string `json:"host"`
	// DefaultModel is the model used when none is given on the command line.
	DefaultModel string `json:"default_model"`
	// SystemPrompt is sent as the system turn of every conversation.
	SystemPrompt string `json:"system_prompt,omitempty"`
	// Temperature and TopP are forwarded to the engine's sampler.
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	// NumPredict caps the reply length in tokens; 0 leaves it to the server.
	NumPredict int `json:"num_predict,omitempty"`
	// Verbose enables detailed logging output during operations.
	Verbose         bool           `json:"verbose"`
	CopyToClipboard bool           `json:"copy_to_clipboard"`
	TUITheme        string         `json:"tui_theme,omitempty"` // TUI color theme
	Markdown        MarkdownConfig `json:"markdown"`
	Resources       ResourceConfig `json:"resources"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
		InlineTableLinks: false,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Host:            "http://localhost:11434",
		DefaultModel:    "llama3.2",
		Temperature:     0.8,
		TopP:            0.9,
		Verbose:         false,
		CopyToClipboard: false,
		TUITheme:        "tokyonight",
		Markdown:        DefaultMarkdownConfig(),
		Resources:       ResourceConfig{Enabled: true, IntervalMS: 500},
	}
}

// Sampling returns the engine options derived from the configuration
func (c Config) Sampling() map[string]any {
	opts := map[string]any{
		"temperature": c.Temperature,
		"top_p":       c.TopP,
	}
	if c.NumPredict > 0 {
		opts["num_predict"] = c.NumPredict
	}
	return opts
}

// applyEnvOverrides applies the environment variables Ollama users already
// have set. OLLAMA_HOST and OLLAMA_MODEL take precedence over the file.
func (c *Config) applyEnvOverrides() {
	if host := os.Getenv("OLLAMA_HOST"); host != "" {
		c.Host = host
	}
	if model := os.Getenv("OLLAMA_MODEL"); model != "" {
		c.DefaultModel = model
	}
}

// NormalizeHost turns a host value into a base URL the engine client
// accepts. A bare host:port gets an http scheme; trailing slashes go away.
func NormalizeHost(host string) string {
	host = strings.TrimSpace(host)
	if host == "" {
		return "http://localhost:11434"
	}
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	return strings.TrimRight(host, "/")
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	configDir := filepath.Join(home, ".llamachat")
	return configDir, nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// LoadConfig loads the configuration from disk and applies environment
// overrides
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil // Use defaults if config doesn't exist
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
