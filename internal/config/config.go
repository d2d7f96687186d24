// Package config loads Pegasus Edge configuration from ~/.pegasus/config.json.
// Environment variables override file values so the binary works in CI and
// containers without a config file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Default model identifiers. Overridable per config file.
const (
	DefaultModel      = "gemini-2.5-flash"
	DefaultImageModel = "imagen-3.0-generate-002"
	DefaultChatModel  = "gemini-2.5-flash"

	// DefaultAudioBaseURL points at a locally running AudioCraft backend.
	DefaultAudioBaseURL = "http://localhost:8000"
)

// LoggingConfig controls the category file logger.
type LoggingConfig struct {
	// Enable debug logging to <data dir>/logs/
	DebugMode bool `json:"debug_mode,omitempty"`

	// Minimum level: debug, info, warn, error
	Level string `json:"level,omitempty"`

	// Per-category toggles (all enabled by default when debug_mode is on)
	Categories map[string]bool `json:"categories,omitempty"`
}

// Config holds all Pegasus Edge configuration from config.json.
// This is the single source of truth for configuration.
type Config struct {
	// =========================================================================
	// GEMINI API
	// =========================================================================

	// Gemini API key. Required for every feature; without it the app
	// renders a configuration error and nothing else.
	APIKey string `json:"api_key,omitempty"`

	// Text generation model override
	Model string `json:"model,omitempty"`

	// Image generation model override
	ImageModel string `json:"image_model,omitempty"`

	// =========================================================================
	// AUDIO BACKEND
	// =========================================================================

	// Base URL of the AudioCraft music/SFX backend
	AudioBaseURL string `json:"audio_base_url,omitempty"`

	// =========================================================================
	// UI SETTINGS
	// =========================================================================

	// Theme for the TUI ("light" or "dark")
	Theme string `json:"theme,omitempty"`

	// =========================================================================
	// LOGGING
	// =========================================================================

	Logging *LoggingConfig `json:"logging,omitempty"`

	// DataDir is resolved at load time, not read from the file.
	DataDir string `json:"-"`
}

// DataDir returns the Pegasus Edge data directory (~/.pegasus),
// creating it if necessary.
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	dir := filepath.Join(home, ".pegasus")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return dir, nil
}

// Load reads config.json from the given data directory and applies
// defaults and environment overrides. A missing file is not an error;
// callers decide what a missing API key means for them.
func Load(dataDir string) (*Config, error) {
	cfg := &Config{DataDir: dataDir}

	path := filepath.Join(dataDir, "config.json")
	data, err := os.ReadFile(path)
	if err == nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", path, jsonErr)
		}
		cfg.DataDir = dataDir
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	// Environment overrides take precedence over the file.
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.APIKey = key
	}
	if url := os.Getenv("PEGASUS_AUDIO_URL"); url != "" {
		cfg.AudioBaseURL = url
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.ImageModel == "" {
		c.ImageModel = DefaultImageModel
	}
	if c.AudioBaseURL == "" {
		c.AudioBaseURL = DefaultAudioBaseURL
	}
	if c.Theme == "" {
		c.Theme = "dark"
	}
	if c.Logging == nil {
		c.Logging = &LoggingConfig{}
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Save writes the config back to config.json with restrictive
// permissions since it may contain the API key.
func (c *Config) Save() error {
	if c.DataDir == "" {
		return fmt.Errorf("config has no data directory")
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	path := filepath.Join(c.DataDir, "config.json")
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// HasAPIKey reports whether a Gemini API key is configured.
func (c *Config) HasAPIKey() bool {
	return c.APIKey != ""
}
