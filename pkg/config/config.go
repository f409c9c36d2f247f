package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

type Config struct {
	Voice           string `json:"voice"`
	Language        string `json:"language"`
	MaxMemory       int    `json:"max_memory"`
	ScreenshotDir   string `json:"screenshot_dir"`
	FeedbackLogFile string `json:"feedback_log_file"`
	CancelHotkey    string `json:"cancel_hotkey"`

	ProfileDir string                    `json:"profile_dir,omitempty"`
	PromptsDir string                    `json:"prompts_dir,omitempty"`
	Providers  map[string]ProviderConfig `json:"providers,omitempty"`
	Gateways   map[string]GatewayConfig  `json:"gateways,omitempty"`
	Memory     MemoryConfig              `json:"memory"`
}

type GatewayConfig struct {
	Token   string `json:"token"`
	ChatID  int64  `json:"chat_id,omitempty"`
	Enabled bool   `json:"enabled"`
}

type ProviderConfig struct {
	APIKey  string `json:"api_key"`
	Model   string `json:"model"`
	BaseURL string `json:"base_url,omitempty"`
	Enabled bool   `json:"enabled"`
}

type MemoryConfig struct {
	Type string `json:"type"`
	Path string `json:"path"`
}

// Default returns the configuration written on first start.
func Default() *Config {
	return &Config{
		Voice:           "Antoni",
		Language:        "en",
		MaxMemory:       10,
		ScreenshotDir:   "screenshots",
		FeedbackLogFile: "feedback.json",
		CancelHotkey:    "ctrl+c",
		ProfileDir:      ".",
		PromptsDir:      "prompts",
		Providers: map[string]ProviderConfig{
			"anthropic": {Model: "claude-3-opus-20240229", Enabled: true},
		},
		Memory: MemoryConfig{Type: "sqlite", Path: "dictum.db"},
	}
}

// LoadConfig reads path, creating it with defaults when it does not exist.
// Keys missing from an existing file keep their default values.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}
	cfg.fillDefaults()
	return cfg, nil
}

// Save writes cfg to path as indented JSON.
func Save(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Config) fillDefaults() {
	d := Default()
	if c.Voice == "" {
		c.Voice = d.Voice
	}
	if c.Language == "" {
		c.Language = d.Language
	}
	if c.MaxMemory <= 0 {
		c.MaxMemory = d.MaxMemory
	}
	if c.ScreenshotDir == "" {
		c.ScreenshotDir = d.ScreenshotDir
	}
	if c.FeedbackLogFile == "" {
		c.FeedbackLogFile = d.FeedbackLogFile
	}
	if c.CancelHotkey == "" {
		c.CancelHotkey = d.CancelHotkey
	}
	if c.ProfileDir == "" {
		c.ProfileDir = d.ProfileDir
	}
	if c.PromptsDir == "" {
		c.PromptsDir = d.PromptsDir
	}
	if c.Memory.Path == "" {
		c.Memory = d.Memory
	}
}

// GetDefaultProvider returns the first enabled provider, preferring anthropic.
func (c *Config) GetDefaultProvider() (string, ProviderConfig) {
	if p, ok := c.Providers["anthropic"]; ok && p.Enabled {
		return "anthropic", p
	}
	for name, p := range c.Providers {
		if p.Enabled {
			return name, p
		}
	}
	return "", ProviderConfig{}
}

// GetTelegramConfig returns telegram config if enabled
func (c *Config) GetTelegramConfig() (GatewayConfig, bool) {
	tg, ok := c.Gateways["telegram"]
	if ok && tg.Enabled && tg.Token != "" {
		return tg, true
	}
	return GatewayConfig{}, false
}
