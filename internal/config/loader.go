package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables that override secrets from the config file.
const (
	EnvOpenAIKey           = "SPENDIT_OPENAI_API_KEY"
	EnvGeminiKey           = "SPENDIT_GEMINI_API_KEY"
	EnvWhatsAppAccessToken = "SPENDIT_WHATSAPP_ACCESS_TOKEN"
	EnvWhatsAppVerifyToken = "SPENDIT_WHATSAPP_VERIFY_TOKEN"
)

// ConfigPath returns the default configuration file path: ~/.spendit/config.json.
func ConfigPath() string {
	return filepath.Join(DataDir(), "config.json")
}

// DataDir returns the spendit data directory: ~/.spendit.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".spendit"
	}
	return filepath.Join(home, ".spendit")
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Load reads and parses the config file at path.
// If path is empty, ConfigPath() is used. A missing file yields
// DefaultConfig(); a malformed one logs a warning and does the same.
// Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := decode(path, data, &cfg); err != nil {
			slog.Warn("config: failed to parse, using defaults", "path", path, "err", err)
			cfg = DefaultConfig()
		}
	}

	applyEnv(&cfg, os.LookupEnv)
	return &cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	if isYAML(path) {
		return yaml.Unmarshal(data, cfg)
	}
	return json.Unmarshal(data, cfg)
}

// applyEnv copies non-empty secret overrides into cfg.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set(&cfg.Providers.OpenAI.APIKey, EnvOpenAIKey)
	set(&cfg.Providers.Gemini.APIKey, EnvGeminiKey)
	set(&cfg.Channels.WhatsAppCloud.AccessToken, EnvWhatsAppAccessToken)
	set(&cfg.Channels.WhatsAppCloud.VerifyToken, EnvWhatsAppVerifyToken)
}

// Save writes cfg to path as indented JSON, or YAML for .yaml/.yml paths.
// If path is empty, ConfigPath() is used.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = ConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
