// Package config defines the configuration schema for spendit.
//
// JSON and YAML keys use camelCase; fields absent from the file keep the
// values from DefaultConfig.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/WebNaresh/expense-management/internal/config/assistant"
	"github.com/WebNaresh/expense-management/internal/config/channel"
	"github.com/WebNaresh/expense-management/internal/config/gateway"
	"github.com/WebNaresh/expense-management/internal/config/provider"
	"github.com/WebNaresh/expense-management/internal/config/reminder"
	"github.com/WebNaresh/expense-management/internal/config/store"
)

// Config is the root configuration object, loaded from ~/.spendit/config.json.
type Config struct {
	Assistant assistant.AssistantConfig `json:"assistant" yaml:"assistant"`
	Providers provider.ProvidersConfig  `json:"providers" yaml:"providers"`
	Channels  channel.ChannelsConfig    `json:"channels" yaml:"channels"`
	Store     store.StoreConfig         `json:"store" yaml:"store"`
	Reminders reminder.ReminderConfig   `json:"reminders" yaml:"reminders"`
	Gateway   gateway.GatewayConfig     `json:"gateway" yaml:"gateway"`
}

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() Config {
	return Config{
		Assistant: assistant.DefaultAssistantConfig(),
		Providers: provider.DefaultProvidersConfig(),
		Channels:  channel.DefaultChannelsConfig(),
		Store:     store.DefaultStoreConfig(),
		Reminders: reminder.DefaultReminderConfig(),
		Gateway:   gateway.DefaultGatewayConfig(),
	}
}

// ProviderByName returns the credentials for a registry name, or nil.
func (c *Config) ProviderByName(name string) *provider.ProviderConfig {
	return c.Providers.ByName(name)
}

// Location resolves assistant.timezone. An empty name yields time.Local.
func (c *Config) Location() (*time.Location, error) {
	return loadLocation(c.Assistant.Timezone)
}

// ReminderLocation resolves reminders.timezone, falling back to the
// assistant's zone.
func (c *Config) ReminderLocation() (*time.Location, error) {
	if c.Reminders.Timezone == "" {
		return c.Location()
	}
	return loadLocation(c.Reminders.Timezone)
}

// LLMTimeout is the per-call deadline for classifier and fallback requests.
func (c *Config) LLMTimeout() time.Duration {
	if c.Assistant.LLMTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Assistant.LLMTimeoutSeconds) * time.Second
}

// StoreDSN returns the configured DSN, defaulting the sqlite file into DataDir.
func (c *Config) StoreDSN() string {
	if c.Store.DSN != "" {
		return c.Store.DSN
	}
	if c.Store.Driver == "" || c.Store.Driver == store.DriverSQLite {
		return filepath.Join(DataDir(), "spendit.db")
	}
	return ""
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", name, err)
	}
	return loc, nil
}
