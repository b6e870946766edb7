// Package config handles application configuration and settings persistence.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/calehart/veil/internal/types"
)

const (
	appName          = "veil"
	configFileName   = "config.json"
	defaultServerURL = "http://localhost:5000"

	// serverURLEnv overrides the backend base URL, loaded from the
	// environment or a .env file next to the working directory.
	serverURLEnv = "VEIL_SERVER_URL"
)

// Config represents the application configuration.
type Config struct {
	Settings types.Settings `json:"settings"`

	// ServerURL is resolved from the environment, not persisted.
	ServerURL string `json:"-"`
}

// DefaultSettings returns the settings used before the user changes anything.
func DefaultSettings() types.Settings {
	return types.Settings{
		Personality: types.PersonalityConcise,
		Theme:       "dark",
		Opacity:     0.95,
		HideOnBlur:  true,
	}
}

// Load loads configuration from the config file.
// Returns default config if the file doesn't exist.
func Load() (*Config, error) {
	// Best effort: a missing .env is not an error.
	_ = godotenv.Load()

	path, err := configPath()
	if err != nil {
		return nil, fmt.Errorf("get config path: %w", err)
	}

	cfg := &Config{Settings: DefaultSettings(), ServerURL: serverURL()}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.ServerURL = serverURL()
	cfg.normalize()
	return cfg, nil
}

// Save persists the configuration to disk.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return fmt.Errorf("get config path: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// UpdateSettings replaces the stored settings and persists immediately.
func (c *Config) UpdateSettings(s types.Settings) error {
	c.Settings = s
	c.normalize()
	return c.Save()
}

// normalize repairs values a hand-edited config file may carry.
func (c *Config) normalize() {
	switch c.Settings.Personality {
	case types.PersonalityConcise, types.PersonalityCasual,
		types.PersonalityFormal, types.PersonalityTeacher:
	default:
		c.Settings.Personality = types.PersonalityConcise
	}
	if c.Settings.Theme == "" {
		c.Settings.Theme = "dark"
	}
	if c.Settings.Opacity <= 0 || c.Settings.Opacity > 1 {
		c.Settings.Opacity = DefaultSettings().Opacity
	}
}

func serverURL() string {
	if url := os.Getenv(serverURLEnv); url != "" {
		return url
	}
	return defaultServerURL
}

func configPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, configFileName), nil
}
