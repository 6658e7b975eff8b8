// Package config loads and persists graphchat's user configuration.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config holds user preferences
type Config struct {
	APIKey       string `json:"api_key"`
	Model        string `json:"model"`         // Gemini model name
	Theme        string `json:"theme"`         // "light" or "dark"
	ScenarioPath string `json:"scenario_path"` // YAML scenario for the scripted backend
	DBPath       string `json:"db_path"`       // session database location
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Theme: "light",
	}
}

// ConfigDir returns the directory where config is stored
func ConfigDir() (string, error) {
	// Prefer a project-local .graphchat directory if present or creatable
	if cwd, err := os.Getwd(); err == nil {
		localDir := filepath.Join(cwd, ".graphchat")
		if stat, err := os.Stat(localDir); (err == nil && stat.IsDir()) || os.IsNotExist(err) {
			return localDir, nil
		}
	}

	// Fallback to home-level config
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".graphchat"), nil
}

// ConfigFile returns the full path to the config file
func ConfigFile() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the configuration from disk and applies environment
// overrides.
func Load() (Config, error) {
	cfg := DefaultConfig()

	path, err := ConfigFile()
	if err != nil {
		return applyEnv(cfg), err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return applyEnv(cfg), nil
		}
		return applyEnv(cfg), err
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return applyEnv(DefaultConfig()), err
	}
	return applyEnv(cfg), nil
}

// applyEnv lets the environment override the file for scripted use.
func applyEnv(cfg Config) Config {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("GRAPHCHAT_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("GRAPHCHAT_THEME"); v != "" {
		cfg.Theme = v
	}
	if v := os.Getenv("GRAPHCHAT_SCENARIO"); v != "" {
		cfg.ScenarioPath = v
	}
	if v := os.Getenv("GRAPHCHAT_DB"); v != "" {
		cfg.DBPath = v
	}
	return cfg
}

// Save writes the configuration to disk
func Save(cfg Config) error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigFile()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
