// Package config loads the bot configuration from a YAML file with
// environment-variable overrides. Every external dependency has a
// documented fallback so the bot starts degraded instead of not at all.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Server struct {
		Port        int `yaml:"port"`
		MetricsPort int `yaml:"metrics_port"`
	} `yaml:"server"`

	AI struct {
		APIKey      string  `yaml:"api_key"`
		BaseURL     string  `yaml:"base_url"`
		Model       string  `yaml:"model"`
		Temperature float64 `yaml:"temperature"`
	} `yaml:"ai"`

	Backend struct {
		BaseURL      string `yaml:"base_url"`
		RestaurantID string `yaml:"restaurant_id"`
		SheetsURL    string `yaml:"sheets_url"`
	} `yaml:"backend"`

	Menu struct {
		LocalPath string `yaml:"local_path"`
	} `yaml:"menu"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"auth"`
}

// Load reads the YAML file at path, applies environment overrides and
// fills defaults. A missing .env file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// No .env file; environment variables may still be set directly.
	}

	cfg := &Config{}
	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Run entirely on env vars and defaults.
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("MISTRAL_API_KEY"); v != "" {
		cfg.AI.APIKey = v
	}
	if v := os.Getenv("BACKEND_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("ID_RESTAURANTE"); v != "" {
		cfg.Backend.RestaurantID = v
	}
	if v := os.Getenv("SHEETS_URL"); v != "" {
		cfg.Backend.SheetsURL = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.MetricsPort == 0 {
		cfg.Server.MetricsPort = 9090
	}
	if cfg.AI.BaseURL == "" {
		cfg.AI.BaseURL = "https://api.mistral.ai/v1"
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "mistral-small-latest"
	}
	if cfg.AI.Temperature == 0 {
		cfg.AI.Temperature = 0.1
	}
	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = "http://localhost:3001"
	}
	if cfg.Menu.LocalPath == "" {
		cfg.Menu.LocalPath = "data/menu.json"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/orders.db"
	}
}
