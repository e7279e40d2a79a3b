package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Pusher   PusherConfig   `yaml:"pusher"`
	Summary  SummaryConfig  `yaml:"summary"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type PusherConfig struct {
	AppID   string `yaml:"app_id"`
	Key     string `yaml:"key"`
	Secret  string `yaml:"secret"`
	Cluster string `yaml:"cluster"`
}

type SummaryConfig struct {
	FigureTTL    time.Duration `yaml:"figure_ttl"`
	DirectionTTL time.Duration `yaml:"direction_ttl"`
}

// Load reads the YAML config file if present and applies environment
// overrides on top. A missing file is not an error; env vars alone are
// enough to run.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{Port: "5050"},
		Summary: SummaryConfig{
			FigureTTL:    time.Hour,
			DirectionTTL: 3 * time.Hour,
		},
	}

	if raw, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("PUSHER_APP_ID"); v != "" {
		cfg.Pusher.AppID = v
	}
	if v := os.Getenv("PUSHER_KEY"); v != "" {
		cfg.Pusher.Key = v
	}
	if v := os.Getenv("PUSHER_SECRET"); v != "" {
		cfg.Pusher.Secret = v
	}
	if v := os.Getenv("PUSHER_CLUSTER"); v != "" {
		cfg.Pusher.Cluster = v
	}

	if cfg.Summary.FigureTTL <= 0 {
		cfg.Summary.FigureTTL = time.Hour
	}
	if cfg.Summary.DirectionTTL <= 0 {
		cfg.Summary.DirectionTTL = 3 * time.Hour
	}

	return cfg, nil
}
