package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Config struct {
	DBPath   string `toml:"db_path"`
	MaxLines int    `toml:"max_lines"` // 0 = parse the whole file

	Classifier ClassifierConfig `toml:"classifier"`
	Sentiment  SentimentConfig  `toml:"sentiment"`
	Log        LogConfig        `toml:"log"`
}

// ClassifierConfig points at an OpenAI-compatible chat-completions service.
// An empty BaseURL disables remote classification.
type ClassifierConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
}

type SentimentConfig struct {
	SampleSize int `toml:"sample_size"`
}

type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DBPath: filepath.Join(home, ".config", "chatwrap", "chatwrap.db"),
		Sentiment: SentimentConfig{
			SampleSize: 20,
		},
		Log: LogConfig{
			Level: "warn",
		},
		Classifier: ClassifierConfig{
			Model: "gpt-4o-mini",
		},
	}

	cfgPath := filepath.Join(home, ".config", "chatwrap", "config.toml")
	if _, err := os.Stat(cfgPath); err == nil {
		if _, err := toml.DecodeFile(cfgPath, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
	}

	cfg.DBPath = expandHome(cfg.DBPath, home)

	return cfg, nil
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
