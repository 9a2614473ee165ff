package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	// Authority is the producer identity allowed to push feed data. Empty
	// means pushes are open (useful for local development only).
	Authority       string       `json:"authority" yaml:"authority"`
	DefaultFeedName string       `json:"defaultFeedName" yaml:"defaultFeedName"`
	FeedNameRegex   string       `json:"feedNameRegex" yaml:"feedNameRegex"`
	FeedDefaults    FeedDefaults `json:"feedDefaults" yaml:"feedDefaults"`
	MaxFeeds        int          `json:"maxFeeds" yaml:"maxFeeds"`
	AllowedFeeds    []string     `json:"allowedFeeds" yaml:"allowedFeeds"`
}

// FeedDefaults captures per-feed baseline settings.
type FeedDefaults struct {
	// LifetimeMs is the retention window: an entry whose age reaches this
	// value is expired.
	LifetimeMs      int64 `json:"lifetimeMs" yaml:"lifetimeMs"`
	PayloadMaxBytes int   `json:"payloadMaxBytes" yaml:"payloadMaxBytes"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		DefaultFeedName: "default",
		FeedNameRegex:   "[a-z0-9-_]{1,64}",
		FeedDefaults: FeedDefaults{
			LifetimeMs:      3_600_000, // keep the last hour
			PayloadMaxBytes: 1 << 20,
		},
	}
}

// Load reads configuration from a JSON or YAML file (by extension). If path is empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, err
		}
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}
