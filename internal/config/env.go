package config

import (
	"os"
	"strconv"
	"strings"
)

// FromEnv overlays ORA_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("ORA_AUTHORITY"); v != "" {
		cfg.Authority = v
	}
	if v := os.Getenv("ORA_DEFAULT_FEED_NAME"); v != "" {
		cfg.DefaultFeedName = v
	}
	if v := os.Getenv("ORA_FEED_NAME_REGEX"); v != "" {
		cfg.FeedNameRegex = v
	}
	if v := os.Getenv("ORA_FEED_DEFAULTS_LIFETIME_MS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.FeedDefaults.LifetimeMs = n
		}
	}
	if v := os.Getenv("ORA_FEED_DEFAULTS_PAYLOAD_MAX_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.FeedDefaults.PayloadMaxBytes = n
		}
	}
	if v := os.Getenv("ORA_MAX_FEEDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxFeeds = n
		}
	}
	if v := os.Getenv("ORA_ALLOWED_FEEDS"); v != "" {
		parts := strings.Split(v, ",")
		cfg.AllowedFeeds = nil
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cfg.AllowedFeeds = append(cfg.AllowedFeeds, p)
			}
		}
	}
}
