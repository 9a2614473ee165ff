// Package config defines Ora's node configuration: the producer authority,
// feed naming rules, and per-feed retention defaults. Configuration comes
// from built-in defaults, an optional JSON or YAML file, and ORA_* environment
// overlays, applied in that order.
package config
