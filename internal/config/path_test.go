package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultDataDirXDGOverride(t *testing.T) {
	dir := t.TempDir()
	old, had := os.LookupEnv("XDG_DATA_HOME")
	os.Setenv("XDG_DATA_HOME", dir)
	t.Cleanup(func() {
		if had {
			os.Setenv("XDG_DATA_HOME", old)
		} else {
			os.Unsetenv("XDG_DATA_HOME")
		}
	})
	got := DefaultDataDir()
	if got != filepath.Join(dir, "ora") {
		t.Fatalf("xdg dir: %s", got)
	}
}

func TestDefaultDataDirNonEmpty(t *testing.T) {
	got := DefaultDataDir()
	if got == "" {
		t.Fatalf("empty data dir")
	}
	if !strings.Contains(strings.ToLower(got), "ora") && got != "./data" {
		t.Fatalf("unexpected dir: %s", got)
	}
}
