package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "formfill.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile_Defaults(t *testing.T) {
	path := writeConfig(t, "page:\n  url: https://forms.example.edu/apply\n")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Page.URL != "https://forms.example.edu/apply" {
		t.Errorf("page url = %q", cfg.Page.URL)
	}
	if cfg.Browser.MemoryLimit != 1<<30 {
		t.Errorf("memory limit = %d, want 1GiB", cfg.Browser.MemoryLimit)
	}
	if cfg.Rescan.Window.Std() != 250*time.Millisecond {
		t.Errorf("rescan window = %v", cfg.Rescan.Window.Std())
	}
	if cfg.Fill.VerifyDelay.Std() != 80*time.Millisecond {
		t.Errorf("verify delay = %v", cfg.Fill.VerifyDelay.Std())
	}
	if cfg.Profiles.DB != "formfill.db" {
		t.Errorf("profiles db = %q", cfg.Profiles.DB)
	}
	if cfg.HTTP.Listen == "" {
		t.Error("listen not defaulted")
	}
	if !cfg.HeadlessEnabled() {
		t.Error("headless should default to true")
	}
}

func TestLoadFile_Overrides(t *testing.T) {
	path := writeConfig(t, `
browser:
  headless: false
  recycle_interval: 1h
fields:
  batch_size: 10
fill:
  verify_delay: 200ms
  reduced_events: true
rescan:
  window: 500ms
http:
  listen: "127.0.0.1:9000"
notifications: true
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.HeadlessEnabled() {
		t.Error("headless override not applied")
	}
	if cfg.Browser.RecycleInterval.Std() != time.Hour {
		t.Errorf("recycle interval = %v", cfg.Browser.RecycleInterval.Std())
	}
	if cfg.Fields.BatchSize != 10 {
		t.Errorf("batch size = %d", cfg.Fields.BatchSize)
	}
	if !cfg.Fill.ReducedEvents {
		t.Error("reduced_events not applied")
	}
	if cfg.Rescan.Window.Std() != 500*time.Millisecond {
		t.Errorf("rescan window = %v", cfg.Rescan.Window.Std())
	}
	if cfg.HTTP.Listen != "127.0.0.1:9000" {
		t.Errorf("listen = %q", cfg.HTTP.Listen)
	}
	if !cfg.Notifications {
		t.Error("notifications not applied")
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	path := writeConfig(t, "browser: [not a map]\n")
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
