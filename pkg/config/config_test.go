package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

func init() {
	homedir.DisableCache = true
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ADHDO_CONFIG_PATH", dir)
	t.Setenv("HOME", dir)
	t.Setenv("ANTHROPIC_API_KEY", "")

	cfg, err := LoadFrom(viper.New())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Driver() != DefaultDriver || cfg.Owner() != DefaultDevice {
		t.Fatalf("unexpected store config %+v", cfg)
	}
	if cfg.BasePath() != filepath.Join(dir, ".adhdo.db") {
		t.Fatalf("expected expanded path, got %q", cfg.BasePath())
	}
	if cfg.Model != DefaultModel || cfg.ParseModel != DefaultParseModel {
		t.Fatalf("unexpected models %q %q", cfg.Model, cfg.ParseModel)
	}
	if cfg.Retention != 7*24*time.Hour {
		t.Fatalf("unexpected retention %v", cfg.Retention)
	}
	if cfg.RefreshDelay != DefaultRefreshDelay {
		t.Fatalf("unexpected refresh delay %v", cfg.RefreshDelay)
	}
	if cfg.HasLocation() {
		t.Fatalf("expected no location")
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ADHDO_CONFIG_PATH", dir)
	t.Setenv("HOME", dir)
	body := "driver: sqlite\ndsn: " + filepath.Join(dir, "a.db") + "\ndevice: phone\nretention: 2d\nlatitude: 40.7\nlongitude: -74\n"
	if err := os.WriteFile(filepath.Join(dir, ".adhdo.yaml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ADHDO_DEVICE", "laptop")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")

	cfg, err := LoadFrom(viper.New())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Driver() != "sqlite" || cfg.DSN() != filepath.Join(dir, "a.db") {
		t.Fatalf("unexpected store config %+v", cfg)
	}
	if cfg.Owner() != "laptop" {
		t.Fatalf("env should override file, got %q", cfg.Owner())
	}
	if cfg.APIKey != "sk-test" {
		t.Fatalf("expected api key from ANTHROPIC_API_KEY")
	}
	if cfg.Retention != 48*time.Hour {
		t.Fatalf("unexpected retention %v", cfg.Retention)
	}
	if !cfg.HasLocation() {
		t.Fatalf("expected location")
	}
}

func TestLoadRejectsBadRetention(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ADHDO_CONFIG_PATH", dir)
	t.Setenv("HOME", dir)
	t.Setenv("ADHDO_RETENTION", "3y")
	if _, err := LoadFrom(viper.New()); err == nil {
		t.Fatalf("expected error")
	}
}
