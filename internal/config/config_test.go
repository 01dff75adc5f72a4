package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-orderform/internal/config"
	"github.com/goliatone/go-orderform/pkg/banner"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load(config.New(), "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := config.Config{
		Addr:      ":8383",
		Env:       config.EnvDevelopment,
		Log:       config.LogConfig{Level: "info"},
		Banner:    banner.DefaultConfig().Normalize(),
		Theme:     config.ThemeConfig{Name: "orderform"},
		RateLimit: config.RateLimitConfig{PerMinute: 30, Burst: 5},
		Shutdown:  config.ShutdownConfig{Grace: 5 * time.Second},
	}
	if diff := cmp.Diff(want, cfg, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	file := filepath.Join(dir, "orderform.yaml")
	content := strings.Join([]string{
		"addr: \":9000\"",
		"submit:",
		"  endpoint: https://formspree.io/f/file",
		"  timeout: 3s",
		"banner:",
		"  max_height_px: 400",
		"ratelimit:",
		"  burst: 9",
		"",
	}, "\n")
	if err := os.WriteFile(file, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ORDERFORM_SUBMIT_ENDPOINT", "https://formspree.io/f/env")
	t.Setenv("ORDERFORM_LOG_LEVEL", "debug")

	cfg, err := config.Load(config.New(), "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Addr != ":9000" {
		t.Errorf("addr = %q", cfg.Addr)
	}
	if cfg.Submit.Endpoint != "https://formspree.io/f/env" {
		t.Errorf("environment should win over the file, got %q", cfg.Submit.Endpoint)
	}
	if cfg.Submit.Timeout != 3*time.Second {
		t.Errorf("timeout = %s", cfg.Submit.Timeout)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
	if cfg.Banner.MaxHeightPx != 400 || cfg.Banner.MinScale != 0.5 {
		t.Errorf("banner = %+v", cfg.Banner)
	}
	if cfg.RateLimit.Burst != 9 || cfg.RateLimit.PerMinute != 30 {
		t.Errorf("ratelimit = %+v", cfg.RateLimit)
	}
}

func TestLoad_ExplicitFileMustExist(t *testing.T) {
	_, err := config.Load(config.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	base := config.Config{
		Addr:      ":8383",
		Env:       config.EnvProduction,
		RateLimit: config.RateLimitConfig{PerMinute: 1, Burst: 1},
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := map[string]func(*config.Config){
		"empty addr":   func(c *config.Config) { c.Addr = "" },
		"unknown env":  func(c *config.Config) { c.Env = "staging" },
		"zero rate":    func(c *config.Config) { c.RateLimit.PerMinute = 0 },
		"zero burst":   func(c *config.Config) { c.RateLimit.Burst = 0 },
		"neg timeout":  func(c *config.Config) { c.Submit.Timeout = -time.Second },
		"bad timezone": func(c *config.Config) { c.Submit.Timezone = "Mars/Olympus" },
		"bad proxy":    func(c *config.Config) { c.RateLimit.TrustedProxies = []string{"10.0.0.0/33"} },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := base
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestRateLimitConfig_Proxies(t *testing.T) {
	cfg := config.RateLimitConfig{TrustedProxies: []string{"10.0.0.7", " 192.168.1.0/24 ", "", "::1"}}
	got, err := cfg.Proxies()
	if err != nil {
		t.Fatalf("proxies: %v", err)
	}
	want := []string{"10.0.0.7/32", "192.168.1.0/24", "::1/128"}
	var names []string
	for _, prefix := range got {
		names = append(names, prefix.String())
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("proxies mismatch (-want +got):\n%s", diff)
	}
}

func TestLocation(t *testing.T) {
	if got := (config.Config{}).Location(); got != time.Local {
		t.Fatalf("expected time.Local, got %v", got)
	}
	cfg := config.Config{Submit: config.SubmitConfig{Timezone: "UTC"}}
	if got := cfg.Location(); got.String() != "UTC" {
		t.Fatalf("expected UTC, got %v", got)
	}
}
