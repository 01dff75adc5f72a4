// Package config loads server and CLI settings from defaults, an optional
// orderform.yaml, ORDERFORM_* environment variables and command flags.
package config

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/goliatone/go-orderform/pkg/banner"
)

// EnvPrefix is prepended to every environment variable. Dots in keys become
// underscores: submit.endpoint is read from ORDERFORM_SUBMIT_ENDPOINT.
const EnvPrefix = "ORDERFORM"

// Environments understood by the logger.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds all configuration values.
type Config struct {
	Addr      string          `mapstructure:"addr"`
	Env       string          `mapstructure:"env"`
	Log       LogConfig       `mapstructure:"log"`
	Submit    SubmitConfig    `mapstructure:"submit"`
	Contact   ContactConfig   `mapstructure:"contact"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Banner    banner.Config   `mapstructure:"banner"`
	Theme     ThemeConfig     `mapstructure:"theme"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Shutdown  ShutdownConfig  `mapstructure:"shutdown"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// SubmitConfig configures the order submitter. A zero timeout leaves the
// outbound call bounded only by the request context.
type SubmitConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Timezone string        `mapstructure:"timezone"`
}

type ContactConfig struct {
	Endpoint string `mapstructure:"endpoint"`
}

// CatalogConfig points at a catalog file. Empty means the embedded catalog.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

type ThemeConfig struct {
	Name    string `mapstructure:"name"`
	Variant string `mapstructure:"variant"`
}

// RateLimitConfig bounds submissions per client. TrustedProxies lists the
// addresses or CIDR ranges of reverse proxies whose X-Forwarded-For and
// X-Real-IP headers are believed; without it the peer address is used.
type RateLimitConfig struct {
	PerMinute      int      `mapstructure:"per_minute"`
	Burst          int      `mapstructure:"burst"`
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

// Proxies parses TrustedProxies. Bare addresses become single-host prefixes.
func (c RateLimitConfig) Proxies() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(c.TrustedProxies))
	for _, entry := range c.TrustedProxies {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", entry, err)
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", entry, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

type ShutdownConfig struct {
	Grace time.Duration `mapstructure:"grace"`
}

// SetDefaults registers every key with its default. Keys must be known to
// viper for environment overrides to reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	b := banner.DefaultConfig()

	v.SetDefault("addr", ":8383")
	v.SetDefault("env", EnvDevelopment)
	v.SetDefault("log.level", "info")
	v.SetDefault("submit.endpoint", "")
	v.SetDefault("submit.timeout", time.Duration(0))
	v.SetDefault("submit.timezone", "")
	v.SetDefault("contact.endpoint", "")
	v.SetDefault("catalog.path", "")
	v.SetDefault("banner.max_height_px", b.MaxHeightPx)
	v.SetDefault("banner.min_scale", b.MinScale)
	v.SetDefault("banner.static_half_scale", b.StaticHalfScale)
	v.SetDefault("banner.shrink_distance_px", b.ShrinkDistancePx)
	v.SetDefault("banner.switch_at_progress", b.SwitchAtProgress)
	v.SetDefault("banner.condense_threshold", b.CondenseThreshold)
	v.SetDefault("theme.name", "orderform")
	v.SetDefault("theme.variant", "")
	v.SetDefault("ratelimit.per_minute", 30)
	v.SetDefault("ratelimit.burst", 5)
	v.SetDefault("ratelimit.trusted_proxies", []string{})
	v.SetDefault("shutdown.grace", 5*time.Second)
}

// New returns a viper instance with defaults, environment binding and the
// config file search path set up.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigName("orderform")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	return v
}

// Load reads the config file (file when set, otherwise the search path) and
// decodes the result. A missing file on the search path is not an error.
func Load(v *viper.Viper, file string) (Config, error) {
	if v == nil {
		v = New()
	}
	if file = strings.TrimSpace(file); file != "" {
		v.SetConfigFile(file)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	cfg.Banner = cfg.Banner.Normalize()
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Addr) == "" {
		problems = append(problems, "addr is empty")
	}
	switch c.Env {
	case EnvDevelopment, EnvProduction:
	default:
		problems = append(problems, fmt.Sprintf("env %q is not %s or %s", c.Env, EnvDevelopment, EnvProduction))
	}
	if c.RateLimit.PerMinute <= 0 {
		problems = append(problems, "ratelimit.per_minute must be positive")
	}
	if c.RateLimit.Burst <= 0 {
		problems = append(problems, "ratelimit.burst must be positive")
	}
	if _, err := c.RateLimit.Proxies(); err != nil {
		problems = append(problems, "ratelimit."+err.Error())
	}
	if c.Submit.Timeout < 0 {
		problems = append(problems, "submit.timeout must not be negative")
	}
	if c.Submit.Timezone != "" {
		if _, err := time.LoadLocation(c.Submit.Timezone); err != nil {
			problems = append(problems, fmt.Sprintf("submit.timezone: %v", err))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Location resolves submit.timezone. Empty means time.Local.
func (c Config) Location() *time.Location {
	if c.Submit.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Submit.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
