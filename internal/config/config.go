// Package config defines the top-level configuration for the Kalshi scanner
// and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by KSCAN_* environment variables.
type Config struct {
	Kalshi   KalshiConfig `toml:"kalshi"`
	Gemini   GeminiConfig `toml:"gemini"`
	Scan     ScanConfig   `toml:"scan"`
	Verify   VerifyConfig `toml:"verify"`
	Redis    RedisConfig  `toml:"redis"`
	Server   ServerConfig `toml:"server"`
	Notify   NotifyConfig `toml:"notify"`
	Mode     string       `toml:"mode"`
	LogLevel string       `toml:"log_level"`
}

// KalshiConfig holds Kalshi exchange API parameters. Credentials are optional:
// market-data endpoints are public, so an unauthenticated client works for
// scanning.
type KalshiConfig struct {
	BaseURL           string   `toml:"base_url"`
	ApiKey            string   `toml:"api_key"`
	RsaPrivateKeyPath string   `toml:"rsa_private_key_path"`
	PageLimit         int      `toml:"page_limit"`
	Timeout           duration `toml:"timeout"`
}

// GeminiConfig holds the reasoning API parameters.
type GeminiConfig struct {
	BaseURL string   `toml:"base_url"`
	ApiKey  string   `toml:"api_key"`
	Model   string   `toml:"model"`
	Timeout duration `toml:"timeout"`
}

// ScanConfig holds the market filter and sizing parameters.
type ScanConfig struct {
	MinPrice   int      `toml:"min_price"`
	MaxPrice   int      `toml:"max_price"`
	Categories []string `toml:"categories"`
	// CategoryAliases maps a canonical category name to the exchange spellings
	// that should match it.
	CategoryAliases map[string][]string `toml:"category_aliases"`
	SameDayOnly     bool                `toml:"same_day_only"`
	Bankroll        float64             `toml:"bankroll"`
	MaxRiskPct      float64             `toml:"max_risk_pct"`
	CacheTTL        duration            `toml:"cache_ttl"`
}

// VerifyConfig holds the verification policy parameters.
type VerifyConfig struct {
	TopN        int      `toml:"top_n"`
	MinInterval duration `toml:"min_interval"`
}

// RedisConfig holds Redis connection parameters. An empty addr disables Redis
// entirely; scan caching and API rate limiting degrade gracefully without it.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	ApiKey      string   `toml:"api_key"`
	CORSOrigins []string `toml:"cors_origins"`
	// RateLimit is the per-client request budget per minute. Zero disables
	// server-side rate limiting.
	RateLimit int `toml:"rate_limit"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Kalshi: KalshiConfig{
			BaseURL:   "https://api.elections.kalshi.com/trade-api/v2",
			PageLimit: 200,
			Timeout:   duration{15 * time.Second},
		},
		Gemini: GeminiConfig{
			BaseURL: "https://generativelanguage.googleapis.com",
			Model:   "gemini-2.5-flash",
			Timeout: duration{60 * time.Second},
		},
		Scan: ScanConfig{
			MinPrice:   88,
			MaxPrice:   98,
			Categories: []string{"Crypto", "Financial"},
			CategoryAliases: map[string][]string{
				"CRYPTO":    {"CRYPTOCURRENCY"},
				"FINANCIAL": {"FINANCE", "FINANCIALS"},
				"ECONOMICS": {"ECONOMY"},
			},
			SameDayOnly: false,
			Bankroll:    1000,
			MaxRiskPct:  0.02,
			CacheTTL:    duration{time.Minute},
		},
		Verify: VerifyConfig{
			TopN:        3,
			MinInterval: duration{time.Second},
		},
		Redis: RedisConfig{
			Addr:       "",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		Server: ServerConfig{
			Enabled:     true,
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
			RateLimit:   60,
		},
		Notify: NotifyConfig{
			Events: []string{"execute_candidate", "error"},
		},
		Mode:     "server",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"server": true,
	"scan":   true,
	"verify": true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	// Mode
	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: server, scan, verify)", c.Mode))
	}

	// LogLevel
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Kalshi
	if c.Kalshi.BaseURL == "" {
		errs = append(errs, "kalshi: base_url must not be empty")
	}
	if c.Kalshi.ApiKey != "" && c.Kalshi.RsaPrivateKeyPath == "" {
		errs = append(errs, "kalshi: rsa_private_key_path is required when api_key is set")
	}
	if c.Kalshi.PageLimit < 1 || c.Kalshi.PageLimit > 200 {
		errs = append(errs, fmt.Sprintf("kalshi: page_limit must be 1-200, got %d", c.Kalshi.PageLimit))
	}

	// Gemini — required for verification, so only the verify-capable modes
	// insist on a key.
	if c.Mode == "verify" || c.Mode == "server" {
		if c.Gemini.ApiKey == "" {
			errs = append(errs, "gemini: api_key is required for mode "+c.Mode)
		}
	}
	if c.Gemini.Model == "" {
		errs = append(errs, "gemini: model must not be empty")
	}

	// Scan
	if c.Scan.MinPrice < 1 || c.Scan.MinPrice > 99 {
		errs = append(errs, fmt.Sprintf("scan: min_price must be 1-99, got %d", c.Scan.MinPrice))
	}
	if c.Scan.MaxPrice < 1 || c.Scan.MaxPrice > 99 {
		errs = append(errs, fmt.Sprintf("scan: max_price must be 1-99, got %d", c.Scan.MaxPrice))
	}
	if c.Scan.MinPrice > c.Scan.MaxPrice {
		errs = append(errs, "scan: min_price must not exceed max_price")
	}
	if c.Scan.Bankroll <= 0 {
		errs = append(errs, "scan: bankroll must be > 0")
	}
	if c.Scan.MaxRiskPct <= 0 || c.Scan.MaxRiskPct > 1 {
		errs = append(errs, fmt.Sprintf("scan: max_risk_pct must be in (0,1], got %g", c.Scan.MaxRiskPct))
	}

	// Verify
	if c.Verify.TopN < 1 {
		errs = append(errs, "verify: top_n must be >= 1")
	}
	if c.Verify.MinInterval.Duration < 0 {
		errs = append(errs, "verify: min_interval must not be negative")
	}

	// Redis — only validated when enabled.
	if c.Redis.Addr != "" && c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
		if c.Server.RateLimit < 0 {
			errs = append(errs, "server: rate_limit must be >= 0")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
