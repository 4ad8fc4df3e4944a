package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies KSCAN_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known KSCAN_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Kalshi ──
	setStr(&cfg.Kalshi.BaseURL, "KSCAN_KALSHI_BASE_URL")
	setStr(&cfg.Kalshi.ApiKey, "KSCAN_KALSHI_API_KEY")
	setStr(&cfg.Kalshi.RsaPrivateKeyPath, "KSCAN_KALSHI_RSA_PRIVATE_KEY_PATH")
	setInt(&cfg.Kalshi.PageLimit, "KSCAN_KALSHI_PAGE_LIMIT")
	setDuration(&cfg.Kalshi.Timeout, "KSCAN_KALSHI_TIMEOUT")

	// ── Gemini ──
	setStr(&cfg.Gemini.BaseURL, "KSCAN_GEMINI_BASE_URL")
	setStr(&cfg.Gemini.ApiKey, "KSCAN_GEMINI_API_KEY")
	setStr(&cfg.Gemini.ApiKey, "GEMINI_API_KEY") // compatibility alias
	setStr(&cfg.Gemini.Model, "KSCAN_GEMINI_MODEL")
	setDuration(&cfg.Gemini.Timeout, "KSCAN_GEMINI_TIMEOUT")

	// ── Scan ──
	setInt(&cfg.Scan.MinPrice, "KSCAN_SCAN_MIN_PRICE")
	setInt(&cfg.Scan.MaxPrice, "KSCAN_SCAN_MAX_PRICE")
	setStringSlice(&cfg.Scan.Categories, "KSCAN_SCAN_CATEGORIES")
	setBool(&cfg.Scan.SameDayOnly, "KSCAN_SCAN_SAME_DAY_ONLY")
	setFloat64(&cfg.Scan.Bankroll, "KSCAN_SCAN_BANKROLL")
	setFloat64(&cfg.Scan.MaxRiskPct, "KSCAN_SCAN_MAX_RISK_PCT")
	setDuration(&cfg.Scan.CacheTTL, "KSCAN_SCAN_CACHE_TTL")

	// ── Verify ──
	setInt(&cfg.Verify.TopN, "KSCAN_VERIFY_TOP_N")
	setDuration(&cfg.Verify.MinInterval, "KSCAN_VERIFY_MIN_INTERVAL")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "KSCAN_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "KSCAN_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "KSCAN_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "KSCAN_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "KSCAN_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "KSCAN_REDIS_TLS_ENABLED")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "KSCAN_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "KSCAN_SERVER_PORT")
	setStr(&cfg.Server.ApiKey, "KSCAN_SERVER_API_KEY")
	setStringSlice(&cfg.Server.CORSOrigins, "KSCAN_SERVER_CORS_ORIGINS")
	setInt(&cfg.Server.RateLimit, "KSCAN_SERVER_RATE_LIMIT")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "KSCAN_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "KSCAN_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "KSCAN_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "KSCAN_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "KSCAN_MODE")
	setStr(&cfg.LogLevel, "KSCAN_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
