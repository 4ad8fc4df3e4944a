package config

// RedactedConfig returns a shallow copy of cfg with sensitive fields replaced
// by the redaction placeholder "***". Use this when logging or printing the
// active configuration so secrets are never accidentally exposed.
func RedactedConfig(cfg *Config) Config {
	out := *cfg // shallow copy of the top-level struct

	// Kalshi
	out.Kalshi = cfg.Kalshi
	redact(&out.Kalshi.ApiKey)

	// Gemini
	out.Gemini = cfg.Gemini
	redact(&out.Gemini.ApiKey)

	// Redis
	out.Redis = cfg.Redis
	redact(&out.Redis.Password)

	// Server
	out.Server = cfg.Server
	redact(&out.Server.ApiKey)

	// Notify
	out.Notify = cfg.Notify
	redact(&out.Notify.TelegramToken)
	redact(&out.Notify.DiscordWebhookURL)

	// Copy slices so callers cannot mutate the original through the redacted
	// copy.
	if cfg.Notify.Events != nil {
		out.Notify.Events = make([]string, len(cfg.Notify.Events))
		copy(out.Notify.Events, cfg.Notify.Events)
	}
	if cfg.Server.CORSOrigins != nil {
		out.Server.CORSOrigins = make([]string, len(cfg.Server.CORSOrigins))
		copy(out.Server.CORSOrigins, cfg.Server.CORSOrigins)
	}
	if cfg.Scan.Categories != nil {
		out.Scan.Categories = make([]string, len(cfg.Scan.Categories))
		copy(out.Scan.Categories, cfg.Scan.Categories)
	}

	// Copy maps so mutations to the redacted copy do not affect the original.
	if cfg.Scan.CategoryAliases != nil {
		out.Scan.CategoryAliases = make(map[string][]string, len(cfg.Scan.CategoryAliases))
		for k, v := range cfg.Scan.CategoryAliases {
			out.Scan.CategoryAliases[k] = append([]string(nil), v...)
		}
	}

	return out
}

const redacted = "***"

// redact replaces a non-empty string with the redacted placeholder.
func redact(s *string) {
	if *s != "" {
		*s = redacted
	}
}
