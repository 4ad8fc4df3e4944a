package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/alanyoungcy/kalshiscan/internal/cache/redis"
	"github.com/alanyoungcy/kalshiscan/internal/config"
	"github.com/alanyoungcy/kalshiscan/internal/domain"
	"github.com/alanyoungcy/kalshiscan/internal/notify"
	"github.com/alanyoungcy/kalshiscan/internal/platform/gemini"
	"github.com/alanyoungcy/kalshiscan/internal/platform/kalshi"
	"github.com/alanyoungcy/kalshiscan/internal/scanner"
	"github.com/alanyoungcy/kalshiscan/internal/service"
	"github.com/alanyoungcy/kalshiscan/internal/verify"
)

// Dependencies bundles every domain-level dependency that the application
// modes need to operate. It is constructed by Wire and torn down by the
// returned cleanup function.
type Dependencies struct {
	// Services
	ScanService   *service.ScanService
	VerifyService *service.VerifyService

	// Caches (nil when Redis is not configured)
	ScanCache   domain.ScanCache
	RateLimiter domain.RateLimiter

	// Notifications (nil when no channels are configured)
	Notifier *notify.Notifier
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Kalshi exchange client ---
	exchange := kalshi.NewClient(cfg.Kalshi.BaseURL, cfg.Kalshi.ApiKey, cfg.Kalshi.PageLimit, cfg.Kalshi.Timeout.Duration)
	if cfg.Kalshi.ApiKey != "" && cfg.Kalshi.RsaPrivateKeyPath != "" {
		pemBytes, err := os.ReadFile(cfg.Kalshi.RsaPrivateKeyPath)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: read kalshi key: %w", err)
		}
		if err := exchange.SetRSAPrivateKey(pemBytes); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: kalshi key: %w", err)
		}
	}

	// --- Redis (optional) ---
	if cfg.Redis.Addr != "" {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.ScanCache = redis.NewScanCache(redisClient, cfg.Scan.CacheTTL.Duration)
		deps.RateLimiter = redis.NewRateLimiter(redisClient)
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	if len(senders) > 0 {
		deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)
	}

	// --- Scanner and services ---
	sc := scanner.New(exchange, scanner.Config{
		MinPrice:        cfg.Scan.MinPrice,
		MaxPrice:        cfg.Scan.MaxPrice,
		CategoryAliases: cfg.Scan.CategoryAliases,
	}, logger)

	deps.ScanService = service.NewScanService(sc, deps.ScanCache, logger)

	reasoner := gemini.NewClient(gemini.ClientConfig{
		BaseURL: cfg.Gemini.BaseURL,
		APIKey:  cfg.Gemini.ApiKey,
		Model:   cfg.Gemini.Model,
		Timeout: cfg.Gemini.Timeout.Duration,
	})

	verifier := verify.New(reasoner, verify.Config{
		TopN:        cfg.Verify.TopN,
		MinInterval: cfg.Verify.MinInterval.Duration,
	}, logger)

	deps.VerifyService = service.NewVerifyService(
		deps.ScanService, verifier, deps.Notifier, cfg.Verify.TopN, logger,
	)

	return deps, cleanup, nil
}
