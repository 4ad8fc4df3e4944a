package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/kalshiscan/internal/scanner"
	"github.com/alanyoungcy/kalshiscan/internal/server"
	"github.com/alanyoungcy/kalshiscan/internal/server/handler"
)

const shutdownGrace = 5 * time.Second

// ServerMode runs the HTTP API until the context is cancelled.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting server mode")

	if !a.cfg.Server.Enabled {
		return fmt.Errorf("server mode: server.enabled is false")
	}

	defaults := handler.ScanDefaults{
		Categories:  a.cfg.Scan.Categories,
		SameDayOnly: a.cfg.Scan.SameDayOnly,
		Bankroll:    a.cfg.Scan.Bankroll,
		MaxRiskPct:  a.cfg.Scan.MaxRiskPct,
	}

	srv := server.NewServer(
		server.Config{
			Port:        a.cfg.Server.Port,
			CORSOrigins: a.cfg.Server.CORSOrigins,
			APIKey:      a.cfg.Server.ApiKey,
			RateLimit:   a.cfg.Server.RateLimit,
		},
		server.Handlers{
			Health: handler.NewHealthHandler(a.logger),
			Scan:   handler.NewScanHandler(deps.ScanService, defaults, a.logger),
			Verify: handler.NewVerifyHandler(deps.VerifyService, defaults, a.logger),
		},
		deps.RateLimiter,
		a.logger,
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Start()
	})

	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})

	return g.Wait()
}

// ScanMode performs a single scan and writes the result as JSON to stdout.
func (a *App) ScanMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting scan mode")

	result, err := deps.ScanService.Scan(ctx, a.scanParams())
	if err != nil {
		return fmt.Errorf("scan mode: %w", err)
	}

	return printJSON(result)
}

// VerifyMode performs a single scan-verify-rank pass and writes the result as
// JSON to stdout.
func (a *App) VerifyMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting verify mode")

	result, err := deps.VerifyService.VerifyTop(ctx, a.scanParams())
	if err != nil {
		return fmt.Errorf("verify mode: %w", err)
	}

	return printJSON(result)
}

// scanParams builds scan parameters from the loaded configuration.
func (a *App) scanParams() scanner.Params {
	return scanner.Params{
		Categories:  a.cfg.Scan.Categories,
		SameDayOnly: a.cfg.Scan.SameDayOnly,
		Bankroll:    a.cfg.Scan.Bankroll,
		MaxRiskPct:  a.cfg.Scan.MaxRiskPct,
	}
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}
