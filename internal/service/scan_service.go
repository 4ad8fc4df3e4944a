// Package service contains the application services that sit between the
// transport layer and the scanning and verification engines.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/alanyoungcy/kalshiscan/internal/domain"
	"github.com/alanyoungcy/kalshiscan/internal/scanner"
)

// ScanService runs market scans, consulting an optional result cache first.
// Cache failures are logged and otherwise ignored: a dead Redis must never
// block a scan.
type ScanService struct {
	scanner *scanner.Scanner
	cache   domain.ScanCache // may be nil
	logger  *slog.Logger
}

// NewScanService creates a ScanService. The cache may be nil, in which case
// every request performs a fresh scan.
func NewScanService(sc *scanner.Scanner, cache domain.ScanCache, logger *slog.Logger) *ScanService {
	return &ScanService{
		scanner: sc,
		cache:   cache,
		logger:  logger.With(slog.String("component", "scan_service")),
	}
}

// Scan returns a scan result for the given parameters, served from the cache
// when a fresh entry exists.
func (s *ScanService) Scan(ctx context.Context, params scanner.Params) (domain.ScanResult, error) {
	key := cacheKey(params)

	if s.cache != nil {
		cached, err := s.cache.GetScan(ctx, key)
		switch {
		case err == nil:
			s.logger.DebugContext(ctx, "scan served from cache", slog.String("key", key))
			return cached, nil
		case errors.Is(err, domain.ErrNotFound):
			// fall through to a fresh scan
		default:
			s.logger.WarnContext(ctx, "scan cache read failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
	}

	result, err := s.scanner.Scan(ctx, params)
	if err != nil {
		return domain.ScanResult{}, err
	}

	if s.cache != nil {
		if err := s.cache.SetScan(ctx, key, result); err != nil {
			s.logger.WarnContext(ctx, "scan cache write failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
	}

	return result, nil
}

// cacheKey derives a stable cache key from the scan parameters. Categories
// are sorted so the same set always maps to the same key.
func cacheKey(params scanner.Params) string {
	cats := make([]string, len(params.Categories))
	for i, c := range params.Categories {
		cats[i] = strings.ToUpper(strings.TrimSpace(c))
	}
	sort.Strings(cats)

	return fmt.Sprintf("%s|same_day=%t|bankroll=%g|risk=%g",
		strings.Join(cats, ","), params.SameDayOnly, params.Bankroll, params.MaxRiskPct)
}
