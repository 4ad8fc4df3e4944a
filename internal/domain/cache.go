package domain

import (
	"context"
	"time"
)

// ScanCache stores the most recent scan result per parameter set so that
// bursts of identical scan requests are served without re-walking the
// exchange. Implementations return ErrNotFound on a miss.
type ScanCache interface {
	SetScan(ctx context.Context, key string, result ScanResult) error
	GetScan(ctx context.Context, key string) (ScanResult, error)
}

// RateLimiter provides distributed request rate limiting for the API surface.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
