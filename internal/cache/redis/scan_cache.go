package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/kalshiscan/internal/domain"
)

const defaultScanTTL = time.Minute

// ScanCache implements domain.ScanCache using JSON-serialized scan results
// under a per-parameter key.
//
// Key schema:
//
//	scan:{paramKey} - string value containing the JSON ScanResult
type ScanCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewScanCache creates a ScanCache backed by the given Client. A non-positive
// ttl falls back to one minute.
func NewScanCache(c *Client, ttl time.Duration) *ScanCache {
	if ttl <= 0 {
		ttl = defaultScanTTL
	}
	return &ScanCache{rdb: c.Underlying(), ttl: ttl}
}

func scanKey(key string) string { return "scan:" + key }

// SetScan stores a scan result under the given parameter key.
func (sc *ScanCache) SetScan(ctx context.Context, key string, result domain.ScanResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("redis: marshal scan %s: %w", key, err)
	}
	if err := sc.rdb.Set(ctx, scanKey(key), data, sc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set scan %s: %w", key, err)
	}
	return nil
}

// GetScan retrieves a cached scan result by its parameter key.
// It returns domain.ErrNotFound when the key does not exist.
func (sc *ScanCache) GetScan(ctx context.Context, key string) (domain.ScanResult, error) {
	data, err := sc.rdb.Get(ctx, scanKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.ScanResult{}, domain.ErrNotFound
		}
		return domain.ScanResult{}, fmt.Errorf("redis: get scan %s: %w", key, err)
	}

	var result domain.ScanResult
	if err := json.Unmarshal(data, &result); err != nil {
		return domain.ScanResult{}, fmt.Errorf("redis: unmarshal scan %s: %w", key, err)
	}
	return result, nil
}

// Compile-time interface check.
var _ domain.ScanCache = (*ScanCache)(nil)
