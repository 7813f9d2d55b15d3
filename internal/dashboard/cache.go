package dashboard

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/brightmill/storefront-insights/internal/dashboard/types"
	"github.com/brightmill/storefront-insights/pkg/logger"
	"github.com/brightmill/storefront-insights/pkg/metrics"
)

// CacheStore is the slice of the Redis client the cached runner needs.
type CacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CacheKey(parts ...string) string
}

// CachedRunner wraps a Runner with a Redis result cache. Concurrent queries
// for the same key collapse into a single aggregation via singleflight; the
// cache is read-through and failures fall back to the inner runner.
type CachedRunner struct {
	inner   Runner
	store   CacheStore
	ttl     time.Duration
	group   singleflight.Group
	logg    *logger.Logger
	metrics *metrics.QueryMetrics
}

// NewCachedRunner wires the cache in front of the facade.
func NewCachedRunner(inner Runner, store CacheStore, ttl time.Duration, logg *logger.Logger, queryMetrics *metrics.QueryMetrics) (*CachedRunner, error) {
	if inner == nil {
		return nil, errors.New("inner runner is required")
	}
	if store == nil {
		return nil, errors.New("cache store is required")
	}
	if ttl <= 0 {
		return nil, errors.New("cache ttl must be positive")
	}
	return &CachedRunner{
		inner:   inner,
		store:   store,
		ttl:     ttl,
		logg:    logg,
		metrics: queryMetrics,
	}, nil
}

// Run serves the result from cache when fresh, otherwise computes it once
// per key and stores it.
func (c *CachedRunner) Run(ctx context.Context, q types.Query) (*types.Result, error) {
	key, err := c.cacheKey(q)
	if err != nil {
		return c.inner.Run(ctx, q)
	}

	if cached, getErr := c.store.Get(ctx, key); getErr == nil && cached != "" {
		var result types.Result
		if jsonErr := json.Unmarshal([]byte(cached), &result); jsonErr == nil {
			c.metrics.IncCacheHit()
			return &result, nil
		}
	}
	c.metrics.IncCacheMiss()

	value, err, _ := c.group.Do(key, func() (any, error) {
		result, runErr := c.inner.Run(ctx, q)
		if runErr != nil {
			return nil, runErr
		}
		if data, jsonErr := json.Marshal(result); jsonErr == nil {
			if setErr := c.store.Set(ctx, key, string(data), c.ttl); setErr != nil && c.logg != nil {
				c.logg.Warn(ctx, "caching dashboard result failed: "+setErr.Error())
			}
		}
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*types.Result), nil
}

// cacheKey hashes the canonical query shape plus an asOf instant truncated
// to the TTL, so keyword windows roll forward as time passes.
func (c *CachedRunner) cacheKey(q types.Query) (string, error) {
	asOf := q.Reference
	if asOf.IsZero() {
		asOf = time.Now()
	}

	thresholds := make([][2]any, 0, len(q.AlertThresholds))
	for id, threshold := range q.AlertThresholds {
		thresholds = append(thresholds, [2]any{id, threshold})
	}
	sort.Slice(thresholds, func(i, j int) bool {
		return thresholds[i][0].(string) < thresholds[j][0].(string)
	})

	payload, err := json.Marshal(struct {
		Range           string
		From            int64
		To              int64
		Timezone        string
		SortField       string
		SortDirection   string
		Thresholds      [][2]any
		Ratios          *types.AlertRatios
		ComparePrevious bool
		AsOf            int64
	}{
		Range:           string(q.Range),
		From:            q.From.UnixNano(),
		To:              q.To.UnixNano(),
		Timezone:        q.Timezone,
		SortField:       string(q.SortField),
		SortDirection:   string(q.SortDirection),
		Thresholds:      thresholds,
		Ratios:          q.AlertRatios,
		ComparePrevious: q.ComparePrevious,
		AsOf:            asOf.Truncate(c.ttl).Unix(),
	})
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(payload)
	return c.store.CacheKey("dashboard", string(q.Range), hex.EncodeToString(sum[:8])), nil
}

var _ Runner = (*CachedRunner)(nil)
