package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"swipeboard-utils/internal/config"
	"swipeboard-utils/internal/logging"
	"swipeboard-utils/pkg/models"
)

// RedisClient wraps the Redis client with resolved-ad caching. All methods
// are safe to call on a nil receiver so the resolver keeps working when Redis
// is not deployed.
type RedisClient struct {
	client *redis.Client
	ttl    time.Duration
	logger logging.Logger
}

// NewRedisClient creates a new Redis client instance
func NewRedisClient(cfg *config.Config) *RedisClient {
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		opts = &redis.Options{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
		}
	}

	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	opts.DB = cfg.Redis.DB
	opts.DialTimeout = cfg.Redis.Timeout
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	return &RedisClient{
		client: redis.NewClient(opts),
		ttl:    cfg.ResolveCache.TTL,
		logger: logging.GetGlobalLogger(),
	}
}

// Ping tests the Redis connection
func (r *RedisClient) Ping(ctx context.Context) error {
	if r == nil {
		return fmt.Errorf("redis client not configured")
	}
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *RedisClient) Close() error {
	if r == nil {
		return nil
	}
	return r.client.Close()
}

// GetResolvedAd returns a cached record for the ad id, or nil on miss or any
// transport error. Cache errors never fail a resolve.
func (r *RedisClient) GetResolvedAd(ctx context.Context, adID string) *models.NormalizedAd {
	if r == nil || adID == "" {
		return nil
	}

	data, err := r.client.Get(ctx, r.adKey(adID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logger.Debug("Resolve cache read failed", map[string]interface{}{
				"ad_id": adID,
				"error": err.Error(),
			})
		}
		return nil
	}

	var ad models.NormalizedAd
	if err := json.Unmarshal(data, &ad); err != nil {
		r.logger.Warn("Resolve cache entry corrupt, dropping", map[string]interface{}{
			"ad_id": adID,
		})
		r.client.Del(ctx, r.adKey(adID))
		return nil
	}

	return &ad
}

// SetResolvedAd stores a resolved record with the configured TTL.
func (r *RedisClient) SetResolvedAd(ctx context.Context, ad *models.NormalizedAd) {
	if r == nil || ad == nil || ad.AdID == "" {
		return
	}

	data, err := json.Marshal(ad)
	if err != nil {
		return
	}

	if err := r.client.Set(ctx, r.adKey(ad.AdID), data, r.ttl).Err(); err != nil {
		r.logger.Debug("Resolve cache write failed", map[string]interface{}{
			"ad_id": ad.AdID,
			"error": err.Error(),
		})
	}
}

func (r *RedisClient) adKey(adID string) string {
	return "resolved_ad:" + adID
}
