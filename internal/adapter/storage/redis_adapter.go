package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Danzskrtt/Sebucha-Order-Management-System/internal/core/domain"
)

const (
	stockKeyPrefix    = "stock:"
	metricsKey        = "metrics:summary"
	idempotencyKeyTTL = 24 * time.Hour
)

// RedisAdapter is the non-authoritative fast path: request dedupe, a
// stock mirror for dashboard reads, and a short-lived metrics cache.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, 1, idempotencyKeyTTL).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

func stockKey(productID int) string {
	return fmt.Sprintf("%s%d", stockKeyPrefix, productID)
}

func (r *RedisAdapter) SetStock(ctx context.Context, productID, quantity int) error {
	return r.client.Set(ctx, stockKey(productID), quantity, 0).Err()
}

func (r *RedisAdapter) AdjustStock(ctx context.Context, productID, delta int) error {
	return r.client.IncrBy(ctx, stockKey(productID), int64(delta)).Err()
}

func (r *RedisAdapter) GetStock(ctx context.Context, productID int) (int, bool, error) {
	quantity, err := r.client.Get(ctx, stockKey(productID)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return quantity, true, nil
}

func (r *RedisAdapter) GetMetrics(ctx context.Context) (*domain.MetricsSummary, bool, error) {
	payload, err := r.client.Get(ctx, metricsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var summary domain.MetricsSummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		return nil, false, err
	}
	return &summary, true, nil
}

func (r *RedisAdapter) SetMetrics(ctx context.Context, summary *domain.MetricsSummary, ttl time.Duration) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, metricsKey, payload, ttl).Err()
}
