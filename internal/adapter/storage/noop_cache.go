package storage

import (
	"context"
	"time"

	"github.com/Danzskrtt/Sebucha-Order-Management-System/internal/core/domain"
)

// NoopCache stands in when no Redis is configured. Idempotency checks
// always pass, so duplicate rejection is effectively disabled; the
// relational store still guarantees correctness.
type NoopCache struct{}

func (NoopCache) SetIdempotency(context.Context, string) (bool, error) { return true, nil }

func (NoopCache) SetStock(context.Context, int, int) error { return nil }

func (NoopCache) AdjustStock(context.Context, int, int) error { return nil }

func (NoopCache) GetStock(context.Context, int) (int, bool, error) { return 0, false, nil }

func (NoopCache) GetMetrics(context.Context) (*domain.MetricsSummary, bool, error) {
	return nil, false, nil
}

func (NoopCache) SetMetrics(context.Context, *domain.MetricsSummary, time.Duration) error {
	return nil
}
