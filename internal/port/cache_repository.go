package port

import (
	"context"
	"time"

	"github.com/Danzskrtt/Sebucha-Order-Management-System/internal/core/domain"
)

// CacheRepository fronts the non-authoritative fast path. The relational
// store remains the source of truth for stock and orders; everything
// here may be lost without affecting correctness.
type CacheRepository interface {
	// SetIdempotency sets a key for idempotency check, returns false if already exists.
	SetIdempotency(ctx context.Context, key string) (bool, error)

	// Stock mirror, read by dashboards only.
	SetStock(ctx context.Context, productID int, quantity int) error
	AdjustStock(ctx context.Context, productID int, delta int) error
	GetStock(ctx context.Context, productID int) (int, bool, error)

	// Metrics cache with a short TTL.
	GetMetrics(ctx context.Context) (*domain.MetricsSummary, bool, error)
	SetMetrics(ctx context.Context, summary *domain.MetricsSummary, ttl time.Duration) error
}
