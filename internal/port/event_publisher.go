package port

import (
	"context"

	"github.com/Danzskrtt/Sebucha-Order-Management-System/internal/core/domain"
)

// EventPublisher emits order lifecycle events after a transaction
// commits. Publishing is best-effort and never fails the operation.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.OrderEvent) error
}
