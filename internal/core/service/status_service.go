package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Danzskrtt/Sebucha-Order-Management-System/internal/core/domain"
	"github.com/Danzskrtt/Sebucha-Order-Management-System/internal/port"
)

var ErrInvalidStatus = errors.New("invalid order status")

type StatusResult struct {
	OrderID   string
	NewStatus domain.OrderStatus
}

// StatusService drives the order status lifecycle. Pending and
// Completed flip freely; Cancelled is terminal and reached only through
// the restoring cancellation transaction.
type StatusService struct {
	repo   port.DatabaseRepository
	cache  port.CacheRepository
	events port.EventPublisher
	log    zerolog.Logger
}

func NewStatusService(repo port.DatabaseRepository, cache port.CacheRepository, events port.EventPublisher, log zerolog.Logger) *StatusService {
	return &StatusService{
		repo:   repo,
		cache:  cache,
		events: events,
		log:    log,
	}
}

func (s *StatusService) ChangeStatus(ctx context.Context, orderID string, requested domain.OrderStatus) (*StatusResult, error) {
	if !requested.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, requested)
	}
	if requested == domain.OrderStatusCancelled {
		return s.cancel(ctx, orderID)
	}

	if err := s.repo.UpdateOrderStatus(ctx, orderID, requested); err != nil {
		return nil, fmt.Errorf("update status of order %s: %w", orderID, err)
	}

	s.log.Info().Str("order_id", orderID).Str("status", string(requested)).Msg("order status updated")
	return &StatusResult{OrderID: orderID, NewStatus: requested}, nil
}

// cancel restores stock and flips the status inside one transaction in
// the repository; here we only propagate the result to the mirror and
// the event stream.
func (s *StatusService) cancel(ctx context.Context, orderID string) (*StatusResult, error) {
	order, err := s.repo.CancelOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("cancel order %s: %w", orderID, err)
	}

	for _, entry := range domain.EventLines(order.Lines) {
		if err := s.cache.AdjustStock(ctx, entry.ProductID, entry.Quantity); err != nil {
			s.log.Debug().Err(err).Int("product_id", entry.ProductID).Msg("stock mirror update failed")
		}
	}
	event := domain.OrderEvent{
		Type:        domain.EventOrderCancelled,
		OrderID:     order.ID,
		Status:      domain.OrderStatusCancelled,
		TotalAmount: order.TotalAmount,
		Lines:       domain.EventLines(order.Lines),
		OccurredAt:  time.Now(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.log.Warn().Err(err).Str("order_id", order.ID).Msg("event publish failed")
	}

	s.log.Info().Str("order_id", order.ID).Int("lines_restored", len(order.Lines)).Msg("order cancelled, stock restored")
	return &StatusResult{OrderID: order.ID, NewStatus: domain.OrderStatusCancelled}, nil
}

// GetOrder returns an order header with its lines.
func (s *StatusService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order %s: %w", orderID, err)
	}
	return order, nil
}

// ListOrders returns order headers, newest first, optionally filtered
// by status.
func (s *StatusService) ListOrders(ctx context.Context, status string) ([]domain.Order, error) {
	filter := port.OrderFilter{}
	if status != "" {
		parsed := domain.OrderStatus(status)
		if !parsed.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
		}
		filter.Status = parsed
	}
	orders, err := s.repo.ListOrders(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}
