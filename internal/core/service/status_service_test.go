package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Danzskrtt/Sebucha-Order-Management-System/internal/core/domain"
	"github.com/Danzskrtt/Sebucha-Order-Management-System/internal/port"
)

// placeTestOrder places a two-line order and returns its id.
func placeTestOrder(t *testing.T, repo *memRepo, cache *memCache, events *memPublisher) string {
	t.Helper()
	svc := newTestOrderService(repo, cache, events)
	result, err := svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		CustomerName:  "Dana",
		OrderType:     "Dine-in",
		PaymentMethod: "Cash",
		Cart: []CartLine{
			{ProductID: 101, ProductName: "Iced Tea", Quantity: 2, UnitPrice: 60},
			{ProductID: 102, ProductName: "Chocolate Cake", Quantity: 1, UnitPrice: 120},
		},
	})
	if err != nil {
		t.Fatalf("placing fixture order failed: %v", err)
	}
	return result.OrderID
}

func TestChangeStatus_PendingToCompletedAndBack(t *testing.T) {
	repo := newMemRepo()
	seedCafeProducts(repo)
	cache := newMemCache()
	events := &memPublisher{}
	orderID := placeTestOrder(t, repo, cache, events)

	svc := NewStatusService(repo, cache, events, zerolog.Nop())

	result, err := svc.ChangeStatus(context.Background(), orderID, domain.OrderStatusCompleted)
	if err != nil {
		t.Fatalf("ChangeStatus failed: %v", err)
	}
	if result.NewStatus != domain.OrderStatusCompleted {
		t.Errorf("expected Completed, got %s", result.NewStatus)
	}

	// Back to Pending is allowed too; neither direction touches stock.
	if _, err := svc.ChangeStatus(context.Background(), orderID, domain.OrderStatusPending); err != nil {
		t.Fatalf("ChangeStatus back to Pending failed: %v", err)
	}
	if got := repo.stockOf(101); got != 8 {
		t.Errorf("status flips must not touch stock; expected 8, got %d", got)
	}
}

func TestChangeStatus_CancelRestoresStock(t *testing.T) {
	repo := newMemRepo()
	seedCafeProducts(repo)
	cache := newMemCache()
	events := &memPublisher{}
	orderID := placeTestOrder(t, repo, cache, events)

	if got := repo.stockOf(101); got != 8 {
		t.Fatalf("fixture stock expected 8, got %d", got)
	}

	svc := NewStatusService(repo, cache, events, zerolog.Nop())
	result, err := svc.ChangeStatus(context.Background(), orderID, domain.OrderStatusCancelled)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if result.NewStatus != domain.OrderStatusCancelled {
		t.Errorf("expected Cancelled, got %s", result.NewStatus)
	}

	if got := repo.stockOf(101); got != 10 {
		t.Errorf("expected Iced Tea stock restored to 10, got %d", got)
	}
	if got := repo.stockOf(102); got != 5 {
		t.Errorf("expected Chocolate Cake stock restored to 5, got %d", got)
	}

	// Total amount is untouched by cancellation.
	order, _ := repo.GetOrder(context.Background(), orderID)
	if order.TotalAmount != 240 {
		t.Errorf("expected total 240.00 after cancel, got %.2f", order.TotalAmount)
	}

	published := events.published()
	last := published[len(published)-1]
	if last.Type != domain.EventOrderCancelled || last.OrderID != orderID {
		t.Errorf("expected order_cancelled event for %s, got %+v", orderID, last)
	}
}

func TestChangeStatus_RestorationIsAdditive(t *testing.T) {
	repo := newMemRepo()
	seedCafeProducts(repo)
	cache := newMemCache()
	events := &memPublisher{}
	orderID := placeTestOrder(t, repo, cache, events)

	// Stock changes independently between placement and cancellation.
	repo.addProduct(domain.Product{ID: 101, Name: "Iced Tea", Category: "Classic Series", Price: 60, Stock: 3, Status: domain.ProductAvailable})

	svc := NewStatusService(repo, cache, events, zerolog.Nop())
	if _, err := svc.ChangeStatus(context.Background(), orderID, domain.OrderStatusCancelled); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	// Restoration adds the decremented quantity to whatever is there now.
	if got := repo.stockOf(101); got != 5 {
		t.Errorf("expected stock 3+2=5, got %d", got)
	}
}

func TestChangeStatus_CancelTwiceRejected(t *testing.T) {
	repo := newMemRepo()
	seedCafeProducts(repo)
	cache := newMemCache()
	events := &memPublisher{}
	orderID := placeTestOrder(t, repo, cache, events)

	svc := NewStatusService(repo, cache, events, zerolog.Nop())
	if _, err := svc.ChangeStatus(context.Background(), orderID, domain.OrderStatusCancelled); err != nil {
		t.Fatalf("first cancel failed: %v", err)
	}

	_, err := svc.ChangeStatus(context.Background(), orderID, domain.OrderStatusCancelled)
	if !errors.Is(err, port.ErrOrderCancelled) {
		t.Fatalf("expected ErrOrderCancelled, got: %v", err)
	}

	// No double restoration.
	if got := repo.stockOf(101); got != 10 {
		t.Errorf("expected stock 10 after single restoration, got %d", got)
	}
}

func TestChangeStatus_CancelledIsTerminal(t *testing.T) {
	repo := newMemRepo()
	seedCafeProducts(repo)
	cache := newMemCache()
	events := &memPublisher{}
	orderID := placeTestOrder(t, repo, cache, events)

	svc := NewStatusService(repo, cache, events, zerolog.Nop())
	if _, err := svc.ChangeStatus(context.Background(), orderID, domain.OrderStatusCancelled); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	for _, requested := range []domain.OrderStatus{domain.OrderStatusPending, domain.OrderStatusCompleted} {
		_, err := svc.ChangeStatus(context.Background(), orderID, requested)
		if !errors.Is(err, port.ErrOrderCancelled) {
			t.Errorf("transition to %s: expected ErrOrderCancelled, got: %v", requested, err)
		}
	}

	order, _ := repo.GetOrder(context.Background(), orderID)
	if order.Status != domain.OrderStatusCancelled {
		t.Errorf("status mutated after terminal state: %s", order.Status)
	}
}

func TestChangeStatus_UnknownOrder(t *testing.T) {
	svc := NewStatusService(newMemRepo(), newMemCache(), &memPublisher{}, zerolog.Nop())

	_, err := svc.ChangeStatus(context.Background(), "ORD-000000", domain.OrderStatusCompleted)
	if !errors.Is(err, port.ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound, got: %v", err)
	}
}

func TestChangeStatus_InvalidStatus(t *testing.T) {
	svc := NewStatusService(newMemRepo(), newMemCache(), &memPublisher{}, zerolog.Nop())

	_, err := svc.ChangeStatus(context.Background(), "ORD-000001", "Refunded")
	if !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus, got: %v", err)
	}
}

func TestListOrders_FilterByStatus(t *testing.T) {
	repo := newMemRepo()
	seedCafeProducts(repo)
	cache := newMemCache()
	events := &memPublisher{}
	first := placeTestOrder(t, repo, cache, events)

	orderSvc := newTestOrderService(repo, cache, events)
	second, err := orderSvc.PlaceOrder(context.Background(), PlaceOrderRequest{
		OrderType:     "Takeout",
		PaymentMethod: "Card",
		Cart:          []CartLine{{ProductID: 101, ProductName: "Iced Tea", Quantity: 1, UnitPrice: 60}},
	})
	if err != nil {
		t.Fatalf("second placement failed: %v", err)
	}

	svc := NewStatusService(repo, cache, events, zerolog.Nop())
	if _, err := svc.ChangeStatus(context.Background(), first, domain.OrderStatusCompleted); err != nil {
		t.Fatalf("ChangeStatus failed: %v", err)
	}

	completed, err := svc.ListOrders(context.Background(), "Completed")
	if err != nil {
		t.Fatalf("ListOrders failed: %v", err)
	}
	if len(completed) != 1 || completed[0].ID != first {
		t.Errorf("expected only %s in Completed, got %+v", first, completed)
	}

	pending, err := svc.ListOrders(context.Background(), "Pending")
	if err != nil {
		t.Fatalf("ListOrders failed: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != second.OrderID {
		t.Errorf("expected only %s in Pending, got %+v", second.OrderID, pending)
	}

	if _, err := svc.ListOrders(context.Background(), "Refunded"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus for unknown filter, got: %v", err)
	}
}
