package port

import (
	"context"
	"errors"

	"github.com/Danzskrtt/Sebucha-Order-Management-System/internal/core/domain"
)

var (
	// ErrInsufficientStock means a guarded decrement matched no row.
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrProductNotFound   = errors.New("product not found")
	ErrOrderNotFound     = errors.New("order not found")
	// ErrOrderCancelled rejects any mutation of a cancelled order.
	ErrOrderCancelled = errors.New("order already cancelled")
)

type OrderFilter struct {
	Status domain.OrderStatus // zero value means no filter
}

type DatabaseRepository interface {
	// CreateOrder persists the order header, every line, and the guarded
	// stock decrements (base product and add-on per line) in a single
	// transaction. Any failure rolls the whole order back.
	CreateOrder(ctx context.Context, order domain.Order) error

	// GetOrder returns the header together with its lines.
	GetOrder(ctx context.Context, id string) (*domain.Order, error)

	// ListOrders returns order headers, newest first, without lines.
	ListOrders(ctx context.Context, filter OrderFilter) ([]domain.Order, error)

	OrderIDExists(ctx context.Context, id string) (bool, error)

	// UpdateOrderStatus flips Pending/Completed. It refuses to touch a
	// cancelled order and reports ErrOrderCancelled instead.
	UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) error

	// CancelOrder re-checks the persisted status, restores stock for
	// every line, and marks the order Cancelled, all in one transaction.
	// It returns the cancelled order with its lines.
	CancelOrder(ctx context.Context, id string) (*domain.Order, error)

	CreateProduct(ctx context.Context, product domain.Product) error
	GetProduct(ctx context.Context, id int) (*domain.Product, error)
	ListProducts(ctx context.Context, category string) ([]domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product) error
	ProductIDExists(ctx context.Context, id int) (bool, error)

	// FindAddOn resolves an add-on product by name within the Add-ons
	// category; ErrProductNotFound when no such product exists.
	FindAddOn(ctx context.Context, name string) (*domain.Product, error)

	MetricsSummary(ctx context.Context) (*domain.MetricsSummary, error)
}
