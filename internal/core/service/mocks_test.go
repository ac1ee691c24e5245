package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Danzskrtt/Sebucha-Order-Management-System/internal/core/domain"
	"github.com/Danzskrtt/Sebucha-Order-Management-System/internal/port"
)

// memRepo is an in-memory DatabaseRepository with the same atomicity
// semantics as the real adapter: CreateOrder and CancelOrder either
// apply every effect or none.
type memRepo struct {
	mu       sync.Mutex
	products map[int]*domain.Product
	orders   map[string]*domain.Order

	failCreate error // injected CreateOrder failure
}

func newMemRepo() *memRepo {
	return &memRepo{
		products: make(map[int]*domain.Product),
		orders:   make(map[string]*domain.Order),
	}
}

func (m *memRepo) addProduct(p domain.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := p
	m.products[p.ID] = &cp
}

func (m *memRepo) stockOf(id int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.products[id]; ok {
		return p.Stock
	}
	return -1
}

func (m *memRepo) CreateOrder(ctx context.Context, order domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failCreate != nil {
		return m.failCreate
	}

	// Check every decrement before applying any, so a failure leaves
	// no partial effect.
	needed := map[int]int{}
	for _, line := range order.Lines {
		needed[line.ProductID] += line.Quantity
		if line.AddOn != nil {
			needed[line.AddOn.ProductID] += line.AddOn.Quantity
		}
	}
	for id, qty := range needed {
		p, ok := m.products[id]
		if !ok {
			return fmt.Errorf("product %d: %w", id, port.ErrProductNotFound)
		}
		if p.Stock < qty {
			return fmt.Errorf("product %d: %w", id, port.ErrInsufficientStock)
		}
	}
	for id, qty := range needed {
		m.products[id].Stock -= qty
	}

	cp := order
	cp.Lines = append([]domain.OrderLine(nil), order.Lines...)
	m.orders[order.ID] = &cp
	return nil
}

func (m *memRepo) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, port.ErrOrderNotFound)
	}
	cp := *order
	cp.Lines = append([]domain.OrderLine(nil), order.Lines...)
	return &cp, nil
}

func (m *memRepo) ListOrders(ctx context.Context, filter port.OrderFilter) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var orders []domain.Order
	for _, order := range m.orders {
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		cp := *order
		cp.Lines = nil
		orders = append(orders, cp)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].PlacedAt.After(orders[j].PlacedAt) })
	return orders, nil
}

func (m *memRepo) OrderIDExists(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.orders[id]
	return ok, nil
}

func (m *memRepo) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return fmt.Errorf("order %s: %w", id, port.ErrOrderNotFound)
	}
	if order.Status == domain.OrderStatusCancelled {
		return fmt.Errorf("order %s: %w", id, port.ErrOrderCancelled)
	}
	order.Status = status
	return nil
}

func (m *memRepo) CancelOrder(ctx context.Context, id string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, port.ErrOrderNotFound)
	}
	if order.Status == domain.OrderStatusCancelled {
		return nil, fmt.Errorf("order %s: %w", id, port.ErrOrderCancelled)
	}
	for _, line := range order.Lines {
		if p, ok := m.products[line.ProductID]; ok {
			p.Stock += line.Quantity
		}
		if line.AddOn != nil {
			if p, ok := m.products[line.AddOn.ProductID]; ok {
				p.Stock += line.AddOn.Quantity
			}
		}
	}
	order.Status = domain.OrderStatusCancelled

	cp := *order
	cp.Lines = append([]domain.OrderLine(nil), order.Lines...)
	return &cp, nil
}

func (m *memRepo) CreateProduct(ctx context.Context, product domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[product.ID]; ok {
		return fmt.Errorf("product %d already exists", product.ID)
	}
	cp := product
	m.products[product.ID] = &cp
	return nil
}

func (m *memRepo) GetProduct(ctx context.Context, id int) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	product, ok := m.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, port.ErrProductNotFound)
	}
	cp := *product
	return &cp, nil
}

func (m *memRepo) ListProducts(ctx context.Context, category string) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var products []domain.Product
	for _, product := range m.products {
		if category != "" && product.Category != category {
			continue
		}
		products = append(products, *product)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return products, nil
}

func (m *memRepo) UpdateProduct(ctx context.Context, product domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[product.ID]; !ok {
		return fmt.Errorf("product %d: %w", product.ID, port.ErrProductNotFound)
	}
	cp := product
	m.products[product.ID] = &cp
	return nil
}

func (m *memRepo) ProductIDExists(ctx context.Context, id int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.products[id]
	return ok, nil
}

func (m *memRepo) FindAddOn(ctx context.Context, name string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, product := range m.products {
		if product.Category == domain.CategoryAddOns && strings.EqualFold(product.Name, name) {
			cp := *product
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("add-on %q: %w", name, port.ErrProductNotFound)
}

func (m *memRepo) MetricsSummary(ctx context.Context) (*domain.MetricsSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	summary := &domain.MetricsSummary{}
	for _, order := range m.orders {
		if order.Status == domain.OrderStatusCancelled {
			continue
		}
		summary.TotalRevenue += order.TotalAmount
		for _, line := range order.Lines {
			summary.ItemsSold += line.Quantity
		}
	}
	summary.TodaySales = summary.TotalRevenue
	return summary, nil
}

// memCache is an in-memory CacheRepository.
type memCache struct {
	mu          sync.Mutex
	idempotency map[string]bool
	stock       map[int]int
	metrics     *domain.MetricsSummary
}

func newMemCache() *memCache {
	return &memCache{
		idempotency: make(map[string]bool),
		stock:       make(map[int]int),
	}
}

func (c *memCache) SetIdempotency(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.idempotency[key] {
		return false, nil
	}
	c.idempotency[key] = true
	return true, nil
}

func (c *memCache) SetStock(ctx context.Context, productID, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stock[productID] = quantity
	return nil
}

func (c *memCache) AdjustStock(ctx context.Context, productID, delta int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stock[productID] += delta
	return nil
}

func (c *memCache) GetStock(ctx context.Context, productID int) (int, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	quantity, ok := c.stock[productID]
	return quantity, ok, nil
}

func (c *memCache) GetMetrics(ctx context.Context) (*domain.MetricsSummary, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.metrics == nil {
		return nil, false, nil
	}
	return c.metrics, true, nil
}

func (c *memCache) SetMetrics(ctx context.Context, summary *domain.MetricsSummary, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics = summary
	return nil
}

// memPublisher records published events.
type memPublisher struct {
	mu      sync.Mutex
	events  []domain.OrderEvent
	failErr error
}

func (p *memPublisher) Publish(ctx context.Context, event domain.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failErr != nil {
		return p.failErr
	}
	p.events = append(p.events, event)
	return nil
}

func (p *memPublisher) published() []domain.OrderEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.OrderEvent(nil), p.events...)
}
