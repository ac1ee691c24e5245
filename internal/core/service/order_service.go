package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Danzskrtt/Sebucha-Order-Management-System/internal/core/domain"
	"github.com/Danzskrtt/Sebucha-Order-Management-System/internal/core/idgen"
	"github.com/Danzskrtt/Sebucha-Order-Management-System/internal/port"
)

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrInvalidLine      = errors.New("invalid cart line")
	ErrInvalidOrderType = errors.New("invalid order type")
	ErrMissingPayment   = errors.New("payment method is required")
	ErrDuplicateRequest = errors.New("duplicate request")
)

// CartLine is one entry supplied by the cart-building caller. AddOnName
// optionally names a product in the Add-ons category that is consumed
// together with this line.
type CartLine struct {
	ProductID     int
	ProductName   string
	Quantity      int
	UnitPrice     float64
	TotalPrice    float64
	Customization string
	Category      string
	AddOnName     string
	AddOnQuantity int // defaults to the line quantity
}

type PlaceOrderRequest struct {
	RequestID     string // optional; enables duplicate rejection
	CustomerName  string
	OrderType     string
	PaymentMethod string
	Cart          []CartLine
}

type PlaceOrderResult struct {
	OrderID     string
	TotalAmount float64
	Status      domain.OrderStatus
	PlacedAt    time.Time
	IDOutcome   idgen.Outcome
	QRCode      []byte
}

// OrderService coordinates order placement: validation, idempotency,
// identifier generation, and the atomic persist with stock decrements.
type OrderService struct {
	repo   port.DatabaseRepository
	cache  port.CacheRepository
	events port.EventPublisher
	ids    *idgen.Generator
	qr     QRGenerator
	log    zerolog.Logger
}

func NewOrderService(repo port.DatabaseRepository, cache port.CacheRepository, events port.EventPublisher, ids *idgen.Generator, qr QRGenerator, log zerolog.Logger) *OrderService {
	return &OrderService{
		repo:   repo,
		cache:  cache,
		events: events,
		ids:    ids,
		qr:     qr,
		log:    log,
	}
}

func (s *OrderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*PlaceOrderResult, error) {
	lines, err := s.buildLines(ctx, req.Cart)
	if err != nil {
		return nil, err
	}

	orderType := domain.OrderType(strings.TrimSpace(req.OrderType))
	if !orderType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOrderType, req.OrderType)
	}
	if strings.TrimSpace(req.PaymentMethod) == "" {
		return nil, ErrMissingPayment
	}
	customer := strings.TrimSpace(req.CustomerName)
	if customer == "" {
		customer = domain.DefaultCustomerName
	}

	if req.RequestID != "" {
		ok, err := s.cache.SetIdempotency(ctx, "order:req:"+req.RequestID)
		if err != nil {
			return nil, fmt.Errorf("idempotency check failed: %w", err)
		}
		if !ok {
			return nil, ErrDuplicateRequest
		}
	}

	placedAt := time.Now()
	orderID, outcome, err := s.ids.OrderID(ctx, s.repo.OrderIDExists)
	if err != nil {
		return nil, fmt.Errorf("generate order id: %w", err)
	}
	if outcome == idgen.OutcomeFallback {
		s.log.Warn().Str("order_id", orderID).Msg("order id retries exhausted, using unchecked fallback")
	}

	order := domain.Order{
		ID:            orderID,
		CustomerName:  customer,
		OrderType:     orderType,
		PaymentMethod: strings.TrimSpace(req.PaymentMethod),
		Status:        domain.OrderStatusPending,
		TotalAmount:   domain.Total(lines),
		PlacedAt:      placedAt,
		Lines:         lines,
	}

	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("place order %s: %w", orderID, err)
	}

	s.mirrorStock(ctx, order.Lines, -1)
	s.publish(ctx, domain.OrderEvent{
		Type:        domain.EventOrderPlaced,
		OrderID:     order.ID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		Lines:       domain.EventLines(order.Lines),
		OccurredAt:  placedAt,
	})

	result := &PlaceOrderResult{
		OrderID:     order.ID,
		TotalAmount: order.TotalAmount,
		Status:      order.Status,
		PlacedAt:    placedAt,
		IDOutcome:   outcome,
	}
	if s.qr != nil {
		png, err := s.qr.Generate(order.ID)
		if err != nil {
			s.log.Warn().Err(err).Str("order_id", order.ID).Msg("qr code generation failed")
		} else {
			result.QRCode = png
		}
	}

	s.log.Info().
		Str("order_id", order.ID).
		Float64("total_amount", order.TotalAmount).
		Int("lines", len(order.Lines)).
		Msg("order placed")
	return result, nil
}

// buildLines validates the cart and resolves add-on references before
// any transaction is opened.
func (s *OrderService) buildLines(ctx context.Context, cart []CartLine) ([]domain.OrderLine, error) {
	if len(cart) == 0 {
		return nil, ErrEmptyCart
	}

	lines := make([]domain.OrderLine, 0, len(cart))
	for i, entry := range cart {
		if entry.Quantity <= 0 {
			return nil, fmt.Errorf("%w: line %d quantity %d", ErrInvalidLine, i+1, entry.Quantity)
		}
		if entry.UnitPrice < 0 {
			return nil, fmt.Errorf("%w: line %d unit price %.2f", ErrInvalidLine, i+1, entry.UnitPrice)
		}
		total := entry.TotalPrice
		if total == 0 {
			total = float64(entry.Quantity) * entry.UnitPrice
		}
		if math.Abs(total-float64(entry.Quantity)*entry.UnitPrice) > 0.005 {
			return nil, fmt.Errorf("%w: line %d total %.2f does not equal %d x %.2f",
				ErrInvalidLine, i+1, total, entry.Quantity, entry.UnitPrice)
		}

		line := domain.OrderLine{
			ProductID:     entry.ProductID,
			ProductName:   entry.ProductName,
			Quantity:      entry.Quantity,
			UnitPrice:     entry.UnitPrice,
			TotalPrice:    total,
			Customization: entry.Customization,
			Category:      entry.Category,
		}

		if name := strings.TrimSpace(entry.AddOnName); name != "" && !strings.EqualFold(name, "None") {
			addOn, err := s.repo.FindAddOn(ctx, name)
			if err != nil {
				return nil, fmt.Errorf("resolve add-on %q: %w", name, err)
			}
			quantity := entry.AddOnQuantity
			if quantity <= 0 {
				quantity = entry.Quantity
			}
			line.AddOn = &domain.AddOnRef{
				ProductID: addOn.ID,
				Name:      addOn.Name,
				Quantity:  quantity,
			}
		}

		lines = append(lines, line)
	}
	return lines, nil
}

// mirrorStock applies line quantities to the cache mirror. sign is -1
// for placement and +1 for restoration. Failures are logged, never
// surfaced: the mirror is not authoritative.
func (s *OrderService) mirrorStock(ctx context.Context, lines []domain.OrderLine, sign int) {
	for _, entry := range domain.EventLines(lines) {
		if err := s.cache.AdjustStock(ctx, entry.ProductID, sign*entry.Quantity); err != nil {
			s.log.Debug().Err(err).Int("product_id", entry.ProductID).Msg("stock mirror update failed")
		}
	}
}

func (s *OrderService) publish(ctx context.Context, event domain.OrderEvent) {
	if err := s.events.Publish(ctx, event); err != nil {
		s.log.Warn().Err(err).Str("order_id", event.OrderID).Str("type", event.Type).Msg("event publish failed")
	}
}
