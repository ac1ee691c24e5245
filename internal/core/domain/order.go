package domain

import "time"

type OrderStatus string

const (
	// OrderStatusPending is the status every newly placed order starts in.
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusCompleted OrderStatus = "Completed"
	// OrderStatusCancelled is terminal; no transition leaves it.
	OrderStatusCancelled OrderStatus = "Cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCancelled
}

type OrderType string

const (
	OrderTypeDineIn   OrderType = "Dine-in"
	OrderTypeTakeout  OrderType = "Takeout"
	OrderTypeDelivery OrderType = "Delivery"
)

func (t OrderType) Valid() bool {
	switch t {
	case OrderTypeDineIn, OrderTypeTakeout, OrderTypeDelivery:
		return true
	}
	return false
}

// DefaultCustomerName is used when the caller leaves the customer blank.
const DefaultCustomerName = "None"

// AddOnRef identifies the add-on product consumed together with an order
// line, resolved once at placement time.
type AddOnRef struct {
	ProductID int
	Name      string
	Quantity  int
}

type OrderLine struct {
	ProductID     int
	ProductName   string
	Quantity      int
	UnitPrice     float64
	TotalPrice    float64
	Customization string
	Category      string
	AddOn         *AddOnRef
}

type Order struct {
	ID            string
	CustomerName  string
	OrderType     OrderType
	PaymentMethod string
	Status        OrderStatus
	TotalAmount   float64
	PlacedAt      time.Time
	Lines         []OrderLine
}

// Total sums the line totals. The result is captured once at placement
// and never recomputed for a persisted order.
func Total(lines []OrderLine) float64 {
	var total float64
	for _, line := range lines {
		total += line.TotalPrice
	}
	return total
}
