package domain

import "time"

const (
	EventOrderPlaced    = "order_placed"
	EventOrderCancelled = "order_cancelled"
)

// OrderEvent is the message published after an order transaction commits.
type OrderEvent struct {
	Type        string      `json:"type"`
	OrderID     string      `json:"order_id"`
	Status      OrderStatus `json:"status"`
	TotalAmount float64     `json:"total_amount"`
	Lines       []EventLine `json:"lines"`
	OccurredAt  time.Time   `json:"occurred_at"`
}

type EventLine struct {
	ProductID int    `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
}

// EventLines flattens order lines, including add-on consumption, into
// the quantities the event reports per product.
func EventLines(lines []OrderLine) []EventLine {
	out := make([]EventLine, 0, len(lines))
	for _, line := range lines {
		out = append(out, EventLine{ProductID: line.ProductID, Name: line.ProductName, Quantity: line.Quantity})
		if line.AddOn != nil {
			out = append(out, EventLine{ProductID: line.AddOn.ProductID, Name: line.AddOn.Name, Quantity: line.AddOn.Quantity})
		}
	}
	return out
}
