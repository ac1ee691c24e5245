package domain

import "time"

type ProductStatus string

const (
	ProductAvailable    ProductStatus = "Available"
	ProductOutOfStock   ProductStatus = "Out of Stock"
	ProductLowStock     ProductStatus = "Low Stock"
	ProductDiscontinued ProductStatus = "Discontinued"
)

// LowStockThreshold is the stock level at or below which a product is
// reported as Low Stock.
const LowStockThreshold = 5

// CategoryAddOns is the category whose products can be combined with a
// base order line as an add-on.
const CategoryAddOns = "Add-ons"

var Categories = []string{
	"Premium Series",
	"Classic Series",
	"Latte Series",
	"Frappe Series",
	"Healthy Fruit Tea",
	"Hot Drinks",
	"Food Pair",
	"Add-ons",
	"Cups",
}

type Product struct {
	ID        int
	Name      string
	Category  string
	Price     float64
	Stock     int
	Status    ProductStatus
	ImagePath string
	DateAdded time.Time
}

// StatusForStock derives the display status from a stock level.
// Discontinued is never derived; it is only ever set explicitly.
func StatusForStock(stock int) ProductStatus {
	switch {
	case stock <= 0:
		return ProductOutOfStock
	case stock <= LowStockThreshold:
		return ProductLowStock
	default:
		return ProductAvailable
	}
}
