package domain

// MetricsSummary carries the dashboard aggregates. Cancelled orders are
// excluded from every figure.
type MetricsSummary struct {
	TodaySales   float64      `json:"today_sales"`
	TotalRevenue float64      `json:"total_revenue"`
	ItemsSold    int          `json:"items_sold"`
	BestSellers  []BestSeller `json:"best_sellers"`
}

type BestSeller struct {
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}
