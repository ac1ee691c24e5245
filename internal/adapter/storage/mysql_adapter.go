package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Danzskrtt/Sebucha-Order-Management-System/internal/core/domain"
	"github.com/Danzskrtt/Sebucha-Order-Management-System/internal/port"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

// Migrate creates the schema when it does not exist yet.
func (m *MySQLAdapter) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS products (
			id INT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			category VARCHAR(64) NOT NULL,
			price DECIMAL(10,2) NOT NULL,
			stock INT NOT NULL DEFAULT 0,
			status VARCHAR(32) NOT NULL,
			image_path VARCHAR(255) NOT NULL DEFAULT '',
			date_added TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id VARCHAR(16) PRIMARY KEY,
			customer_name VARCHAR(255) NOT NULL,
			order_type VARCHAR(32) NOT NULL,
			payment_method VARCHAR(32) NOT NULL,
			order_status VARCHAR(16) NOT NULL,
			total_amount DECIMAL(10,2) NOT NULL,
			order_date DATE NOT NULL,
			order_time TIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			id INT AUTO_INCREMENT PRIMARY KEY,
			order_id VARCHAR(16) NOT NULL,
			product_id INT NOT NULL,
			product_name VARCHAR(255) NOT NULL,
			quantity INT NOT NULL,
			unit_price DECIMAL(10,2) NOT NULL,
			total_price DECIMAL(10,2) NOT NULL,
			customization_details TEXT,
			category VARCHAR(64) NOT NULL DEFAULT '',
			addon_product_id INT NULL,
			addon_name VARCHAR(255) NULL,
			addon_quantity INT NULL,
			INDEX idx_order_items_order (order_id)
		)`,
	}
	for _, stmt := range statements {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// CreateOrder writes the header, the lines, and the guarded stock
// decrements as one transaction. A decrement that matches no row means
// insufficient stock (or an unknown product) and rolls everything back.
func (m *MySQLAdapter) CreateOrder(ctx context.Context, order domain.Order) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, customer_name, order_type, payment_method, order_status, total_amount, order_date, order_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.CustomerName, string(order.OrderType), order.PaymentMethod,
		string(order.Status), order.TotalAmount,
		order.PlacedAt.Format(dateLayout), order.PlacedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, line := range order.Lines {
		var addOnID, addOnQty sql.NullInt64
		var addOnName sql.NullString
		if line.AddOn != nil {
			addOnID = sql.NullInt64{Int64: int64(line.AddOn.ProductID), Valid: true}
			addOnName = sql.NullString{String: line.AddOn.Name, Valid: true}
			addOnQty = sql.NullInt64{Int64: int64(line.AddOn.Quantity), Valid: true}
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price, total_price, customization_details, category, addon_product_id, addon_name, addon_quantity)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			order.ID, line.ProductID, line.ProductName, line.Quantity,
			line.UnitPrice, line.TotalPrice, line.Customization, line.Category,
			addOnID, addOnName, addOnQty,
		)
		if err != nil {
			return fmt.Errorf("insert line for product %d: %w", line.ProductID, err)
		}

		if err := decrementStock(ctx, tx, line.ProductID, line.Quantity); err != nil {
			return err
		}
		if line.AddOn != nil {
			if err := decrementStock(ctx, tx, line.AddOn.ProductID, line.AddOn.Quantity); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

func decrementStock(ctx context.Context, tx *sql.Tx, productID, quantity int) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE products SET stock = stock - ?
		WHERE id = ? AND stock >= ?`,
		quantity, productID, quantity,
	)
	if err != nil {
		return fmt.Errorf("decrement stock for product %d: %w", productID, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE id = ?)`, productID).Scan(&exists); err == nil && !exists {
			return fmt.Errorf("product %d: %w", productID, port.ErrProductNotFound)
		}
		return fmt.Errorf("product %d: %w", productID, port.ErrInsufficientStock)
	}
	return nil
}

func incrementStock(ctx context.Context, tx *sql.Tx, productID, quantity int) error {
	result, err := tx.ExecContext(ctx, `UPDATE products SET stock = stock + ? WHERE id = ?`, quantity, productID)
	if err != nil {
		return fmt.Errorf("restore stock for product %d: %w", productID, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("product %d: %w", productID, port.ErrProductNotFound)
	}
	return nil
}

// CancelOrder locks the order row, rejects if already cancelled,
// restores stock for every line (and add-on), and flips the status,
// all inside one transaction.
func (m *MySQLAdapter) CancelOrder(ctx context.Context, id string) (*domain.Order, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	order := domain.Order{ID: id}
	var status, orderDate, orderTime string
	err = tx.QueryRowContext(ctx, `
		SELECT customer_name, order_type, payment_method, order_status, total_amount, order_date, order_time
		FROM orders WHERE id = ? FOR UPDATE`, id,
	).Scan(&order.CustomerName, &order.OrderType, &order.PaymentMethod, &status, &order.TotalAmount, &orderDate, &orderTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %s: %w", id, port.ErrOrderNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("lock order %s: %w", id, err)
	}
	if status == string(domain.OrderStatusCancelled) {
		return nil, fmt.Errorf("order %s: %w", id, port.ErrOrderCancelled)
	}
	order.PlacedAt = parsePlacedAt(orderDate, orderTime)

	order.Lines, err = scanOrderLines(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	for _, line := range order.Lines {
		if err := incrementStock(ctx, tx, line.ProductID, line.Quantity); err != nil {
			return nil, err
		}
		if line.AddOn != nil {
			if err := incrementStock(ctx, tx, line.AddOn.ProductID, line.AddOn.Quantity); err != nil {
				return nil, err
			}
		}
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE orders SET order_status = ?
		WHERE id = ? AND order_status <> ?`,
		string(domain.OrderStatusCancelled), id, string(domain.OrderStatusCancelled),
	)
	if err != nil {
		return nil, fmt.Errorf("mark order %s cancelled: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, fmt.Errorf("order %s: %w", id, port.ErrOrderCancelled)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit cancel of order %s: %w", id, err)
	}

	order.Status = domain.OrderStatusCancelled
	return &order, nil
}

// UpdateOrderStatus flips Pending/Completed with a guard against
// cancelled orders. Setting the status an order already has is a no-op.
func (m *MySQLAdapter) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	result, err := m.db.ExecContext(ctx, `
		UPDATE orders SET order_status = ?
		WHERE id = ? AND order_status <> ?`,
		string(status), id, string(domain.OrderStatusCancelled),
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows > 0 {
		return nil
	}

	// MySQL reports zero affected rows both for a missing order, a
	// cancelled one, and an update to the current value. Distinguish.
	var current string
	err = m.db.QueryRowContext(ctx, `SELECT order_status FROM orders WHERE id = ?`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("order %s: %w", id, port.ErrOrderNotFound)
	}
	if err != nil {
		return fmt.Errorf("read order status: %w", err)
	}
	if current == string(domain.OrderStatusCancelled) {
		return fmt.Errorf("order %s: %w", id, port.ErrOrderCancelled)
	}
	return nil
}

func (m *MySQLAdapter) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	order := domain.Order{ID: id}
	var status, orderDate, orderTime string
	err := m.db.QueryRowContext(ctx, `
		SELECT customer_name, order_type, payment_method, order_status, total_amount, order_date, order_time
		FROM orders WHERE id = ?`, id,
	).Scan(&order.CustomerName, &order.OrderType, &order.PaymentMethod, &status, &order.TotalAmount, &orderDate, &orderTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %s: %w", id, port.ErrOrderNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query order %s: %w", id, err)
	}
	order.Status = domain.OrderStatus(status)
	order.PlacedAt = parsePlacedAt(orderDate, orderTime)

	order.Lines, err = scanOrderLines(ctx, m.db, id)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (m *MySQLAdapter) ListOrders(ctx context.Context, filter port.OrderFilter) ([]domain.Order, error) {
	query := `
		SELECT id, customer_name, order_type, payment_method, order_status, total_amount, order_date, order_time
		FROM orders`
	var args []any
	if filter.Status != "" {
		query += ` WHERE order_status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY order_date DESC, order_time DESC`

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var order domain.Order
		var status, orderDate, orderTime string
		if err := rows.Scan(&order.ID, &order.CustomerName, &order.OrderType, &order.PaymentMethod, &status, &order.TotalAmount, &orderDate, &orderTime); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		order.Status = domain.OrderStatus(status)
		order.PlacedAt = parsePlacedAt(orderDate, orderTime)
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func (m *MySQLAdapter) OrderIDExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := m.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check order id: %w", err)
	}
	return exists, nil
}

func (m *MySQLAdapter) CreateProduct(ctx context.Context, product domain.Product) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO products (id, name, category, price, stock, status, image_path, date_added)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID, product.Name, product.Category, product.Price,
		product.Stock, string(product.Status), product.ImagePath, product.DateAdded,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) GetProduct(ctx context.Context, id int) (*domain.Product, error) {
	product, err := scanProduct(m.db.QueryRowContext(ctx, `
		SELECT id, name, category, price, stock, status, image_path, date_added
		FROM products WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %d: %w", id, port.ErrProductNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query product %d: %w", id, err)
	}
	return product, nil
}

func (m *MySQLAdapter) ListProducts(ctx context.Context, category string) ([]domain.Product, error) {
	query := `
		SELECT id, name, category, price, stock, status, image_path, date_added
		FROM products`
	var args []any
	if category != "" {
		query += ` WHERE category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY name`

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *product)
	}
	return products, rows.Err()
}

func (m *MySQLAdapter) UpdateProduct(ctx context.Context, product domain.Product) error {
	result, err := m.db.ExecContext(ctx, `
		UPDATE products SET name = ?, category = ?, price = ?, stock = ?, status = ?, image_path = ?
		WHERE id = ?`,
		product.Name, product.Category, product.Price, product.Stock,
		string(product.Status), product.ImagePath, product.ID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		var exists bool
		if err := m.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE id = ?)`, product.ID).Scan(&exists); err == nil && !exists {
			return fmt.Errorf("product %d: %w", product.ID, port.ErrProductNotFound)
		}
	}
	return nil
}

func (m *MySQLAdapter) ProductIDExists(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := m.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check product id: %w", err)
	}
	return exists, nil
}

func (m *MySQLAdapter) FindAddOn(ctx context.Context, name string) (*domain.Product, error) {
	product, err := scanProduct(m.db.QueryRowContext(ctx, `
		SELECT id, name, category, price, stock, status, image_path, date_added
		FROM products
		WHERE category = ? AND LOWER(name) = LOWER(?)
		LIMIT 1`, domain.CategoryAddOns, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("add-on %q: %w", name, port.ErrProductNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query add-on %q: %w", name, err)
	}
	return product, nil
}

func (m *MySQLAdapter) MetricsSummary(ctx context.Context) (*domain.MetricsSummary, error) {
	summary := &domain.MetricsSummary{}

	err := m.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total_amount), 0) FROM orders
		WHERE order_status <> ? AND TIMESTAMP(order_date, order_time) >= NOW() - INTERVAL 1 DAY`,
		string(domain.OrderStatusCancelled),
	).Scan(&summary.TodaySales)
	if err != nil {
		return nil, fmt.Errorf("query today sales: %w", err)
	}

	err = m.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE order_status <> ?`,
		string(domain.OrderStatusCancelled),
	).Scan(&summary.TotalRevenue)
	if err != nil {
		return nil, fmt.Errorf("query total revenue: %w", err)
	}

	err = m.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(oi.quantity), 0)
		FROM order_items oi JOIN orders o ON o.id = oi.order_id
		WHERE o.order_status <> ?`,
		string(domain.OrderStatusCancelled),
	).Scan(&summary.ItemsSold)
	if err != nil {
		return nil, fmt.Errorf("query items sold: %w", err)
	}

	rows, err := m.db.QueryContext(ctx, `
		SELECT oi.product_name, SUM(oi.quantity) AS sold
		FROM order_items oi JOIN orders o ON o.id = oi.order_id
		WHERE o.order_status <> ?
		GROUP BY oi.product_name
		ORDER BY sold DESC
		LIMIT 5`,
		string(domain.OrderStatusCancelled),
	)
	if err != nil {
		return nil, fmt.Errorf("query best sellers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var seller domain.BestSeller
		if err := rows.Scan(&seller.ProductName, &seller.Quantity); err != nil {
			return nil, fmt.Errorf("scan best seller: %w", err)
		}
		summary.BestSellers = append(summary.BestSellers, seller)
	}
	return summary, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var product domain.Product
	var status string
	err := row.Scan(&product.ID, &product.Name, &product.Category, &product.Price,
		&product.Stock, &status, &product.ImagePath, &product.DateAdded)
	if err != nil {
		return nil, err
	}
	product.Status = domain.ProductStatus(status)
	return &product, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func scanOrderLines(ctx context.Context, q querier, orderID string) ([]domain.OrderLine, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT product_id, product_name, quantity, unit_price, total_price,
		       COALESCE(customization_details, ''), category,
		       addon_product_id, addon_name, addon_quantity
		FROM order_items WHERE order_id = ? ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query lines of order %s: %w", orderID, err)
	}
	defer rows.Close()

	var lines []domain.OrderLine
	for rows.Next() {
		var line domain.OrderLine
		var addOnID, addOnQty sql.NullInt64
		var addOnName sql.NullString
		err := rows.Scan(&line.ProductID, &line.ProductName, &line.Quantity,
			&line.UnitPrice, &line.TotalPrice, &line.Customization, &line.Category,
			&addOnID, &addOnName, &addOnQty)
		if err != nil {
			return nil, fmt.Errorf("scan line of order %s: %w", orderID, err)
		}
		if addOnID.Valid {
			line.AddOn = &domain.AddOnRef{
				ProductID: int(addOnID.Int64),
				Name:      addOnName.String,
				Quantity:  int(addOnQty.Int64),
			}
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// parsePlacedAt tolerates both bare values and the full datetime forms
// some drivers hand back for DATE/TIME columns.
func parsePlacedAt(orderDate, orderTime string) time.Time {
	datePart := orderDate
	if i := strings.IndexByte(datePart, 'T'); i > 0 {
		datePart = datePart[:i]
	} else if i := strings.IndexByte(datePart, ' '); i > 0 {
		datePart = datePart[:i]
	}
	parsed, err := time.ParseInLocation(dateLayout+" "+timeLayout, datePart+" "+orderTime, time.Local)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
