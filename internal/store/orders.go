// internal/store/orders.go
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	apperrors "growth-assistant/internal/common/errors"
	"growth-assistant/internal/models"
)

// AddCartItem appends a line to a customer's cart.
func (s *Store) AddCartItem(ctx context.Context, item *models.CartItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cart_items (id, user_id, product_id, name, quantity, price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		item.ID, item.UserID, item.ProductID, item.Name, item.Quantity, item.Price, item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("add cart item: %w", err)
	}
	return nil
}

// ListCartItems returns a customer's cart in insertion order.
func (s *Store) ListCartItems(ctx context.Context, userID string) ([]models.CartItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, product_id, name, quantity, price, created_at
		FROM cart_items WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	defer rows.Close()

	var items []models.CartItem
	for rows.Next() {
		var it models.CartItem
		if err := rows.Scan(&it.ID, &it.UserID, &it.ProductID, &it.Name, &it.Quantity, &it.Price, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// RemoveCartItem deletes one cart line.
func (s *Store) RemoveCartItem(ctx context.Context, userID, itemID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE id = $1 AND user_id = $2`, itemID, userID)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	return nil
}

// CheckoutCart turns the customer's cart into an immutable order in one
// transaction: insert the order and its items, then empty the cart.
func (s *Store) CheckoutCart(ctx context.Context, user *models.User) (*models.Order, error) {
	items, err := s.ListCartItems(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, &apperrors.StandardError{
			Code:      apperrors.ErrCodeEmptyCart,
			Message:   "Cart is empty",
			Timestamp: time.Now().UTC(),
		}
	}

	order := &models.Order{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		UserEmail: user.Email,
		UserName:  user.Name,
		Status:    models.OrderStatusPending,
		CreatedAt: time.Now(),
	}
	order.Code = orderCode(order.CreatedAt, order.ID)
	for _, it := range items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
		order.Total += it.Price * float64(it.Quantity)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin checkout: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, code, user_id, vendor_id, user_email, user_name, total, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		order.ID, order.Code, order.UserID, order.VendorID,
		order.UserEmail, order.UserName, order.Total, order.Status, order.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	for _, it := range order.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, name, quantity, price)
			VALUES ($1, $2, $3, $4, $5)`,
			order.ID, it.ProductID, it.Name, it.Quantity, it.Price,
		)
		if err != nil {
			return nil, fmt.Errorf("insert order item: %w", err)
		}
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, user.ID); err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit checkout: %w", err)
	}
	return order, nil
}

// ListOrdersByUser returns a user's orders, newest first, without items.
func (s *Store) ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, code, user_id, vendor_id, user_email, user_name, total, status, created_at
		FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	return scanOrders(rows)
}

// CountOrdersByShop counts orders containing at least one item from the
// shop's catalog. Used by the scanner's customer-activity rule.
func (s *Store) CountOrdersByShop(ctx context.Context, shopID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT o.id)
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		JOIN products p ON p.id = oi.product_id
		WHERE p.shop_id = $1`, shopID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count orders by shop: %w", err)
	}
	return count, nil
}

// ListOrdersInWindow returns orders created in [from, to), items included,
// ordered by creation time.
func (s *Store) ListOrdersInWindow(ctx context.Context, from, to time.Time) ([]models.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, code, user_id, vendor_id, user_email, user_name, total, status, created_at
		FROM orders WHERE created_at >= $1 AND created_at < $2 ORDER BY created_at`, from, to)
	if err != nil {
		return nil, fmt.Errorf("list orders in window: %w", err)
	}
	defer rows.Close()

	orders, err := scanOrders(rows)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]string, len(orders))
	index := make(map[string]*models.Order, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		index[orders[i].ID] = &orders[i]
	}

	itemRows, err := s.db.QueryContext(ctx, `
		SELECT order_id, product_id, name, quantity, price
		FROM order_items WHERE order_id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var orderID string
		var it models.OrderItem
		if err := itemRows.Scan(&orderID, &it.ProductID, &it.Name, &it.Quantity, &it.Price); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		if o, ok := index[orderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return orders, itemRows.Err()
}

func scanOrders(rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}) ([]models.Order, error) {
	var orders []models.Order
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.Code, &o.UserID, &o.VendorID,
			&o.UserEmail, &o.UserName, &o.Total, &o.Status, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func orderCode(at time.Time, id string) string {
	short := strings.ToUpper(strings.ReplaceAll(id, "-", ""))
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("ORD-%s-%s", at.Format("20060102"), short)
}
