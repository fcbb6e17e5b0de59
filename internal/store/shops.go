// internal/store/shops.go
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "growth-assistant/internal/common/errors"
	"growth-assistant/internal/models"
)

// CreateShop registers a shop for a vendor. Shops are never deleted.
func (s *Store) CreateShop(ctx context.Context, shop *models.Shop) error {
	if shop.ID == "" {
		shop.ID = uuid.New().String()
	}
	if shop.CreatedAt.IsZero() {
		shop.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shops (id, vendor_id, name, business_type, address, phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		shop.ID, shop.VendorID, shop.Name, shop.BusinessType, shop.Address, shop.Phone, shop.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create shop: %w", err)
	}
	return nil
}

// ListShopsByVendor returns a vendor's shops in creation order.
func (s *Store) ListShopsByVendor(ctx context.Context, vendorID string) ([]models.Shop, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, vendor_id, name, business_type, address, phone, created_at
		FROM shops WHERE vendor_id = $1 ORDER BY created_at`, vendorID)
	if err != nil {
		return nil, fmt.Errorf("list shops: %w", err)
	}
	defer rows.Close()

	var shops []models.Shop
	for rows.Next() {
		var sh models.Shop
		if err := rows.Scan(&sh.ID, &sh.VendorID, &sh.Name, &sh.BusinessType,
			&sh.Address, &sh.Phone, &sh.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan shop: %w", err)
		}
		shops = append(shops, sh)
	}
	return shops, rows.Err()
}

// CreateProduct adds a catalog entry under a vendor's shop.
func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, vendor_id, shop_id, name, price, stock, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.VendorID, p.ShopID, p.Name, p.Price, p.Stock, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

// GetProduct fetches a single catalog entry.
func (s *Store) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	err := s.db.QueryRowContext(ctx, `
		SELECT id, vendor_id, shop_id, name, price, stock, created_at
		FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.VendorID, &p.ShopID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("product", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// ListProducts returns the whole catalog, optionally filtered by vendor.
func (s *Store) ListProducts(ctx context.Context, vendorID string) ([]models.Product, error) {
	query := `
		SELECT id, vendor_id, shop_id, name, price, stock, created_at
		FROM products ORDER BY created_at`
	args := []interface{}{}
	if vendorID != "" {
		query = `
		SELECT id, vendor_id, shop_id, name, price, stock, created_at
		FROM products WHERE vendor_id = $1 ORDER BY created_at`
		args = append(args, vendorID)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.VendorID, &p.ShopID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
