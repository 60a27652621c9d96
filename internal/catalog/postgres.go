package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store implements Provider against Postgres.
type Store struct {
	Pool *pgxpool.Pool
}

const listProductsSQL = `
SELECT id, stock_code, name, category, unit, unit_price, vat_rate, stock, entered_at
FROM products
ORDER BY name`

const getProductSQL = `
SELECT id, stock_code, name, category, unit, unit_price, vat_rate, stock, entered_at
FROM products
WHERE id = $1`

const decrementStockSQL = `
UPDATE products
SET stock = GREATEST(stock - $2, 0), updated_at = now()
WHERE id = $1`

// ListProducts returns all catalog entries ordered by name.
func (s *Store) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := s.Pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.StockCode, &p.Name, &p.Category, &p.Unit, &p.UnitPrice, &p.VATRate, &p.Stock, &p.EnteredAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// GetProduct returns a single catalog entry by id.
func (s *Store) GetProduct(ctx context.Context, id uuid.UUID) (Product, error) {
	var p Product
	err := s.Pool.QueryRow(ctx, getProductSQL, id).
		Scan(&p.ID, &p.StockCode, &p.Name, &p.Category, &p.Unit, &p.UnitPrice, &p.VATRate, &p.Stock, &p.EnteredAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// DecrementStock lowers a product's stock by amount. Stock never goes
// negative; the order record keeps the promised quantity.
func (s *Store) DecrementStock(ctx context.Context, id uuid.UUID, amount int) error {
	if amount <= 0 {
		return nil
	}
	tag, err := s.Pool.Exec(ctx, decrementStockSQL, id, amount)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
