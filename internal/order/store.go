package order

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/overstock-orders/internal/pricing"
)

// PGStore persists orders in Postgres.
type PGStore struct {
	Pool *pgxpool.Pool
}

const insertOrderSQL = `
INSERT INTO orders (
	id, customer_name, customer_phone, basis,
	total_net, total_vat_inclusive, total_white, total_selected,
	eligible_value, weighted_stock_age_days,
	commission_base, commission_order_bonus, commission_stock_age_bonus, commission_total,
	created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

const insertLineSQL = `
INSERT INTO order_lines (
	id, order_id, position, product_id, stock_code, name, unit, quantity,
	unit_price_net, vat_rate, unit_price_selected, line_total_selected,
	eligible_value, stock_age_days, commission_share
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

const listOrdersSQL = `
SELECT id, customer_name, customer_phone, basis,
	total_net, total_vat_inclusive, total_white, total_selected,
	eligible_value, weighted_stock_age_days,
	commission_base, commission_order_bonus, commission_stock_age_bonus, commission_total,
	created_at
FROM orders
ORDER BY created_at DESC
LIMIT $1`

const listLinesSQL = `
SELECT order_id, product_id, stock_code, name, unit, quantity,
	unit_price_net, vat_rate, unit_price_selected, line_total_selected,
	eligible_value, stock_age_days, commission_share
FROM order_lines
WHERE order_id = ANY($1::uuid[])
ORDER BY order_id, position`

// InsertOrder writes the order and all its lines in a single transaction.
func (s *PGStore) InsertOrder(ctx context.Context, o *Order) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, insertOrderSQL,
		o.ID, o.CustomerName, o.CustomerPhone, string(o.Basis),
		o.Totals.Net, o.Totals.VATInclusive, o.Totals.White, o.TotalSelected,
		o.EligibleValue, o.WeightedAge,
		o.Commission.Base, o.Commission.OrderValueBonus, o.Commission.StockAgeBonus, o.Commission.Total,
		o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	batch := &pgx.Batch{}
	for i, line := range o.Lines {
		batch.Queue(insertLineSQL,
			uuid.New(), o.ID, i, line.ProductID, line.StockCode, line.Name, line.Unit, line.Quantity,
			line.UnitPriceNet, line.VATRate, line.UnitPriceSelected, line.LineTotalSelected,
			line.EligibleValue, line.StockAgeDays, line.CommissionShare,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert order lines: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// ListOrders returns committed orders with their lines, newest first.
func (s *PGStore) ListOrders(ctx context.Context, limit int) ([]Order, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, listOrdersSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var (
		orders []Order
		index  = make(map[uuid.UUID]int)
		ids    []string
	)
	for rows.Next() {
		var o Order
		var basis string
		err := rows.Scan(
			&o.ID, &o.CustomerName, &o.CustomerPhone, &basis,
			&o.Totals.Net, &o.Totals.VATInclusive, &o.Totals.White, &o.TotalSelected,
			&o.EligibleValue, &o.WeightedAge,
			&o.Commission.Base, &o.Commission.OrderValueBonus, &o.Commission.StockAgeBonus, &o.Commission.Total,
			&o.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.Basis = pricing.Basis(basis)
		index[o.ID] = len(orders)
		ids = append(ids, o.ID.String())
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	lineRows, err := s.Pool.Query(ctx, listLinesSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	defer lineRows.Close()

	for lineRows.Next() {
		var (
			orderID uuid.UUID
			line    Line
		)
		err := lineRows.Scan(
			&orderID, &line.ProductID, &line.StockCode, &line.Name, &line.Unit, &line.Quantity,
			&line.UnitPriceNet, &line.VATRate, &line.UnitPriceSelected, &line.LineTotalSelected,
			&line.EligibleValue, &line.StockAgeDays, &line.CommissionShare,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		if i, ok := index[orderID]; ok {
			orders[i].Lines = append(orders[i].Lines, line)
		}
	}
	if err := lineRows.Err(); err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	return orders, nil
}
