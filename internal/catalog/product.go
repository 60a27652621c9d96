package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a product id does not exist in the catalog.
var ErrNotFound = errors.New("catalog: product not found")

// Product is a catalog entry. Stock is authoritative only at the store; any
// copy held elsewhere is a snapshot that may already be stale.
type Product struct {
	ID        uuid.UUID       `json:"id"`
	StockCode string          `json:"stockCode"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Unit      string          `json:"unit"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	VATRate   decimal.Decimal `json:"vatRate"`
	Stock     int             `json:"stock"`
	EnteredAt time.Time       `json:"enteredAt"`
}

// StockAgeDays returns whole days since the product entered stock. It is
// derived at read time, never stored.
func (p Product) StockAgeDays(now time.Time) int {
	if p.EnteredAt.IsZero() || now.Before(p.EnteredAt) {
		return 0
	}
	return int(now.Sub(p.EnteredAt) / (24 * time.Hour))
}

// Provider is the catalog collaborator contract used by the ordering core.
type Provider interface {
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (Product, error)
	DecrementStock(ctx context.Context, id uuid.UUID, amount int) error
}
