package order

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Validation sentinels returned by Build and Commit.
var (
	ErrMissingCustomerName  = errors.New("order: customer name is required")
	ErrMissingCustomerPhone = errors.New("order: customer phone is required")
	ErrMissingPriceBasis    = errors.New("order: price basis is required")
	ErrEmptyOrder           = errors.New("order: no lines with positive quantity")
	ErrInvalidQuantity      = errors.New("order: quantity must not be negative")
	ErrDraftNotFound        = errors.New("order: draft not found")
	ErrPersistenceFailed    = errors.New("order: persisting order failed")
)

// Conflict reasons reported by the commit-time stock re-check.
const (
	ConflictInsufficient = "insufficient"
	ConflictCheckFailed  = "check_failed"
)

// StockConflict describes a single line that failed the authoritative re-check.
type StockConflict struct {
	ProductID    uuid.UUID `json:"productId"`
	Name         string    `json:"name"`
	CurrentStock int       `json:"currentStock"`
	Reason       string    `json:"reason"`
}

// StockConflictError aborts a commit. The whole order is rejected even when a
// single line conflicts; nothing is persisted and no stock is touched.
type StockConflictError struct {
	Conflicts []StockConflict
}

func (e *StockConflictError) Error() string {
	return fmt.Sprintf("order: stock conflict on %d line(s)", len(e.Conflicts))
}
