package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/noah-isme/overstock-orders/internal/catalog"
	"github.com/noah-isme/overstock-orders/internal/obs"
)

// StockHandler applies stock decrement tasks against the catalog.
type StockHandler struct {
	Catalog   catalog.Provider
	Publisher *catalog.Publisher
	Logger    zerolog.Logger
}

// ProcessTask decrements the product's stock. Returning an error lets asynq
// retry with backoff; an unknown product is terminal.
func (h StockHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload StockDecrementPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal %s payload: %v: %w", TypeStockDecrement, err, asynq.SkipRetry)
	}

	err := h.Catalog.DecrementStock(ctx, payload.ProductID, payload.Quantity)
	if err != nil {
		if obs.StockDecrementFailuresTotal != nil {
			obs.StockDecrementFailuresTotal.Inc()
		}
		h.Logger.Error().Err(err).
			Str("order_id", payload.OrderID.String()).
			Str("product_id", payload.ProductID.String()).
			Int("quantity", payload.Quantity).
			Msg("stock decrement failed")
		if err == catalog.ErrNotFound {
			return fmt.Errorf("product %s not found: %w", payload.ProductID, asynq.SkipRetry)
		}
		return fmt.Errorf("decrement stock for %s: %w", payload.ProductID, err)
	}

	h.Logger.Info().
		Str("order_id", payload.OrderID.String()).
		Str("product_id", payload.ProductID.String()).
		Int("quantity", payload.Quantity).
		Msg("stock decremented")

	h.publishChange(ctx, payload.ProductID)
	return nil
}

// publishChange broadcasts the new stock level so API instances can reconcile
// open drafts and drop stale cache entries. Best effort; the decrement stands
// either way.
func (h StockHandler) publishChange(ctx context.Context, productID uuid.UUID) {
	if h.Publisher == nil {
		return
	}
	product, err := h.Catalog.GetProduct(ctx, productID)
	if err != nil {
		h.Logger.Warn().Err(err).Str("product_id", productID.String()).Msg("read stock after decrement failed")
		return
	}
	change := catalog.StockChange{ProductID: productID, NewStock: product.Stock}
	if err := h.Publisher.Publish(ctx, change); err != nil {
		h.Logger.Warn().Err(err).Str("product_id", productID.String()).Msg("publish stock change failed")
	}
}

// NewMux wires task handlers onto an asynq mux.
func NewMux(h StockHandler) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(TypeStockDecrement, h)
	return mux
}
