package order

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/overstock-orders/internal/catalog"
	"github.com/noah-isme/overstock-orders/internal/commission"
	"github.com/noah-isme/overstock-orders/internal/common"
	"github.com/noah-isme/overstock-orders/internal/pricing"
)

// Handler exposes draft and order endpoints.
type Handler struct {
	Svc      *Service
	Registry *Registry
	Catalog  catalog.Provider
	Validate *validator.Validate
	Logger   zerolog.Logger

	// Currency is the ISO code stamped on priced responses.
	Currency string

	// CommissionVisible controls whether confirm, commit, and history
	// responses include the seller commission breakdown.
	CommissionVisible bool
}

type setItemRequest struct {
	Quantity any `json:"quantity"`
}

type customerRequest struct {
	CustomerName  string `json:"customerName" validate:"required"`
	CustomerPhone string `json:"customerPhone" validate:"required"`
	Basis         string `json:"basis" validate:"required,oneof=net vat_inclusive white"`
}

type draftItemPayload struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

type draftPayload struct {
	ID          uuid.UUID          `json:"id"`
	State       DraftState         `json:"state"`
	CreatedAt   time.Time          `json:"createdAt"`
	Items       []draftItemPayload `json:"items"`
	Adjustments []Adjustment       `json:"adjustments"`
}

type linePayload struct {
	ProductID         uuid.UUID        `json:"productId"`
	StockCode         string           `json:"stockCode"`
	Name              string           `json:"name"`
	Unit              string           `json:"unit"`
	Quantity          int              `json:"quantity"`
	UnitPriceNet      decimal.Decimal  `json:"unitPriceNet"`
	VATRate           decimal.Decimal  `json:"vatRate"`
	UnitPriceSelected decimal.Decimal  `json:"unitPriceSelected"`
	LineTotalSelected decimal.Decimal  `json:"lineTotalSelected"`
	StockAgeDays      int              `json:"stockAgeDays"`
	CommissionShare   *decimal.Decimal `json:"commissionShare,omitempty"`
}

type orderPayload struct {
	ID            *uuid.UUID            `json:"id,omitempty"`
	CustomerName  string                `json:"customerName"`
	CustomerPhone string                `json:"customerPhone"`
	Basis         pricing.Basis         `json:"basis"`
	Lines         []linePayload         `json:"lines"`
	Totals        pricing.Totals        `json:"totals"`
	TotalSelected decimal.Decimal       `json:"totalSelected"`
	Currency      string                `json:"currency,omitempty"`
	WeightedAge   int                   `json:"weightedStockAgeDays"`
	Commission    *commission.Breakdown `json:"commission,omitempty"`
	CreatedAt     *time.Time            `json:"createdAt,omitempty"`
}

// CreateDraft opens a new empty draft.
func (h *Handler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	d := h.Registry.Create()
	common.JSON(w, http.StatusCreated, map[string]any{"data": h.draftPayload(d)})
}

// GetDraft returns the draft selection plus any adjustments forced by stock
// changes since the last fetch.
func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	d, ok := h.draftFromRequest(w, r)
	if !ok {
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": h.draftPayload(d)})
}

// DeleteDraft abandons a draft.
func (h *Handler) DeleteDraft(w http.ResponseWriter, r *http.Request) {
	d, ok := h.draftFromRequest(w, r)
	if !ok {
		return
	}
	h.Registry.Remove(d.ID)
	w.WriteHeader(http.StatusNoContent)
}

// SetItem stores a quantity for a product in the draft, clamped to current
// stock. The response carries the quantity actually stored.
func (h *Handler) SetItem(w http.ResponseWriter, r *http.Request) {
	d, ok := h.draftFromRequest(w, r)
	if !ok {
		return
	}
	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", nil)
		return
	}

	var req setItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}

	product, err := h.Catalog.GetProduct(r.Context(), productID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "product not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load product", nil)
		return
	}

	stored := d.SetQuantity(productID, rawQuantity(req.Quantity), product.Stock)
	common.JSON(w, http.StatusOK, map[string]any{"data": draftItemPayload{
		ProductID: productID,
		Quantity:  stored,
	}})
}

// Confirm validates the customer fields and returns a priced order preview.
// Nothing is persisted and no stock is reserved.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	d, ok := h.draftFromRequest(w, r)
	if !ok {
		return
	}
	input, ok := h.customerInput(w, r)
	if !ok {
		return
	}
	o, err := h.Svc.Build(r.Context(), d, input)
	if err != nil {
		h.writeBuildError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": h.orderPayload(o)})
}

// Commit persists the order after an authoritative stock re-check. A conflict
// on any line rejects the whole order with 409.
func (h *Handler) Commit(w http.ResponseWriter, r *http.Request) {
	d, ok := h.draftFromRequest(w, r)
	if !ok {
		return
	}
	input, ok := h.customerInput(w, r)
	if !ok {
		return
	}
	o, err := h.Svc.Commit(r.Context(), d, input)
	if err != nil {
		var conflict *StockConflictError
		if errors.As(err, &conflict) {
			common.JSONError(w, http.StatusConflict, "STOCK_CONFLICT", "stock changed during commit",
				map[string]any{"conflicts": conflict.Conflicts})
			return
		}
		h.writeBuildError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": h.orderPayload(o)})
}

// Orders returns committed order history, newest first.
func (h *Handler) Orders(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	orders, err := h.Svc.List(r.Context(), limit)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to list orders", nil)
		return
	}
	payloads := make([]orderPayload, 0, len(orders))
	for i := range orders {
		payloads = append(payloads, h.orderPayload(&orders[i]))
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": payloads})
}

func (h *Handler) draftFromRequest(w http.ResponseWriter, r *http.Request) (*Draft, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "draftID"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid draft id", nil)
		return nil, false
	}
	d, err := h.Registry.Get(id)
	if err != nil {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "draft not found", nil)
		return nil, false
	}
	return d, true
}

func (h *Handler) customerInput(w http.ResponseWriter, r *http.Request) (BuildInput, bool) {
	var req customerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return BuildInput{}, false
	}
	if err := h.Validate.Struct(req); err != nil {
		common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", "invalid order fields",
			map[string]any{"error": err.Error()})
		return BuildInput{}, false
	}
	return BuildInput{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Basis:         pricing.Basis(req.Basis),
	}, true
}

func (h *Handler) writeBuildError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrMissingCustomerName),
		errors.Is(err, ErrMissingCustomerPhone),
		errors.Is(err, ErrMissingPriceBasis),
		errors.Is(err, ErrInvalidQuantity):
		common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", err.Error(), nil)
	case errors.Is(err, ErrEmptyOrder):
		common.JSONError(w, http.StatusUnprocessableEntity, "EMPTY_ORDER", "order has no lines with positive quantity", nil)
	case errors.Is(err, ErrPersistenceFailed):
		h.Logger.Error().Err(err).Msg("order persistence failed")
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to save order", nil)
	default:
		h.Logger.Error().Err(err).Msg("order build failed")
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to build order", nil)
	}
}

func (h *Handler) draftPayload(d *Draft) draftPayload {
	items := make([]draftItemPayload, 0)
	for id, qty := range d.Snapshot() {
		items = append(items, draftItemPayload{ProductID: id, Quantity: qty})
	}
	adjustments := d.DrainAdjustments()
	if adjustments == nil {
		adjustments = make([]Adjustment, 0)
	}
	return draftPayload{
		ID:          d.ID,
		State:       d.State(),
		CreatedAt:   d.CreatedAt,
		Items:       items,
		Adjustments: adjustments,
	}
}

func (h *Handler) orderPayload(o *Order) orderPayload {
	lines := make([]linePayload, 0, len(o.Lines))
	for _, line := range o.Lines {
		lp := linePayload{
			ProductID:         line.ProductID,
			StockCode:         line.StockCode,
			Name:              line.Name,
			Unit:              line.Unit,
			Quantity:          line.Quantity,
			UnitPriceNet:      line.UnitPriceNet,
			VATRate:           line.VATRate,
			UnitPriceSelected: line.UnitPriceSelected,
			LineTotalSelected: line.LineTotalSelected,
			StockAgeDays:      line.StockAgeDays,
		}
		if h.CommissionVisible {
			share := line.CommissionShare
			lp.CommissionShare = &share
		}
		lines = append(lines, lp)
	}
	p := orderPayload{
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
		Basis:         o.Basis,
		Lines:         lines,
		Totals:        o.Totals,
		TotalSelected: o.TotalSelected,
		Currency:      h.Currency,
		WeightedAge:   o.WeightedAge,
	}
	if o.ID != uuid.Nil {
		id := o.ID
		p.ID = &id
	}
	if !o.CreatedAt.IsZero() {
		at := o.CreatedAt
		p.CreatedAt = &at
	}
	if h.CommissionVisible {
		breakdown := o.Commission
		p.Commission = &breakdown
	}
	return p
}

// rawQuantity normalizes the wire quantity, which clients may send as either
// a number or a string, into the text form the draft parser expects.
func rawQuantity(v any) string {
	switch q := v.(type) {
	case nil:
		return ""
	case string:
		return q
	case float64:
		if q == float64(int64(q)) {
			return fmt.Sprintf("%d", int64(q))
		}
		return fmt.Sprintf("%v", q)
	default:
		return fmt.Sprintf("%v", q)
	}
}
