package order

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Draft states. A draft loops between composing and confirming until a commit
// succeeds and marks it committed. Writing a quantity afterwards starts a new
// order and returns the draft to composing.
type DraftState string

const (
	StateComposing  DraftState = "composing"
	StateConfirming DraftState = "confirming"
	StateCommitting DraftState = "committing"
	StateCommitted  DraftState = "committed"
)

// Adjustment reasons attached to forced quantity shrinks.
const (
	AdjustDepleted = "depleted"
	AdjustReduced  = "reduced"
)

// Adjustment records a draft quantity shrink forced by an external stock change.
type Adjustment struct {
	ProductID   uuid.UUID `json:"productId"`
	OldQuantity int       `json:"oldQuantity"`
	NewQuantity int       `json:"newQuantity"`
	Reason      string    `json:"reason"`
}

// Draft is a mutable in-progress order selection. All access is serialized by
// an internal mutex; stock notifications and HTTP handlers mutate it
// concurrently.
type Draft struct {
	ID        uuid.UUID
	CreatedAt time.Time

	mu          sync.Mutex
	state       DraftState
	quantities  map[uuid.UUID]int
	lastStock   map[uuid.UUID]int
	adjustments []Adjustment
}

// NewDraft creates an empty draft in the composing state.
func NewDraft(now time.Time) *Draft {
	return &Draft{
		ID:         uuid.New(),
		CreatedAt:  now,
		state:      StateComposing,
		quantities: make(map[uuid.UUID]int),
		lastStock:  make(map[uuid.UUID]int),
	}
}

// ParseQuantity interprets raw user input as a quantity. Anything that is not
// a non-negative integer collapses to zero.
func ParseQuantity(raw string) int {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// SetQuantity stores the requested quantity for a product, clamped to the
// range [0, currentStock]. It returns the quantity actually stored.
func (d *Draft) SetQuantity(productID uuid.UUID, raw string, currentStock int) int {
	qty := ParseQuantity(raw)
	if currentStock < 0 {
		currentStock = 0
	}
	if qty > currentStock {
		qty = currentStock
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastStock[productID] = currentStock
	if qty == 0 {
		delete(d.quantities, productID)
		return 0
	}
	d.quantities[productID] = qty
	d.state = StateComposing
	return qty
}

// Quantity returns the stored quantity for a product, zero when unset.
func (d *Draft) Quantity(productID uuid.UUID) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.quantities[productID]
}

// Snapshot returns a copy of the current selection.
func (d *Draft) Snapshot() map[uuid.UUID]int {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[uuid.UUID]int, len(d.quantities))
	for id, qty := range d.quantities {
		out[id] = qty
	}
	return out
}

// ApplyStockChange reconciles the draft with an external stock change. When
// the new stock falls below the selected quantity the selection shrinks and
// an Adjustment is queued for the next fetch. Returns the adjustment, or nil
// when nothing changed.
func (d *Draft) ApplyStockChange(productID uuid.UUID, newStock int) *Adjustment {
	if newStock < 0 {
		newStock = 0
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastStock[productID] = newStock
	current, ok := d.quantities[productID]
	if !ok || current <= newStock {
		return nil
	}
	adj := Adjustment{
		ProductID:   productID,
		OldQuantity: current,
		NewQuantity: newStock,
		Reason:      AdjustReduced,
	}
	if newStock == 0 {
		adj.Reason = AdjustDepleted
		delete(d.quantities, productID)
	} else {
		d.quantities[productID] = newStock
	}
	d.adjustments = append(d.adjustments, adj)
	return &adj
}

// DrainAdjustments returns and clears the pending adjustment queue.
func (d *Draft) DrainAdjustments() []Adjustment {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := d.adjustments
	d.adjustments = nil
	return out
}

// State returns the current draft state.
func (d *Draft) State() DraftState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Draft) setState(s DraftState) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = s
}

// Complete clears the selection and marks the draft committed.
func (d *Draft) Complete() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.quantities = make(map[uuid.UUID]int)
	d.lastStock = make(map[uuid.UUID]int)
	d.adjustments = nil
	d.state = StateCommitted
}
