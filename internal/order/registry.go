package order

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry tracks live drafts and fans external stock changes into each one.
type Registry struct {
	mu     sync.RWMutex
	drafts map[uuid.UUID]*Draft
	now    func() time.Time
}

// NewRegistry creates an empty draft registry.
func NewRegistry(now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{drafts: make(map[uuid.UUID]*Draft), now: now}
}

// Create registers a new empty draft.
func (r *Registry) Create() *Draft {
	d := NewDraft(r.now())
	r.mu.Lock()
	r.drafts[d.ID] = d
	r.mu.Unlock()
	return d
}

// Get returns the draft with the given id, or ErrDraftNotFound.
func (r *Registry) Get(id uuid.UUID) (*Draft, error) {
	r.mu.RLock()
	d, ok := r.drafts[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrDraftNotFound
	}
	return d, nil
}

// Remove drops a draft from the registry.
func (r *Registry) Remove(id uuid.UUID) {
	r.mu.Lock()
	delete(r.drafts, id)
	r.mu.Unlock()
}

// ApplyStockChange pushes a stock change into every live draft and returns
// the adjustments it forced, keyed by draft id.
func (r *Registry) ApplyStockChange(productID uuid.UUID, newStock int) map[uuid.UUID]Adjustment {
	r.mu.RLock()
	drafts := make([]*Draft, 0, len(r.drafts))
	for _, d := range r.drafts {
		drafts = append(drafts, d)
	}
	r.mu.RUnlock()

	adjusted := make(map[uuid.UUID]Adjustment)
	for _, d := range drafts {
		if adj := d.ApplyStockChange(productID, newStock); adj != nil {
			adjusted[d.ID] = *adj
		}
	}
	return adjusted
}
