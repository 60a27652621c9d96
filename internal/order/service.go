package order

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/overstock-orders/internal/catalog"
	"github.com/noah-isme/overstock-orders/internal/commission"
	"github.com/noah-isme/overstock-orders/internal/events"
	"github.com/noah-isme/overstock-orders/internal/obs"
	"github.com/noah-isme/overstock-orders/internal/pricing"
)

// Store persists committed orders.
type Store interface {
	InsertOrder(ctx context.Context, o *Order) error
	ListOrders(ctx context.Context, limit int) ([]Order, error)
}

// TaskEnqueuer schedules post-commit background work.
type TaskEnqueuer interface {
	EnqueueStockDecrement(ctx context.Context, orderID, productID uuid.UUID, quantity int) error
}

// BuildInput carries the customer fields required to turn a draft into an order.
type BuildInput struct {
	CustomerName  string
	CustomerPhone string
	Basis         pricing.Basis
}

// Service builds order previews from drafts and commits them.
type Service struct {
	catalog catalog.Provider
	store   Store
	bus     *events.Bus
	tasks   TaskEnqueuer
	logger  zerolog.Logger

	stockCheckTimeout time.Duration
	now               func() time.Time
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Catalog           catalog.Provider
	Store             Store
	Bus               *events.Bus
	Tasks             TaskEnqueuer
	Logger            zerolog.Logger
	StockCheckTimeout time.Duration
	Now               func() time.Time
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Catalog == nil {
		return nil, fmt.Errorf("order: catalog provider is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("order: store is required")
	}
	timeout := cfg.StockCheckTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		catalog:           cfg.Catalog,
		store:             cfg.Store,
		bus:               cfg.Bus,
		tasks:             cfg.Tasks,
		logger:            cfg.Logger,
		stockCheckTimeout: timeout,
		now:               now,
	}, nil
}

// Build validates the customer fields and assembles a priced, commissioned
// order from the draft selection. Quantities are priced exactly as selected;
// stock is only authoritative during the commit re-check, so the result is a
// preview until Commit persists it.
func (s *Service) Build(ctx context.Context, draft *Draft, input BuildInput) (*Order, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	selection := draft.Snapshot()
	if len(selection) == 0 {
		return nil, ErrEmptyOrder
	}

	ids := make([]uuid.UUID, 0, len(selection))
	for id := range selection {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	now := s.now()
	eligibleBasis := commission.EligibleBasis(input.Basis)

	var (
		lines        []Line
		pricingLines []pricing.Line
	)
	for _, id := range ids {
		qty := selection[id]
		if qty < 0 {
			return nil, ErrInvalidQuantity
		}
		if qty == 0 {
			continue
		}
		product, err := s.catalog.GetProduct(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("order: load product %s: %w", id, err)
		}

		unitSelected := pricing.UnitFor(product.UnitPrice, product.VATRate, input.Basis)
		eligibleUnit := pricing.UnitFor(product.UnitPrice, product.VATRate, eligibleBasis)
		q64 := int64(qty)
		lines = append(lines, Line{
			ProductID:         product.ID,
			StockCode:         product.StockCode,
			Name:              product.Name,
			Unit:              product.Unit,
			Quantity:          qty,
			UnitPriceNet:      product.UnitPrice,
			VATRate:           product.VATRate,
			UnitPriceSelected: unitSelected,
			LineTotalSelected: pricing.LineTotal(unitSelected, q64),
			EligibleValue:     pricing.LineTotal(eligibleUnit, q64),
			StockAgeDays:      product.StockAgeDays(now),
		})
		pricingLines = append(pricingLines, pricing.Line{
			UnitPriceNet: product.UnitPrice,
			VATRate:      product.VATRate,
			Quantity:     q64,
		})
	}
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}

	totals := pricing.Sum(pricingLines)

	commissionLines := make([]commission.Line, len(lines))
	eligibleValue := decimal.Zero
	for i, line := range lines {
		commissionLines[i] = commission.Line{
			EligibleValue: line.EligibleValue,
			Quantity:      int64(line.Quantity),
			StockAgeDays:  line.StockAgeDays,
		}
		eligibleValue = eligibleValue.Add(line.EligibleValue)
	}
	weightedAge := commission.WeightedStockAge(commissionLines)
	breakdown := commission.Compute(eligibleValue, weightedAge)
	for i, share := range commission.Apportion(breakdown, commissionLines, eligibleValue) {
		lines[i].CommissionShare = share
	}

	draft.setState(StateConfirming)
	return &Order{
		CustomerName:  strings.TrimSpace(input.CustomerName),
		CustomerPhone: strings.TrimSpace(input.CustomerPhone),
		Basis:         input.Basis,
		Lines:         lines,
		Totals:        totals,
		TotalSelected: totals.For(input.Basis),
		EligibleValue: eligibleValue,
		WeightedAge:   weightedAge,
		Commission:    breakdown,
	}, nil
}

// Commit rebuilds the order from the draft, re-checks every requested
// quantity against authoritative stock in parallel, and persists it
// atomically. Any line short on stock aborts the whole commit; stock
// decrements run asynchronously afterwards.
func (s *Service) Commit(ctx context.Context, draft *Draft, input BuildInput) (*Order, error) {
	start := s.now()

	o, err := s.Build(ctx, draft, input)
	if err != nil {
		return nil, err
	}
	draft.setState(StateCommitting)

	if conflicts := s.recheckStock(ctx, o.Lines); len(conflicts) > 0 {
		draft.setState(StateComposing)
		if obs.StockConflictsTotal != nil {
			obs.StockConflictsTotal.Inc()
		}
		return nil, &StockConflictError{Conflicts: conflicts}
	}

	o.ID = uuid.New()
	o.CreatedAt = s.now()
	if err := s.store.InsertOrder(ctx, o); err != nil {
		draft.setState(StateComposing)
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}

	s.emitCommitted(ctx, o)
	s.enqueueDecrements(ctx, o)

	if obs.OrdersCommittedTotal != nil {
		obs.OrdersCommittedTotal.WithLabelValues(string(o.Basis)).Inc()
	}
	if obs.CommitDuration != nil {
		obs.CommitDuration.Observe(float64(s.now().Sub(start)) / float64(time.Millisecond))
	}

	draft.Complete()
	s.logger.Info().
		Str("order_id", o.ID.String()).
		Str("basis", string(o.Basis)).
		Int("lines", len(o.Lines)).
		Str("total", o.TotalSelected.String()).
		Msg("order committed")
	return o, nil
}

// List returns committed orders, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]Order, error) {
	return s.store.ListOrders(ctx, limit)
}

// recheckStock fetches every line's product in parallel under a bounded
// timeout. A fetch failure counts as a conflict; committing on unknown stock
// is worse than asking the customer to retry.
func (s *Service) recheckStock(ctx context.Context, lines []Line) []StockConflict {
	checkCtx, cancel := context.WithTimeout(ctx, s.stockCheckTimeout)
	defer cancel()

	var (
		mu        sync.Mutex
		conflicts []StockConflict
	)
	g, gctx := errgroup.WithContext(checkCtx)
	for _, line := range lines {
		line := line
		g.Go(func() error {
			product, err := s.catalog.GetProduct(gctx, line.ProductID)
			if err != nil {
				mu.Lock()
				conflicts = append(conflicts, StockConflict{
					ProductID: line.ProductID,
					Name:      line.Name,
					Reason:    ConflictCheckFailed,
				})
				mu.Unlock()
				return nil
			}
			if product.Stock < line.Quantity {
				mu.Lock()
				conflicts = append(conflicts, StockConflict{
					ProductID:    line.ProductID,
					Name:         line.Name,
					CurrentStock: product.Stock,
					Reason:       ConflictInsufficient,
				})
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(conflicts, func(i, j int) bool {
		return conflicts[i].ProductID.String() < conflicts[j].ProductID.String()
	})
	return conflicts
}

func (s *Service) emitCommitted(ctx context.Context, o *Order) {
	if s.bus == nil {
		return
	}
	payload := map[string]any{
		"orderId":       o.ID,
		"basis":         o.Basis,
		"totalSelected": o.TotalSelected,
		"lineCount":     len(o.Lines),
	}
	if _, err := s.bus.Emit(ctx, events.TopicOrderCommitted, o.ID, payload); err != nil {
		s.logger.Warn().Err(err).Str("order_id", o.ID.String()).Msg("emit order.committed failed")
	}
}

func (s *Service) enqueueDecrements(ctx context.Context, o *Order) {
	if s.tasks == nil {
		return
	}
	for _, line := range o.Lines {
		if err := s.tasks.EnqueueStockDecrement(ctx, o.ID, line.ProductID, line.Quantity); err != nil {
			s.logger.Error().Err(err).
				Str("order_id", o.ID.String()).
				Str("product_id", line.ProductID.String()).
				Int("quantity", line.Quantity).
				Msg("enqueue stock decrement failed")
		}
	}
}

func validateInput(input BuildInput) error {
	if strings.TrimSpace(input.CustomerName) == "" {
		return ErrMissingCustomerName
	}
	if strings.TrimSpace(input.CustomerPhone) == "" {
		return ErrMissingCustomerPhone
	}
	if !input.Basis.Valid() {
		return ErrMissingPriceBasis
	}
	return nil
}

