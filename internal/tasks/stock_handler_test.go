package tasks_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/overstock-orders/internal/catalog"
	"github.com/noah-isme/overstock-orders/internal/tasks"
)

type stubCatalog struct {
	mu         sync.Mutex
	product    catalog.Product
	missing    bool
	decErr     error
	decrements []int
}

func (s *stubCatalog) ListProducts(context.Context) ([]catalog.Product, error) {
	return []catalog.Product{s.product}, nil
}

func (s *stubCatalog) GetProduct(_ context.Context, id uuid.UUID) (catalog.Product, error) {
	if s.missing || id != s.product.ID {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return s.product, nil
}

func (s *stubCatalog) DecrementStock(_ context.Context, id uuid.UUID, amount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.missing || id != s.product.ID {
		return catalog.ErrNotFound
	}
	if s.decErr != nil {
		return s.decErr
	}
	s.decrements = append(s.decrements, amount)
	return nil
}

func sampleTask(t *testing.T, productID uuid.UUID, quantity int) *asynq.Task {
	t.Helper()
	task, err := tasks.NewStockDecrementTask(uuid.New(), productID, quantity)
	require.NoError(t, err)
	return task
}

func TestProcessTaskDecrementsStock(t *testing.T) {
	product := catalog.Product{
		ID:        uuid.New(),
		StockCode: "KTL-1",
		Name:      "kettle",
		UnitPrice: decimal.RequireFromString("100"),
		VATRate:   decimal.RequireFromString("18"),
		Stock:     10,
		EnteredAt: time.Now(),
	}
	cat := &stubCatalog{product: product}
	handler := tasks.StockHandler{Catalog: cat, Logger: zerolog.Nop()}

	err := handler.ProcessTask(context.Background(), sampleTask(t, product.ID, 3))
	require.NoError(t, err)
	require.Equal(t, []int{3}, cat.decrements)
}

func TestProcessTaskUnknownProductIsTerminal(t *testing.T) {
	cat := &stubCatalog{missing: true}
	handler := tasks.StockHandler{Catalog: cat, Logger: zerolog.Nop()}

	err := handler.ProcessTask(context.Background(), sampleTask(t, uuid.New(), 3))
	require.Error(t, err)
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestProcessTaskTransientFailureIsRetryable(t *testing.T) {
	product := catalog.Product{ID: uuid.New(), Stock: 10}
	cat := &stubCatalog{product: product, decErr: errors.New("connection reset")}
	handler := tasks.StockHandler{Catalog: cat, Logger: zerolog.Nop()}

	err := handler.ProcessTask(context.Background(), sampleTask(t, product.ID, 3))
	require.Error(t, err)
	require.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestProcessTaskMalformedPayloadIsTerminal(t *testing.T) {
	handler := tasks.StockHandler{Catalog: &stubCatalog{}, Logger: zerolog.Nop()}
	task := asynq.NewTask(tasks.TypeStockDecrement, []byte("{broken"))

	err := handler.ProcessTask(context.Background(), task)
	require.Error(t, err)
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestEnqueueStockDecrementSkipsNonPositiveQuantity(t *testing.T) {
	// A nil client would panic if the enqueue were attempted.
	enqueuer := tasks.Enqueuer{}
	require.NoError(t, enqueuer.EnqueueStockDecrement(context.Background(), uuid.New(), uuid.New(), 0))
	require.NoError(t, enqueuer.EnqueueStockDecrement(context.Background(), uuid.New(), uuid.New(), -2))
}
