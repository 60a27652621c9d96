package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/overstock-orders/internal/catalog"
)

type stubProvider struct {
	products  []catalog.Product
	listCalls int
}

func (s *stubProvider) ListProducts(context.Context) ([]catalog.Product, error) {
	s.listCalls++
	return s.products, nil
}

func (s *stubProvider) GetProduct(_ context.Context, id uuid.UUID) (catalog.Product, error) {
	for _, p := range s.products {
		if p.ID == id {
			return p, nil
		}
	}
	return catalog.Product{}, catalog.ErrNotFound
}

func (s *stubProvider) DecrementStock(context.Context, uuid.UUID, int) error {
	return nil
}

func newRedisCache(t *testing.T) (*catalog.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return catalog.NewCache(client, time.Minute), mr
}

func sampleProducts() []catalog.Product {
	now := time.Now()
	return []catalog.Product{
		{
			ID:        uuid.New(),
			StockCode: "KTL-1",
			Name:      "Su Isıtıcısı",
			Category:  "mutfak",
			Unit:      "adet",
			UnitPrice: decimal.RequireFromString("450"),
			VATRate:   decimal.RequireFromString("18"),
			Stock:     12,
			EnteredAt: now.Add(-100 * 24 * time.Hour),
		},
		{
			ID:        uuid.New(),
			StockCode: "HTR-7",
			Name:      "Elektrikli Isıtıcı",
			Category:  "isitma",
			Unit:      "adet",
			UnitPrice: decimal.RequireFromString("900"),
			VATRate:   decimal.RequireFromString("18"),
			Stock:     3,
			EnteredAt: now.Add(-10 * 24 * time.Hour),
		},
	}
}

func TestListCachesUnfilteredListing(t *testing.T) {
	provider := &stubProvider{products: sampleProducts()}
	cache, _ := newRedisCache(t)
	svc, err := catalog.NewService(catalog.ServiceConfig{Provider: provider, Cache: cache})
	require.NoError(t, err)

	first, err := svc.List(context.Background(), catalog.ListParams{})
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.Equal(t, 1, provider.listCalls)

	second, err := svc.List(context.Background(), catalog.ListParams{})
	require.NoError(t, err)
	require.Len(t, second, 2)
	require.Equal(t, 1, provider.listCalls, "cached listing must not hit the provider")
}

func TestListFilteredBypassesCache(t *testing.T) {
	provider := &stubProvider{products: sampleProducts()}
	cache, _ := newRedisCache(t)
	svc, err := catalog.NewService(catalog.ServiceConfig{Provider: provider, Cache: cache})
	require.NoError(t, err)

	items, err := svc.List(context.Background(), catalog.ListParams{Query: "isitici"})
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, 1, provider.listCalls)

	_, err = svc.List(context.Background(), catalog.ListParams{Query: "isitici"})
	require.NoError(t, err)
	require.Equal(t, 2, provider.listCalls, "filtered listings always hit the provider")
}

func TestListFiltersByCategoryAndQuery(t *testing.T) {
	provider := &stubProvider{products: sampleProducts()}
	svc, err := catalog.NewService(catalog.ServiceConfig{Provider: provider})
	require.NoError(t, err)

	items, err := svc.List(context.Background(), catalog.ListParams{Category: "mutfak"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "KTL-1", items[0].StockCode)

	items, err = svc.List(context.Background(), catalog.ListParams{Category: "mutfak", Query: "elektrik"})
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestListDecoratesStockAge(t *testing.T) {
	provider := &stubProvider{products: sampleProducts()}
	svc, err := catalog.NewService(catalog.ServiceConfig{Provider: provider})
	require.NoError(t, err)

	items, err := svc.List(context.Background(), catalog.ListParams{})
	require.NoError(t, err)
	byCode := make(map[string]int)
	for _, item := range items {
		byCode[item.StockCode] = item.StockAgeDays
	}
	require.Equal(t, 100, byCode["KTL-1"])
	require.Equal(t, 10, byCode["HTR-7"])
}

func TestInvalidateListDropsCacheEntry(t *testing.T) {
	provider := &stubProvider{products: sampleProducts()}
	cache, _ := newRedisCache(t)
	svc, err := catalog.NewService(catalog.ServiceConfig{Provider: provider, Cache: cache})
	require.NoError(t, err)

	_, err = svc.List(context.Background(), catalog.ListParams{})
	require.NoError(t, err)
	require.Equal(t, 1, provider.listCalls)

	svc.InvalidateList(context.Background())

	_, err = svc.List(context.Background(), catalog.ListParams{})
	require.NoError(t, err)
	require.Equal(t, 2, provider.listCalls)
}

func TestCategoriesAreDistinctAndSorted(t *testing.T) {
	products := sampleProducts()
	products = append(products, catalog.Product{
		ID:       uuid.New(),
		Name:     "Tencere",
		Category: "mutfak",
	})
	provider := &stubProvider{products: products}
	svc, err := catalog.NewService(catalog.ServiceConfig{Provider: provider})
	require.NoError(t, err)

	categories, err := svc.Categories(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"isitma", "mutfak"}, categories)
}
