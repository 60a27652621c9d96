package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Service orchestrates catalog reads, filtering, and caching.
type Service struct {
	provider Provider
	cache    *Cache
	now      func() time.Time
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Provider Provider
	Cache    *Cache
	Now      func() time.Time
}

// ListParams captures filters for product listing.
type ListParams struct {
	Query    string
	Category string
}

// ListItem is a catalog entry enriched with derived fields for callers.
type ListItem struct {
	Product
	StockAgeDays int `json:"stockAgeDays"`
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Provider == nil {
		return nil, fmt.Errorf("catalog: provider is required")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{provider: cfg.Provider, cache: cfg.Cache, now: now}, nil
}

// List returns catalog entries matching the filters, with derived stock age.
// The unfiltered listing is cached; filtered requests always hit the provider.
func (s *Service) List(ctx context.Context, params ListParams) ([]ListItem, error) {
	unfiltered := strings.TrimSpace(params.Query) == "" && strings.TrimSpace(params.Category) == ""
	if unfiltered {
		var cached []Product
		if ok, err := s.cache.GetJSON(ctx, listCacheKey, &cached); err == nil && ok {
			return s.decorate(cached), nil
		}
	}
	products, err := s.provider.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	if unfiltered {
		_ = s.cache.SetJSON(ctx, listCacheKey, products)
		return s.decorate(products), nil
	}
	category := strings.TrimSpace(params.Category)
	query := strings.TrimSpace(params.Query)
	filtered := make([]Product, 0, len(products))
	for _, p := range products {
		if category != "" && p.Category != category {
			continue
		}
		if !matchesQuery(p, query) {
			continue
		}
		filtered = append(filtered, p)
	}
	return s.decorate(filtered), nil
}

// Categories returns the distinct category names present in the catalog.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	products, err := s.provider.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var categories []string
	for _, p := range products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		categories = append(categories, p.Category)
	}
	sort.Strings(categories)
	return categories, nil
}

// InvalidateList drops the cached unfiltered listing.
func (s *Service) InvalidateList(ctx context.Context) {
	_ = s.cache.Invalidate(ctx, listCacheKey)
}

func (s *Service) decorate(products []Product) []ListItem {
	now := s.now()
	items := make([]ListItem, 0, len(products))
	for _, p := range products {
		items = append(items, ListItem{Product: p, StockAgeDays: p.StockAgeDays(now)})
	}
	return items
}
