package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Defaults applied when a caller passes page / per_page below 1.
const (
	defaultPage    = 1
	defaultPerPage = 12
)

// PagedProducts is the paged result shape shared by the browsing
// endpoints.
type PagedProducts struct {
	Products      []Item `json:"products"`
	TotalProducts int    `json:"total_products"`
	TotalPages    int    `json:"total_pages"`
	Page          int    `json:"page"`
	PerPage       int    `json:"per_page"`
}

// CategoryQuery parameterizes a category listing.
type CategoryQuery struct {
	CategoryID int64
	Page       int
	PerPage    int
	OrderBy    string // "date", "price", "title"
	Order      string // "asc", "desc"
}

// SearchQuery parameterizes a free-text search.
type SearchQuery struct {
	Q        string
	Category string // category slug, optional
	Page     int
	PerPage  int
}

// SearchMeta carries search pagination metadata.
type SearchMeta struct {
	TotalProducts int `json:"total_products"`
	TotalPages    int `json:"total_pages"`
	Page          int `json:"page"`
	PerPage       int `json:"per_page"`
}

// SearchResult is the search response shape.
type SearchResult struct {
	Data []Item     `json:"data"`
	Meta SearchMeta `json:"meta"`
}

// Service is the catalogue façade the HTTP layer talks to. It owns the
// snapshot store, query engine, facet cache, category index and popular
// cache, and applies the per-endpoint degradation policy: browsing
// reads never hard-fail on an upstream or cache hiccup, they degrade
// to an empty result; warm-up-critical reads propagate their errors.
type Service struct {
	products   *Products
	popular    *Popular
	facets     *Facets
	categories *Categories
	store      Store
	logger     zerolog.Logger

	// now is the clock; injectable for tests.
	now func() time.Time
}

// NewService wires the catalogue components over one upstream client
// and one backing store.
func NewService(client Upstream, store Store) *Service {
	fetcher := NewFetcher(client)
	return &Service{
		products:   NewProducts(fetcher, store),
		popular:    NewPopular(client, store),
		facets:     NewFacets(client, store),
		categories: NewCategories(client, store),
		store:      store,
		logger:     log.With().Str("component", "catalog-service").Logger(),
		now:        time.Now,
	}
}

// Categories exposes the category index.
func (s *Service) Categories() *Categories {
	return s.categories
}

// clampPaging applies boundary defaults so the query engine never sees
// page or perPage below 1.
func clampPaging(page, perPage int) (int, int) {
	if page < 1 {
		page = defaultPage
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	return page, perPage
}

// GetFilteredProducts applies the general attribute filter map over the
// snapshot, newest first. Degrades to an empty page on failure.
func (s *Service) GetFilteredProducts(ctx context.Context, filters map[string]string, page, perPage int) PagedProducts {
	page, perPage = clampPaging(page, perPage)

	items, err := s.products.GetAll(ctx, false)
	if err != nil {
		s.logger.Error().Err(err).Msg("Filter query degraded to empty result")
		return emptyPage(page, perPage)
	}

	filtered := filterByAttributes(items, filters)
	sorted := sortItems(filtered, "date", "desc")
	pageItems, totalPages := paginate(sorted, page, perPage)

	return PagedProducts{
		Products:      pageItems,
		TotalProducts: len(sorted),
		TotalPages:    totalPages,
		Page:          page,
		PerPage:       perPage,
	}
}

// GetFilterOptions returns the facet option lists. Errors propagate;
// silently empty filters would mislead the storefront.
func (s *Service) GetFilterOptions(ctx context.Context) (map[string][]FacetOption, error) {
	return s.facets.GetOptions(ctx, false)
}

// FetchProductsByCategory lists a category's items, sorted and paged.
// Degrades to an empty page on upstream or cache failure; a
// non-positive category ID is an InvalidArgument, not a degradation.
func (s *Service) FetchProductsByCategory(ctx context.Context, q CategoryQuery) (PagedProducts, error) {
	if q.CategoryID <= 0 {
		return PagedProducts{}, fmt.Errorf("%w: category id %d", ErrInvalidArgument, q.CategoryID)
	}
	page, perPage := clampPaging(q.Page, q.PerPage)

	items, err := s.products.GetAll(ctx, false)
	if err != nil {
		s.logger.Error().Err(err).Int64("category_id", q.CategoryID).Msg("Category listing degraded to empty result")
		return emptyPage(page, perPage), nil
	}

	filtered := filterByCategoryID(items, q.CategoryID)
	sorted := sortItems(filtered, q.OrderBy, q.Order)
	pageItems, totalPages := paginate(sorted, page, perPage)

	return PagedProducts{
		Products:      pageItems,
		TotalProducts: len(sorted),
		TotalPages:    totalPages,
		Page:          page,
		PerPage:       perPage,
	}, nil
}

// FetchPopularProducts returns the best-sellers list, at most twelve
// items. Errors propagate; this is a warm-up-critical path.
func (s *Service) FetchPopularProducts(ctx context.Context) ([]Item, error) {
	return s.popular.Get(ctx, false)
}

// FetchNewArrivals pages items created in the last two calendar
// months, newest first. Degrades to an empty page on failure.
func (s *Service) FetchNewArrivals(ctx context.Context, page, perPage int) PagedProducts {
	page, perPage = clampPaging(page, perPage)

	items, err := s.products.GetAll(ctx, false)
	if err != nil {
		s.logger.Error().Err(err).Msg("New arrivals degraded to empty result")
		return emptyPage(page, perPage)
	}

	arrivals := filterNewArrivals(items, s.now())
	pageItems, totalPages := paginate(arrivals, page, perPage)

	return PagedProducts{
		Products:      pageItems,
		TotalProducts: len(arrivals),
		TotalPages:    totalPages,
		Page:          page,
		PerPage:       perPage,
	}
}

// SearchProducts runs relevance-ordered free-text search. An empty
// term is an InvalidArgument; upstream or cache failure degrades to an
// empty result with zero counts.
func (s *Service) SearchProducts(ctx context.Context, q SearchQuery) (SearchResult, error) {
	if strings.TrimSpace(q.Q) == "" {
		return SearchResult{}, fmt.Errorf("%w: empty search term", ErrInvalidArgument)
	}
	page, perPage := clampPaging(q.Page, q.PerPage)

	items, err := s.products.GetAll(ctx, false)
	if err != nil {
		s.logger.Error().Err(err).Str("q", q.Q).Msg("Search degraded to empty result")
		return SearchResult{
			Data: []Item{},
			Meta: SearchMeta{Page: page, PerPage: perPage},
		}, nil
	}

	matched := searchItems(items, q.Q, q.Category)
	pageItems, totalPages := paginate(matched, page, perPage)

	return SearchResult{
		Data: pageItems,
		Meta: SearchMeta{
			TotalProducts: len(matched),
			TotalPages:    totalPages,
			Page:          page,
			PerPage:       perPage,
		},
	}, nil
}

// FetchProductBySlug returns a single item by slug, nil when absent.
func (s *Service) FetchProductBySlug(ctx context.Context, slug string) (*Item, error) {
	if slug == "" {
		return nil, fmt.Errorf("%w: empty slug", ErrInvalidArgument)
	}

	items, err := s.products.GetAll(ctx, false)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].Slug == slug {
			return &items[i], nil
		}
	}
	return nil, nil
}

// ForceRefresh rebuilds every cache component through the same paths
// the scheduler and cache-aside misses use. A failing component does
// not stop the others; all failures are joined into the returned error.
func (s *Service) ForceRefresh(ctx context.Context) error {
	var errs []error

	if _, err := s.products.Refresh(ctx); err != nil {
		errs = append(errs, fmt.Errorf("products: %w", err))
	}
	if _, err := s.popular.Refresh(ctx); err != nil {
		errs = append(errs, fmt.Errorf("popular: %w", err))
	}
	if _, err := s.facets.Refresh(ctx); err != nil {
		errs = append(errs, fmt.Errorf("facets: %w", err))
	}
	if _, err := s.categories.Warm(ctx); err != nil {
		errs = append(errs, fmt.Errorf("categories: %w", err))
	}

	return errors.Join(errs...)
}

// ClearAll deletes every key under the catalogue prefixes.
func (s *Service) ClearAll(ctx context.Context) error {
	var errs []error
	for _, pattern := range []string{"catalog:products:*", "catalog:facets:*", "catalog:category:*"} {
		deleted, err := s.store.DeleteByPattern(ctx, pattern)
		if err != nil {
			errs = append(errs, fmt.Errorf("clear %s: %w", pattern, err))
			continue
		}
		s.logger.Info().Str("pattern", pattern).Int("deleted", deleted).Msg("Cache keys cleared")
	}
	return errors.Join(errs...)
}

func emptyPage(page, perPage int) PagedProducts {
	return PagedProducts{
		Products: []Item{},
		Page:     page,
		PerPage:  perPage,
	}
}
