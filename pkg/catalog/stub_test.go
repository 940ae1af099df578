package catalog

import (
	"context"
	"errors"

	"github.com/tilehaus/storefront-api/pkg/woo"
)

// errUpstreamDown simulates a hard upstream outage in failure-path tests.
var errUpstreamDown = errors.New("upstream down")

// stubUpstream implements Upstream through function fields so tests can
// script each endpoint without going through HTTP or retry backoff.
type stubUpstream struct {
	listProducts       func(ctx context.Context, page, perPage int) ([]woo.Product, error)
	listByPopularity   func(ctx context.Context, limit int) ([]woo.Product, error)
	listCategories     func(ctx context.Context, page, perPage int) ([]woo.Category, error)
	getCategoryBySlug  func(ctx context.Context, slug string) (*woo.Category, error)
	listAttributes     func(ctx context.Context) ([]woo.Attribute, error)
	listAttributeTerms func(ctx context.Context, attributeID int64) ([]woo.AttributeTerm, error)
}

func (s *stubUpstream) ListProducts(ctx context.Context, page, perPage int) ([]woo.Product, error) {
	if s.listProducts == nil {
		return nil, errUpstreamDown
	}
	return s.listProducts(ctx, page, perPage)
}

func (s *stubUpstream) ListProductsByPopularity(ctx context.Context, limit int) ([]woo.Product, error) {
	if s.listByPopularity == nil {
		return nil, errUpstreamDown
	}
	return s.listByPopularity(ctx, limit)
}

func (s *stubUpstream) ListCategories(ctx context.Context, page, perPage int) ([]woo.Category, error) {
	if s.listCategories == nil {
		return nil, errUpstreamDown
	}
	return s.listCategories(ctx, page, perPage)
}

func (s *stubUpstream) GetCategoryBySlug(ctx context.Context, slug string) (*woo.Category, error) {
	if s.getCategoryBySlug == nil {
		return nil, errUpstreamDown
	}
	return s.getCategoryBySlug(ctx, slug)
}

func (s *stubUpstream) ListAttributes(ctx context.Context) ([]woo.Attribute, error) {
	if s.listAttributes == nil {
		return nil, errUpstreamDown
	}
	return s.listAttributes(ctx)
}

func (s *stubUpstream) ListAttributeTerms(ctx context.Context, attributeID int64) ([]woo.AttributeTerm, error) {
	if s.listAttributeTerms == nil {
		return nil, errUpstreamDown
	}
	return s.listAttributeTerms(ctx, attributeID)
}

// pagedProducts scripts ListProducts over a fixed product list with
// real pagination, counting calls.
func pagedProducts(products []woo.Product, calls *int) func(context.Context, int, int) ([]woo.Product, error) {
	return func(_ context.Context, page, perPage int) ([]woo.Product, error) {
		if calls != nil {
			*calls++
		}
		start := (page - 1) * perPage
		if start >= len(products) {
			return []woo.Product{}, nil
		}
		end := start + perPage
		if end > len(products) {
			end = len(products)
		}
		return products[start:end], nil
	}
}
