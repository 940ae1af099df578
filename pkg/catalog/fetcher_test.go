package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/tilehaus/storefront-api/pkg/woo"
)

func manyProducts(n int) []woo.Product {
	products := make([]woo.Product, n)
	for i := range products {
		products[i] = woo.Product{ID: int64(i + 1), Slug: "p", Name: "P"}
	}
	return products
}

func TestFetchAll_PaginatesToCompletion(t *testing.T) {
	calls := 0
	upstream := &stubUpstream{listProducts: pagedProducts(manyProducts(250), &calls)}

	got, err := NewFetcher(upstream).FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if len(got) != 250 {
		t.Errorf("got %d products, want 250", len(got))
	}
	// 100-item pages: three full-or-partial pages plus the empty page
	// that terminates pagination
	if calls != 4 {
		t.Errorf("upstream called %d times, want 4", calls)
	}
}

func TestFetchAll_EmptyCatalogue(t *testing.T) {
	upstream := &stubUpstream{listProducts: pagedProducts(nil, nil)}

	got, err := NewFetcher(upstream).FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d products, want 0", len(got))
	}
}

func TestFetchAll_PageFailureAbortsWholeFetch(t *testing.T) {
	upstream := &stubUpstream{
		listProducts: func(_ context.Context, page, perPage int) ([]woo.Product, error) {
			if page == 2 {
				return nil, errUpstreamDown
			}
			return manyProducts(perPage), nil
		},
	}

	got, err := NewFetcher(upstream).FetchAll(context.Background())
	if !errors.Is(err, errUpstreamDown) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if got != nil {
		t.Errorf("partial result returned on failure: %d products", len(got))
	}
}
