package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/tilehaus/storefront-api/internal/testutil"
	"github.com/tilehaus/storefront-api/pkg/woo"
)

func facetUpstream() *stubUpstream {
	return &stubUpstream{
		listAttributes: func(context.Context) ([]woo.Attribute, error) {
			return []woo.Attribute{
				{ID: 1, Name: "Material", Slug: "pa_material"},
				{ID: 2, Name: "Room Type", Slug: "pa_room-type"},
				{ID: 3, Name: "Colour", Slug: "pa_colour"},
				{ID: 4, Name: "Finish", Slug: "pa_finish"},
				{ID: 9, Name: "Brand", Slug: "pa_brand"}, // not filterable
			}, nil
		},
		listAttributeTerms: func(_ context.Context, attributeID int64) ([]woo.AttributeTerm, error) {
			if attributeID == 3 {
				return nil, errUpstreamDown
			}
			return []woo.AttributeTerm{
				{ID: attributeID * 10, Name: "Term", Slug: "term", Count: 3},
			}, nil
		},
	}
}

func TestGetOptions(t *testing.T) {
	facets := NewFacets(facetUpstream(), testutil.NewMemStore())

	options, err := facets.GetOptions(context.Background(), false)
	if err != nil {
		t.Fatalf("GetOptions failed: %v", err)
	}

	// Exactly the allow-list, nothing else
	if len(options) != len(filterableAttributes) {
		t.Errorf("got %d facets, want %d", len(options), len(filterableAttributes))
	}
	if _, ok := options["brand"]; ok {
		t.Error("non-filterable attribute leaked into facet set")
	}

	if len(options["material"]) != 1 {
		t.Errorf("material options = %v", options["material"])
	}
	// Colour's term fetch fails: empty list, not a whole-set failure
	if got := options["colour"]; got == nil || len(got) != 0 {
		t.Errorf("failed attribute should degrade to empty list, got %v", got)
	}
}

func TestGetOptions_CacheAside(t *testing.T) {
	attributeCalls := 0
	upstream := facetUpstream()
	base := upstream.listAttributes
	upstream.listAttributes = func(ctx context.Context) ([]woo.Attribute, error) {
		attributeCalls++
		return base(ctx)
	}
	facets := NewFacets(upstream, testutil.NewMemStore())
	ctx := context.Background()

	if _, err := facets.GetOptions(ctx, false); err != nil {
		t.Fatalf("GetOptions failed: %v", err)
	}
	if _, err := facets.GetOptions(ctx, false); err != nil {
		t.Fatalf("GetOptions failed: %v", err)
	}
	if attributeCalls != 1 {
		t.Errorf("warm read hit upstream: %d calls, want 1", attributeCalls)
	}

	if _, err := facets.GetOptions(ctx, true); err != nil {
		t.Fatalf("forced GetOptions failed: %v", err)
	}
	if attributeCalls != 2 {
		t.Errorf("forced refresh: %d calls, want 2", attributeCalls)
	}
}

func TestGetOptions_AttributeListFailurePropagates(t *testing.T) {
	facets := NewFacets(&stubUpstream{}, testutil.NewMemStore())

	if _, err := facets.GetOptions(context.Background(), false); !errors.Is(err, errUpstreamDown) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestGetOptions_MissingAttributeDefinition(t *testing.T) {
	upstream := facetUpstream()
	upstream.listAttributes = func(context.Context) ([]woo.Attribute, error) {
		// Finish is not defined upstream at all
		return []woo.Attribute{
			{ID: 1, Name: "Material", Slug: "pa_material"},
		}, nil
	}
	facets := NewFacets(upstream, testutil.NewMemStore())

	options, err := facets.GetOptions(context.Background(), false)
	if err != nil {
		t.Fatalf("GetOptions failed: %v", err)
	}
	if got := options["finish"]; got == nil || len(got) != 0 {
		t.Errorf("undefined attribute should yield empty list, got %v", got)
	}
}
