package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/tilehaus/storefront-api/pkg/woo"
)

const (
	facetsKey = "catalog:facets:options"
	facetsTTL = 24 * time.Hour
)

// FacetOption is a single selectable option of a filterable attribute,
// used to build filter UIs.
type FacetOption struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}

// Facets caches the option lists of the filterable attributes. Its
// lifecycle is independent of the catalogue snapshot; facets may lag
// the catalogue and that is acceptable, they are advisory.
type Facets struct {
	client Upstream
	store  Store
	group  singleflight.Group
	logger zerolog.Logger
}

// NewFacets creates the facet cache.
func NewFacets(client Upstream, store Store) *Facets {
	return &Facets{
		client: client,
		store:  store,
		logger: log.With().Str("component", "catalog-facets").Logger(),
	}
}

// GetOptions returns option lists for the filterable attribute
// allow-list, cache-aside with a 24h TTL. A lookup failure for an
// individual attribute degrades that attribute to an empty list; only
// a failure to list the attribute definitions at all propagates.
func (f *Facets) GetOptions(ctx context.Context, forceRefresh bool) (map[string][]FacetOption, error) {
	if !forceRefresh {
		if data, err := f.store.Get(ctx, facetsKey); err == nil {
			var options map[string][]FacetOption
			if decodeErr := json.Unmarshal(data, &options); decodeErr != nil {
				f.logger.Warn().Err(decodeErr).Msg("Discarding undecodable facet cache")
			} else {
				return options, nil
			}
		}
	}
	return f.refresh(ctx)
}

// Refresh forces a rebuild of the facet option cache.
func (f *Facets) Refresh(ctx context.Context) (map[string][]FacetOption, error) {
	return f.refresh(ctx)
}

func (f *Facets) refresh(ctx context.Context) (map[string][]FacetOption, error) {
	result, err, _ := f.group.Do(facetsKey, func() (any, error) {
		attributes, err := f.client.ListAttributes(ctx)
		if err != nil {
			return nil, err
		}

		options := make(map[string][]FacetOption, len(filterableAttributes))
		for _, slug := range filterableAttributes {
			options[slug] = f.fetchOptions(ctx, attributes, slug)
		}

		if data, err := json.Marshal(options); err == nil {
			if err := f.store.Set(ctx, facetsKey, data, facetsTTL); err != nil {
				f.logger.Warn().Err(err).Msg("Failed to persist facet options")
			}
		}
		return options, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(map[string][]FacetOption), nil
}

// fetchOptions resolves one allow-listed attribute and fetches its
// terms. Any failure yields an empty list so the remaining facets
// still build.
func (f *Facets) fetchOptions(ctx context.Context, attributes []woo.Attribute, slug string) []FacetOption {
	var attributeID int64
	for _, a := range attributes {
		if normalizeAttributeSlug(a.Slug) == slug {
			attributeID = a.ID
			break
		}
	}
	if attributeID == 0 {
		f.logger.Warn().Str("attribute", slug).Msg("Filterable attribute not defined upstream")
		return []FacetOption{}
	}

	terms, err := f.client.ListAttributeTerms(ctx, attributeID)
	if err != nil {
		f.logger.Warn().Err(err).Str("attribute", slug).Msg("Failed to fetch attribute terms")
		return []FacetOption{}
	}

	options := make([]FacetOption, 0, len(terms))
	for _, t := range terms {
		options = append(options, FacetOption{
			ID:    t.ID,
			Name:  t.Name,
			Slug:  t.Slug,
			Count: t.Count,
		})
	}
	return options
}

// normalizeAttributeSlug strips WooCommerce's global-attribute prefix
// so "pa_material" matches the allow-list entry "material".
func normalizeAttributeSlug(slug string) string {
	return strings.TrimPrefix(strings.ToLower(slug), "pa_")
}
