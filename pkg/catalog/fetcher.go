package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tilehaus/storefront-api/pkg/woo"
)

// fetchPageSize is the upstream maximum page size.
const fetchPageSize = 100

// Fetcher assembles the full published catalogue by walking the
// upstream product listing page by page.
type Fetcher struct {
	client Upstream
	logger zerolog.Logger
}

// NewFetcher creates a catalogue fetcher.
func NewFetcher(client Upstream) *Fetcher {
	return &Fetcher{
		client: client,
		logger: log.With().Str("component", "catalog-fetcher").Logger(),
	}
}

// FetchAll requests fixed-size pages until the upstream returns an
// empty page. Any single page failure aborts the whole fetch; no
// partial catalogue is ever returned.
func (f *Fetcher) FetchAll(ctx context.Context) ([]woo.Product, error) {
	start := time.Now()

	var all []woo.Product
	for page := 1; ; page++ {
		products, err := f.client.ListProducts(ctx, page, fetchPageSize)
		if err != nil {
			return nil, fmt.Errorf("fetch catalogue page %d: %w", page, err)
		}
		if len(products) == 0 {
			break
		}
		all = append(all, products...)

		f.logger.Debug().
			Int("page", page).
			Int("page_items", len(products)).
			Int("total_items", len(all)).
			Msg("Fetched catalogue page")
	}

	f.logger.Info().
		Int("items", len(all)).
		Dur("duration", time.Since(start)).
		Msg("Catalogue fetch complete")

	return all, nil
}
