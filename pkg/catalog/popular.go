package catalog

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const (
	popularKey = "catalog:products:popular"
	popularTTL = 24 * time.Hour

	// popularLimit caps the popular-products list.
	popularLimit = 12
)

// Popular caches the short best-sellers list. It is filled straight
// from the upstream popularity ordering rather than computed from the
// catalogue snapshot.
type Popular struct {
	client Upstream
	store  Store
	group  singleflight.Group
	logger zerolog.Logger
}

// NewPopular creates the popular-products cache.
func NewPopular(client Upstream, store Store) *Popular {
	return &Popular{
		client: client,
		store:  store,
		logger: log.With().Str("component", "catalog-popular").Logger(),
	}
}

// Get returns the popular list, cache-aside with a 24h TTL. At most
// twelve items, each trimmed to its first image.
func (p *Popular) Get(ctx context.Context, forceRefresh bool) ([]Item, error) {
	if !forceRefresh {
		if data, err := p.store.Get(ctx, popularKey); err == nil {
			var items []Item
			if decodeErr := json.Unmarshal(data, &items); decodeErr != nil {
				p.logger.Warn().Err(decodeErr).Msg("Discarding undecodable popular cache")
			} else {
				return items, nil
			}
		}
	}
	return p.refresh(ctx)
}

// Refresh forces a rebuild of the popular list.
func (p *Popular) Refresh(ctx context.Context) ([]Item, error) {
	return p.refresh(ctx)
}

func (p *Popular) refresh(ctx context.Context) ([]Item, error) {
	result, err, _ := p.group.Do(popularKey, func() (any, error) {
		raw, err := p.client.ListProductsByPopularity(ctx, popularLimit)
		if err != nil {
			return nil, err
		}

		items := Transform(raw)
		if len(items) > popularLimit {
			items = items[:popularLimit]
		}
		for i := range items {
			if len(items[i].Images) > 1 {
				items[i].Images = items[i].Images[:1]
			}
		}

		if data, err := json.Marshal(items); err == nil {
			if err := p.store.Set(ctx, popularKey, data, popularTTL); err != nil {
				p.logger.Warn().Err(err).Msg("Failed to persist popular products")
			}
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]Item), nil
}
