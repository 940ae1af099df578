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
	productsKey = "catalog:products:all"

	// snapshotTTL bounds how stale the catalogue may get before the
	// next read repopulates it.
	snapshotTTL = 24 * time.Hour
)

// snapshot is the serialized form of a full catalogue snapshot.
type snapshot struct {
	Items    []Item    `json:"items"`
	CachedAt time.Time `json:"cached_at"`
}

// Products is the catalogue snapshot store: one wholesale, TTL-bounded
// copy of the full transformed catalogue under a single key.
type Products struct {
	fetcher *Fetcher
	store   Store
	group   singleflight.Group
	logger  zerolog.Logger
}

// NewProducts creates the snapshot store.
func NewProducts(fetcher *Fetcher, store Store) *Products {
	return &Products{
		fetcher: fetcher,
		store:   store,
		logger:  log.With().Str("component", "catalog-snapshot").Logger(),
	}
}

// GetAll returns the full catalogue, cache-aside. With forceRefresh
// false a live snapshot is served without upstream I/O; otherwise the
// catalogue is refetched, transformed and stored wholesale. On fetch
// failure the prior snapshot (if any) is left untouched and the error
// propagates.
func (p *Products) GetAll(ctx context.Context, forceRefresh bool) ([]Item, error) {
	if !forceRefresh {
		if items, ok := p.cached(ctx); ok {
			return items, nil
		}
	}
	return p.refresh(ctx)
}

// Refresh forces a wholesale rebuild of the snapshot.
func (p *Products) Refresh(ctx context.Context) ([]Item, error) {
	return p.refresh(ctx)
}

// cached loads the current snapshot. Store errors are treated as a
// miss; Redis expires the key for us so a present blob is live.
func (p *Products) cached(ctx context.Context) ([]Item, bool) {
	data, err := p.store.Get(ctx, productsKey)
	if err != nil {
		return nil, false
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		p.logger.Warn().Err(err).Msg("Discarding undecodable snapshot")
		return nil, false
	}
	return snap.Items, true
}

// refresh rebuilds the snapshot. Concurrent refreshes are collapsed
// into a single upstream fetch; every waiter receives the same result.
func (p *Products) refresh(ctx context.Context) ([]Item, error) {
	result, err, _ := p.group.Do(productsKey, func() (any, error) {
		raw, err := p.fetcher.FetchAll(ctx)
		if err != nil {
			return nil, err
		}
		items := Transform(raw)
		p.persist(ctx, items)
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]Item), nil
}

// persist writes the snapshot. Write failures are logged and ignored;
// the fresh in-memory result is still served.
func (p *Products) persist(ctx context.Context, items []Item) {
	data, err := json.Marshal(snapshot{Items: items, CachedAt: time.Now()})
	if err != nil {
		p.logger.Error().Err(err).Msg("Failed to encode snapshot")
		return
	}
	if err := p.store.Set(ctx, productsKey, data, snapshotTTL); err != nil {
		p.logger.Warn().Err(err).Msg("Failed to persist snapshot")
		return
	}
	p.logger.Info().
		Int("items", len(items)).
		Dur("ttl", snapshotTTL).
		Msg("Catalogue snapshot persisted")
}
