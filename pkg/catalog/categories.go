package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tilehaus/storefront-api/pkg/cache"
)

const (
	categoryKeyPrefix = "catalog:category:"
	categoryTTL       = 24 * time.Hour
)

// CategoryRecord is the cached category metadata, one Redis key per
// slug so lookups never need the full catalogue snapshot.
type CategoryRecord struct {
	ID    int64  `json:"id"`
	Slug  string `json:"slug"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Categories is the keyed category index.
type Categories struct {
	client Upstream
	store  Store
	logger zerolog.Logger
}

// NewCategories creates the category index.
func NewCategories(client Upstream, store Store) *Categories {
	return &Categories{
		client: client,
		store:  store,
		logger: log.With().Str("component", "catalog-categories").Logger(),
	}
}

// Warm performs a paginated upstream fetch writing one cache entry per
// category and returns how many were written. If a page opens with a
// category ID already seen, upstream pagination is not advancing and
// the warm-up halts early instead of looping forever.
func (c *Categories) Warm(ctx context.Context) (int, error) {
	seen := make(map[int64]struct{})
	written := 0

	for page := 1; ; page++ {
		categories, err := c.client.ListCategories(ctx, page, fetchPageSize)
		if err != nil {
			return written, err
		}
		if len(categories) == 0 {
			break
		}
		if _, dup := seen[categories[0].ID]; dup {
			c.logger.Warn().
				Int("page", page).
				Int64("first_id", categories[0].ID).
				Msg("Upstream category pagination not advancing, stopping warm-up")
			break
		}

		for _, cat := range categories {
			seen[cat.ID] = struct{}{}
			record := CategoryRecord{
				ID:    cat.ID,
				Slug:  cat.Slug,
				Name:  cat.Name,
				Count: cat.Count,
			}
			if err := c.put(ctx, record); err != nil {
				c.logger.Warn().Err(err).Str("slug", cat.Slug).Msg("Failed to cache category")
				continue
			}
			written++
		}
	}

	c.logger.Info().Int("categories", written).Msg("Category index warmed")
	return written, nil
}

// GetAll reads every currently cached category record. It performs no
// upstream call; an unwarmed index simply yields an empty result.
func (c *Categories) GetAll(ctx context.Context) ([]CategoryRecord, error) {
	keys, err := c.store.Keys(ctx, categoryKeyPrefix+"*")
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return []CategoryRecord{}, nil
	}

	blobs, err := c.store.MGet(ctx, keys...)
	if err != nil {
		return nil, err
	}

	records := make([]CategoryRecord, 0, len(blobs))
	for i, blob := range blobs {
		if blob == nil {
			continue
		}
		var record CategoryRecord
		if err := json.Unmarshal(blob, &record); err != nil {
			c.logger.Warn().Err(err).Str("key", keys[i]).Msg("Discarding undecodable category record")
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// GetBySlug looks a category up cache-aside: cached record if present,
// otherwise an upstream resolve that repopulates the key. Returns nil
// when the slug is unknown.
func (c *Categories) GetBySlug(ctx context.Context, slug string) (*CategoryRecord, error) {
	data, err := c.store.Get(ctx, categoryKeyPrefix+slug)
	if err == nil {
		var record CategoryRecord
		if err := json.Unmarshal(data, &record); err == nil {
			return &record, nil
		}
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		c.logger.Warn().Err(err).Str("slug", slug).Msg("Category cache read failed, resolving upstream")
	}

	category, err := c.client.GetCategoryBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, nil
	}

	record := CategoryRecord{
		ID:    category.ID,
		Slug:  category.Slug,
		Name:  category.Name,
		Count: category.Count,
	}
	if err := c.put(ctx, record); err != nil {
		c.logger.Warn().Err(err).Str("slug", slug).Msg("Failed to cache category")
	}
	return &record, nil
}

func (c *Categories) put(ctx context.Context, record CategoryRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, categoryKeyPrefix+record.Slug, data, categoryTTL)
}
