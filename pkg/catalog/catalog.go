// Package catalog implements the in-memory product catalogue:
// TTL-bounded snapshots of the upstream WooCommerce catalogue held in
// Redis, with filtering, search, sorting and pagination executed
// in-process over the snapshot instead of being delegated upstream.
package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/tilehaus/storefront-api/pkg/woo"
)

// ErrInvalidArgument indicates malformed query input reaching the
// query engine. It is signaled synchronously, never swallowed.
var ErrInvalidArgument = errors.New("invalid argument")

// Store is the subset of the backing key-value store the catalogue
// components use. *cache.Store satisfies it.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Keys(ctx context.Context, pattern string) ([]string, error)
	MGet(ctx context.Context, keys ...string) ([][]byte, error)
	DeleteByPattern(ctx context.Context, pattern string) (int, error)
}

// Upstream is the subset of the WooCommerce client the catalogue
// components use. *woo.Client satisfies it.
type Upstream interface {
	ListProducts(ctx context.Context, page, perPage int) ([]woo.Product, error)
	ListProductsByPopularity(ctx context.Context, limit int) ([]woo.Product, error)
	ListCategories(ctx context.Context, page, perPage int) ([]woo.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*woo.Category, error)
	ListAttributes(ctx context.Context) ([]woo.Attribute, error)
	ListAttributeTerms(ctx context.Context, attributeID int64) ([]woo.AttributeTerm, error)
}
