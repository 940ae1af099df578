package integration

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/tilehaus/storefront-api/internal/testutil"
	"github.com/tilehaus/storefront-api/pkg/cache"
	"github.com/tilehaus/storefront-api/pkg/catalog"
	"github.com/tilehaus/storefront-api/pkg/woo"
)

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		redisClient.Close()
		container.Terminate(ctx)
	}

	return redisClient, cleanup
}

// setupCatalog wires a full service: mock store → client → Redis-backed
// catalogue.
func setupCatalog(t *testing.T, redisClient *redis.Client) (*catalog.Service, *testutil.MockWoo) {
	t.Helper()

	mock := testutil.NewMockWoo()
	t.Cleanup(mock.Close)

	mock.SetProducts([]woo.Product{
		{ID: 1, Name: "Marble Tile", Slug: "marble-tile", Price: "49.99",
			PriceHTML:   `<span class="amount">&pound;49.99</span>`,
			DateCreated: "2025-06-05T10:00:00",
			StockStatus: "instock",
			Categories:  []woo.Category{{ID: 5, Name: "Tiles", Slug: "tiles"}},
			Attributes:  []woo.ProductAttribute{{Name: "Material", Options: []string{"Marble"}}}},
		{ID: 2, Name: "Oak Plank", Slug: "oak-plank", Price: "15.00",
			DateCreated: "2025-06-01T10:00:00",
			StockStatus: "instock",
			Categories:  []woo.Category{{ID: 7, Name: "Wood", Slug: "wood"}},
			Attributes:  []woo.ProductAttribute{{Name: "Material", Options: []string{"Oak Wood"}}}},
		{ID: 3, Name: "Slate Tile", Slug: "slate-tile", Price: "32.00",
			DateCreated: "2025-05-20T10:00:00",
			StockStatus: "outofstock",
			Categories:  []woo.Category{{ID: 5, Name: "Tiles", Slug: "tiles"}},
			Attributes:  []woo.ProductAttribute{{Name: "Material", Options: []string{"Slate"}}}},
	})
	mock.SetCategories([]woo.Category{
		{ID: 5, Name: "Tiles", Slug: "tiles", Count: 2},
		{ID: 7, Name: "Wood", Slug: "wood", Count: 1},
	})
	mock.SetAttributes([]woo.Attribute{
		{ID: 1, Name: "Material", Slug: "pa_material"},
	})
	mock.SetAttributeTerms(1, []woo.AttributeTerm{
		{ID: 11, Name: "Marble", Slug: "marble", Count: 1},
		{ID: 12, Name: "Oak Wood", Slug: "oak-wood", Count: 1},
		{ID: 13, Name: "Slate", Slug: "slate", Count: 1},
	})

	cfg := woo.DefaultConfig(mock.URL(), "ck_test", "cs_test")
	cfg.RateLimit = 1000
	client, err := woo.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	return catalog.NewService(client, cache.NewStore(redisClient)), mock
}

// TestFullCatalogFlow exercises the complete flow: upstream fetch →
// transform → Redis snapshot → query engine → cache hit on re-read.
func TestFullCatalogFlow(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	svc, mock := setupCatalog(t, redisClient)
	ctx := context.Background()

	// Request 1: cache miss fills the snapshot from upstream
	result, err := svc.FetchProductsByCategory(ctx, catalog.CategoryQuery{CategoryID: 5})
	if err != nil {
		t.Fatalf("Request 1 failed: %v", err)
	}
	if result.TotalProducts != 2 {
		t.Errorf("tiles count = %d, want 2", result.TotalProducts)
	}
	fetches := mock.RequestCount("/wp-json/wc/v3/products")

	// Request 2: served from the Redis snapshot, no new upstream call
	if _, err := svc.FetchProductsByCategory(ctx, catalog.CategoryQuery{CategoryID: 7}); err != nil {
		t.Fatalf("Request 2 failed: %v", err)
	}
	if got := mock.RequestCount("/wp-json/wc/v3/products"); got != fetches {
		t.Errorf("second read hit upstream: %d -> %d requests", fetches, got)
	}

	// Display price came through the transform
	item, err := svc.FetchProductBySlug(ctx, "marble-tile")
	if err != nil {
		t.Fatalf("FetchProductBySlug failed: %v", err)
	}
	if item == nil || item.DisplayPrice != "49.99" {
		t.Errorf("item = %+v", item)
	}
}

func TestSnapshotSurvivesUpstreamOutage(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	svc, mock := setupCatalog(t, redisClient)
	ctx := context.Background()

	// Warm the snapshot, then take the upstream down
	if _, err := svc.FetchProductsByCategory(ctx, catalog.CategoryQuery{CategoryID: 5}); err != nil {
		t.Fatalf("warm failed: %v", err)
	}
	mock.FailWith("/wp-json/wc/v3/products", 500)

	result, err := svc.SearchProducts(ctx, catalog.SearchQuery{Q: "tile"})
	if err != nil {
		t.Fatalf("search during outage failed: %v", err)
	}
	if result.Meta.TotalProducts != 2 {
		t.Errorf("cached search results = %d, want 2", result.Meta.TotalProducts)
	}
}

func TestFacetsAndCategories(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	svc, _ := setupCatalog(t, redisClient)
	ctx := context.Background()

	options, err := svc.GetFilterOptions(ctx)
	if err != nil {
		t.Fatalf("GetFilterOptions failed: %v", err)
	}
	if len(options["material"]) != 3 {
		t.Errorf("material options = %+v", options["material"])
	}

	if _, err := svc.Categories().Warm(ctx); err != nil {
		t.Fatalf("category warm failed: %v", err)
	}
	record, err := svc.Categories().GetBySlug(ctx, "tiles")
	if err != nil {
		t.Fatalf("GetBySlug failed: %v", err)
	}
	if record == nil || record.ID != 5 {
		t.Errorf("record = %+v", record)
	}
}

func TestForceRefreshAndClear(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	svc, _ := setupCatalog(t, redisClient)
	ctx := context.Background()

	if err := svc.ForceRefresh(ctx); err != nil {
		t.Fatalf("ForceRefresh failed: %v", err)
	}

	keys, err := redisClient.Keys(ctx, "catalog:*").Result()
	if err != nil {
		t.Fatalf("redis keys: %v", err)
	}
	if len(keys) == 0 {
		t.Fatal("ForceRefresh wrote nothing to Redis")
	}

	if err := svc.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll failed: %v", err)
	}
	keys, err = redisClient.Keys(ctx, "catalog:*").Result()
	if err != nil {
		t.Fatalf("redis keys: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("%d keys survived ClearAll: %v", len(keys), keys)
	}
}
