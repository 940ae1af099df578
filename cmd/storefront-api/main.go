package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/tilehaus/storefront-api/pkg/cache"
	"github.com/tilehaus/storefront-api/pkg/catalog"
	"github.com/tilehaus/storefront-api/pkg/logging"
	"github.com/tilehaus/storefront-api/pkg/scheduler"
	"github.com/tilehaus/storefront-api/pkg/woo"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(getEnv("LOG_LEVEL", "info")),
		Pretty: getEnv("LOG_PRETTY", "false") == "true",
		Output: os.Stderr,
	})

	redisURL := getEnv("REDIS_URL", "localhost:6379")
	port := getEnv("PORT", "8080")
	storeURL := getEnv("WOO_BASE_URL", "")
	consumerKey := getEnv("WOO_CONSUMER_KEY", "")
	consumerSecret := getEnv("WOO_CONSUMER_SECRET", "")
	refreshSpec := getEnv("REFRESH_SCHEDULE", scheduler.DefaultSpec)

	redisClient := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})

	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Str("addr", redisURL).Msg("Failed to connect to Redis")
	}
	logger.Info().Str("addr", redisURL).Msg("Connected to Redis")

	wooClient, err := woo.New(woo.DefaultConfig(storeURL, consumerKey, consumerSecret))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create WooCommerce client")
	}

	store := cache.NewStore(redisClient)
	svc := catalog.NewService(wooClient, store)

	sched, err := scheduler.New(svc, refreshSpec)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create refresh scheduler")
	}
	if err := sched.Start(ctx); err != nil {
		// Serve cold rather than refuse to start; cache-aside reads
		// will repopulate on demand.
		logger.Error().Err(err).Msg("Startup cache rebuild failed, serving cold")
	}
	defer sched.Stop()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /api/products", filteredProductsHandler(svc))
	mux.HandleFunc("GET /api/products/search", searchHandler(svc))
	mux.HandleFunc("GET /api/products/popular", popularHandler(svc))
	mux.HandleFunc("GET /api/products/new-arrivals", newArrivalsHandler(svc))
	mux.HandleFunc("GET /api/products/category/{id}", categoryProductsHandler(svc))
	mux.HandleFunc("GET /api/products/{slug}", productBySlugHandler(svc))
	mux.HandleFunc("GET /api/filters", filterOptionsHandler(svc))
	mux.HandleFunc("GET /api/categories", categoriesHandler(svc))
	mux.HandleFunc("GET /api/categories/{slug}", categoryBySlugHandler(svc))
	mux.HandleFunc("POST /api/admin/refresh", refreshHandler(svc, logger))
	mux.HandleFunc("POST /api/admin/clear", clearHandler(svc))

	addr := ":" + port
	logger.Info().Str("addr", addr).Msg("Starting storefront API server")

	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// paging reads page / per_page query params; the catalogue service
// clamps anything below 1.
func paging(r *http.Request) (page, perPage int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ = strconv.Atoi(r.URL.Query().Get("per_page"))
	return page, perPage
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	if errors.Is(err, catalog.ErrInvalidArgument) {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func filteredProductsHandler(svc *catalog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters := make(map[string]string)
		for key, values := range r.URL.Query() {
			if key == "page" || key == "per_page" {
				continue
			}
			filters[key] = strings.Join(values, ",")
		}
		page, perPage := paging(r)
		writeJSON(w, http.StatusOK, svc.GetFilteredProducts(r.Context(), filters, page, perPage))
	}
}

func searchHandler(svc *catalog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, perPage := paging(r)
		result, err := svc.SearchProducts(r.Context(), catalog.SearchQuery{
			Q:        r.URL.Query().Get("q"),
			Category: r.URL.Query().Get("category"),
			Page:     page,
			PerPage:  perPage,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func popularHandler(svc *catalog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.FetchPopularProducts(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func newArrivalsHandler(svc *catalog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, perPage := paging(r)
		writeJSON(w, http.StatusOK, svc.FetchNewArrivals(r.Context(), page, perPage))
	}
}

func categoryProductsHandler(svc *catalog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		page, perPage := paging(r)
		result, err := svc.FetchProductsByCategory(r.Context(), catalog.CategoryQuery{
			CategoryID: categoryID,
			Page:       page,
			PerPage:    perPage,
			OrderBy:    r.URL.Query().Get("orderby"),
			Order:      r.URL.Query().Get("order"),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func productBySlugHandler(svc *catalog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, err := svc.FetchProductBySlug(r.Context(), r.PathValue("slug"))
		if err != nil {
			writeError(w, err)
			return
		}
		if item == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
			return
		}
		writeJSON(w, http.StatusOK, item)
	}
}

func filterOptionsHandler(svc *catalog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		options, err := svc.GetFilterOptions(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, options)
	}
}

func categoriesHandler(svc *catalog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := svc.Categories().GetAll(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, records)
	}
}

func categoryBySlugHandler(svc *catalog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		record, err := svc.Categories().GetBySlug(r.Context(), r.PathValue("slug"))
		if err != nil {
			writeError(w, err)
			return
		}
		if record == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "category not found"})
			return
		}
		writeJSON(w, http.StatusOK, record)
	}
}

func refreshHandler(svc *catalog.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Refresh in the background; a full rebuild exceeds sane
		// request timeouts on large catalogues.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()
			if err := svc.ForceRefresh(ctx); err != nil {
				logger.Error().Err(err).Msg("Admin-triggered refresh failed")
			}
		}()
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "refresh started"})
	}
}

func clearHandler(svc *catalog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.ClearAll(r.Context()); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "caches cleared"})
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
