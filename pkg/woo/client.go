// Package woo provides the WooCommerce REST v3 client with request
// pacing, retries, and error classification.
package woo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// apiBasePath is the WooCommerce REST v3 prefix under the store URL.
const apiBasePath = "/wp-json/wc/v3"

// Client is the WooCommerce API client.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the store root, e.g. "https://shop.example.com".
	BaseURL string

	// ConsumerKey / ConsumerSecret authenticate against the REST API.
	ConsumerKey    string
	ConsumerSecret string

	// UserAgent header sent with every request.
	UserAgent string

	// RateLimit is the maximum request rate per second against the store.
	RateLimit float64

	// Timeout per HTTP request.
	Timeout time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(baseURL, consumerKey, consumerSecret string) Config {
	return Config{
		BaseURL:        baseURL,
		ConsumerKey:    consumerKey,
		ConsumerSecret: consumerSecret,
		UserAgent:      "storefront-api/1.0",
		RateLimit:      10,
		Timeout:        30 * time.Second,
	}
}

// New creates a new WooCommerce client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if cfg.ConsumerKey == "" || cfg.ConsumerSecret == "" {
		return nil, fmt.Errorf("consumer key and secret are required")
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 10
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	logger := log.With().Str("component", "woo-client").Logger()

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		config:  cfg,
		logger:  logger,
	}, nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// get performs a paced, retried GET against an API path and decodes the
// JSON body into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := apiBasePath + path

	startTime := time.Now()
	defer func() {
		wooRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrContextCancelled, err)
	}

	u, err := url.Parse(strings.TrimRight(c.config.BaseURL, "/") + endpoint)
	if err != nil {
		return fmt.Errorf("parse upstream URL: %w", err)
	}
	q := u.Query()
	for key, values := range query {
		for _, value := range values {
			q.Add(key, value)
		}
	}
	q.Set("consumer_key", c.config.ConsumerKey)
	q.Set("consumer_secret", c.config.ConsumerSecret)
	u.RawQuery = q.Encode()

	c.logger.Debug().
		Str("endpoint", endpoint).
		Msg("Executing WooCommerce request")

	var body []byte

	retryErr := retryWithBackoff(ctx, func() error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if reqErr != nil {
			return fmt.Errorf("create request: %w", reqErr)
		}
		req.Header.Set("User-Agent", c.config.UserAgent)
		req.Header.Set("Accept", "application/json")

		resp, reqErr := c.httpClient.Do(req)
		if reqErr != nil {
			c.logger.Error().Err(reqErr).Str("endpoint", endpoint).Msg("HTTP request failed")
			wooErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			wooRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
			return &APIError{
				ErrorClass: ErrorClassNetwork,
				Endpoint:   endpoint,
				Message:    "request failed",
				Err:        reqErr,
			}
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			errClass := classify(resp.StatusCode, nil)
			wooErrorsTotal.WithLabelValues(string(errClass)).Inc()
			wooRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

			c.logger.Warn().
				Str("endpoint", endpoint).
				Int("status", resp.StatusCode).
				Str("error_class", string(errClass)).
				Msg("WooCommerce request error")

			return &APIError{
				StatusCode: resp.StatusCode,
				ErrorClass: errClass,
				Endpoint:   endpoint,
				Message:    resp.Status,
			}
		}

		body, reqErr = io.ReadAll(resp.Body)
		if reqErr != nil {
			wooErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			return &APIError{
				ErrorClass: ErrorClassNetwork,
				Endpoint:   endpoint,
				Message:    "read response body",
				Err:        reqErr,
			}
		}

		wooRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()
		return nil
	}, classifyErr)

	if retryErr != nil {
		return retryErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// classifyErr extracts the error class from an APIError, defaulting to
// network for anything unrecognized.
func classifyErr(err error) ErrorClass {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorClass
	}
	return ErrorClassNetwork
}

// ListProducts fetches a single page of published products.
// An empty slice signals end of pagination.
func (c *Client) ListProducts(ctx context.Context, page, perPage int) ([]Product, error) {
	query := url.Values{}
	query.Set("status", "publish")
	query.Set("per_page", strconv.Itoa(perPage))
	query.Set("page", strconv.Itoa(page))

	var products []Product
	if err := c.get(ctx, "/products", query, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// ListProductsByPopularity fetches the top products by total sales.
func (c *Client) ListProductsByPopularity(ctx context.Context, limit int) ([]Product, error) {
	query := url.Values{}
	query.Set("status", "publish")
	query.Set("orderby", "popularity")
	query.Set("per_page", strconv.Itoa(limit))

	var products []Product
	if err := c.get(ctx, "/products", query, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// ListCategories fetches a single page of product categories.
func (c *Client) ListCategories(ctx context.Context, page, perPage int) ([]Category, error) {
	query := url.Values{}
	query.Set("per_page", strconv.Itoa(perPage))
	query.Set("page", strconv.Itoa(page))

	var categories []Category
	if err := c.get(ctx, "/products/categories", query, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// GetCategoryBySlug resolves a single category by its slug.
// Returns nil when the slug is unknown upstream.
func (c *Client) GetCategoryBySlug(ctx context.Context, slug string) (*Category, error) {
	query := url.Values{}
	query.Set("slug", slug)

	var categories []Category
	if err := c.get(ctx, "/products/categories", query, &categories); err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return nil, nil
	}
	return &categories[0], nil
}

// ListAttributes fetches all global product attributes.
func (c *Client) ListAttributes(ctx context.Context) ([]Attribute, error) {
	var attributes []Attribute
	if err := c.get(ctx, "/products/attributes", nil, &attributes); err != nil {
		return nil, err
	}
	return attributes, nil
}

// ListAttributeTerms fetches the full term list of a global attribute.
func (c *Client) ListAttributeTerms(ctx context.Context, attributeID int64) ([]AttributeTerm, error) {
	query := url.Values{}
	query.Set("per_page", "100")

	var terms []AttributeTerm
	path := fmt.Sprintf("/products/attributes/%d/terms", attributeID)
	if err := c.get(ctx, path, query, &terms); err != nil {
		return nil, err
	}
	return terms, nil
}
