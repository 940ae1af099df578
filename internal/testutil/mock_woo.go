// Package testutil provides testing utilities for the storefront API.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"

	"github.com/goccy/go-json"

	"github.com/tilehaus/storefront-api/pkg/woo"
)

// MockWoo is a configurable mock WooCommerce store for testing. It
// serves the REST v3 endpoints the catalogue core consumes, with real
// pagination over fixture data.
type MockWoo struct {
	server *httptest.Server

	mu         sync.RWMutex
	products   []woo.Product
	categories []woo.Category
	attributes []woo.Attribute
	terms      map[int64][]woo.AttributeTerm

	// failStatus, when non-zero, makes the paths in failPaths answer
	// with that status instead of data.
	failStatus int
	failPaths  map[string]bool

	// loopCategories makes the category listing return the same first
	// page forever, simulating non-advancing upstream pagination.
	loopCategories bool

	requestCounts map[string]int
}

// NewMockWoo creates a mock store with empty fixtures.
func NewMockWoo() *MockWoo {
	m := &MockWoo{
		terms:         make(map[int64][]woo.AttributeTerm),
		failPaths:     make(map[string]bool),
		requestCounts: make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/wp-json/wc/v3/products", m.handleProducts)
	mux.HandleFunc("/wp-json/wc/v3/products/categories", m.handleCategories)
	mux.HandleFunc("/wp-json/wc/v3/products/attributes", m.handleAttributes)
	mux.HandleFunc("/wp-json/wc/v3/products/attributes/", m.handleAttributeTerms)

	m.server = httptest.NewServer(mux)
	return m
}

// URL returns the mock store URL.
func (m *MockWoo) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockWoo) Close() {
	m.server.Close()
}

// SetProducts replaces the product fixtures.
func (m *MockWoo) SetProducts(products []woo.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = products
}

// SetCategories replaces the category fixtures.
func (m *MockWoo) SetCategories(categories []woo.Category) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories = categories
}

// SetAttributes replaces the attribute fixtures.
func (m *MockWoo) SetAttributes(attributes []woo.Attribute) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attributes = attributes
}

// SetAttributeTerms sets the term fixtures of one attribute.
func (m *MockWoo) SetAttributeTerms(attributeID int64, terms []woo.AttributeTerm) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.terms[attributeID] = terms
}

// FailWith makes a path answer with an error status.
func (m *MockWoo) FailWith(path string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failStatus = status
	m.failPaths[path] = true
}

// LoopCategories makes category pagination stop advancing.
func (m *MockWoo) LoopCategories() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loopCategories = true
}

// RequestCount returns how many requests a path received.
func (m *MockWoo) RequestCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCounts[path]
}

// Reset clears all request counters.
func (m *MockWoo) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCounts = make(map[string]int)
}

func (m *MockWoo) track(r *http.Request) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCounts[r.URL.Path]++
	return m.failPaths[r.URL.Path]
}

func (m *MockWoo) fail(w http.ResponseWriter) {
	m.mu.RLock()
	status := m.failStatus
	m.mu.RUnlock()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"code":"internal_server_error","message":"mock failure"}`))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	data, _ := json.Marshal(v)
	w.Write(data)
}

func pageParams(r *http.Request) (page, perPage int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ = strconv.Atoi(r.URL.Query().Get("per_page"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	return page, perPage
}

func (m *MockWoo) handleProducts(w http.ResponseWriter, r *http.Request) {
	if m.track(r) {
		m.fail(w)
		return
	}

	m.mu.RLock()
	products := make([]woo.Product, len(m.products))
	copy(products, m.products)
	m.mu.RUnlock()

	page, perPage := pageParams(r)

	if r.URL.Query().Get("orderby") == "popularity" {
		if len(products) > perPage {
			products = products[:perPage]
		}
		writeJSON(w, products)
		return
	}

	start := (page - 1) * perPage
	if start >= len(products) {
		writeJSON(w, []woo.Product{})
		return
	}
	end := start + perPage
	if end > len(products) {
		end = len(products)
	}
	w.Header().Set("X-WP-Total", strconv.Itoa(len(products)))
	writeJSON(w, products[start:end])
}

func (m *MockWoo) handleCategories(w http.ResponseWriter, r *http.Request) {
	if m.track(r) {
		m.fail(w)
		return
	}

	m.mu.RLock()
	categories := make([]woo.Category, len(m.categories))
	copy(categories, m.categories)
	looping := m.loopCategories
	m.mu.RUnlock()

	if slug := r.URL.Query().Get("slug"); slug != "" {
		match := []woo.Category{}
		for _, c := range categories {
			if c.Slug == slug {
				match = append(match, c)
			}
		}
		writeJSON(w, match)
		return
	}

	page, perPage := pageParams(r)
	if looping {
		page = 1
	}

	start := (page - 1) * perPage
	if start >= len(categories) {
		writeJSON(w, []woo.Category{})
		return
	}
	end := start + perPage
	if end > len(categories) {
		end = len(categories)
	}
	writeJSON(w, categories[start:end])
}

func (m *MockWoo) handleAttributes(w http.ResponseWriter, r *http.Request) {
	if m.track(r) {
		m.fail(w)
		return
	}

	m.mu.RLock()
	attributes := make([]woo.Attribute, len(m.attributes))
	copy(attributes, m.attributes)
	m.mu.RUnlock()

	writeJSON(w, attributes)
}

func (m *MockWoo) handleAttributeTerms(w http.ResponseWriter, r *http.Request) {
	if m.track(r) {
		m.fail(w)
		return
	}

	// Path shape: /wp-json/wc/v3/products/attributes/{id}/terms
	var attributeID int64
	path := r.URL.Path
	for i := len("/wp-json/wc/v3/products/attributes/"); i < len(path); i++ {
		if path[i] < '0' || path[i] > '9' {
			break
		}
		attributeID = attributeID*10 + int64(path[i]-'0')
	}

	m.mu.RLock()
	terms := m.terms[attributeID]
	m.mu.RUnlock()

	if terms == nil {
		terms = []woo.AttributeTerm{}
	}
	writeJSON(w, terms)
}
