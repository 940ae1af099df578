package catalog

import (
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/tilehaus/storefront-api/pkg/woo"
)

var (
	markupTags = regexp.MustCompile(`<[^>]*>`)
	priceToken = regexp.MustCompile(`[\d,]+\.?\d*`)
)

// Transform maps raw upstream products to display-ready items. It is a
// pure function and never fails per item: unparsable sub-fields degrade
// to empty defaults, the item itself is always kept.
func Transform(products []woo.Product) []Item {
	items := make([]Item, 0, len(products))
	for _, p := range products {
		items = append(items, transformProduct(p))
	}
	return items
}

func transformProduct(p woo.Product) Item {
	item := Item{
		ID:           p.ID,
		Name:         p.Name,
		Slug:         p.Slug,
		Permalink:    p.Permalink,
		DateCreated:  parseUpstreamTime(p.DateCreated),
		DateModified: parseUpstreamTime(p.DateModified),
		Price:        p.Price,
		RegularPrice: p.RegularPrice,
		SalePrice:    p.SalePrice,
		DisplayPrice: extractDisplayPrice(p.PriceHTML),
		StockStatus:  p.StockStatus,
		Categories:   make([]ItemCategory, 0, len(p.Categories)),
		Attributes:   make([]ItemAttribute, 0, len(p.Attributes)),
		Images:       make([]ItemImage, 0, len(p.Images)),
	}

	for _, c := range p.Categories {
		item.Categories = append(item.Categories, ItemCategory{
			ID:   c.ID,
			Name: c.Name,
			Slug: c.Slug,
		})
	}

	for _, a := range p.Attributes {
		options := a.Options
		if options == nil {
			options = []string{}
		}
		item.Attributes = append(item.Attributes, ItemAttribute{
			Slug:    Slugify(a.Name),
			Options: options,
		})
	}

	for _, img := range p.Images {
		item.Images = append(item.Images, ItemImage{
			Src: img.Src,
			Alt: img.Alt,
		})
	}

	if p.YoastHead != nil && len(p.YoastHead.OGImage) > 0 {
		item.SocialImage = p.YoastHead.OGImage[0].URL
	}

	return item
}

// extractDisplayPrice strips markup from a rendered price fragment and
// returns its first numeric token, or "" when none is found. The parse
// is intentionally lossy; the authoritative prices are the separate
// decimal-string fields.
func extractDisplayPrice(priceHTML string) string {
	if priceHTML == "" {
		return ""
	}
	text := markupTags.ReplaceAllString(priceHTML, "")
	text = html.UnescapeString(text)
	return priceToken.FindString(text)
}

// parseUpstreamTime parses WooCommerce timestamps. Upstream delivers
// local store time without a zone suffix; RFC3339 is accepted as a
// fallback. Unparsable input yields the zero time.
func parseUpstreamTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse("2006-01-02T15:04:05", value); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	return time.Time{}
}

// Slugify lowercases a name and replaces whitespace runs with hyphens,
// matching how the upstream derives attribute slugs from names.
func Slugify(name string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(name)))
	return strings.Join(fields, "-")
}
