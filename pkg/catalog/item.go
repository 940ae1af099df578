package catalog

import "time"

// Stock status values carried over from the upstream catalogue.
const (
	StockInStock    = "instock"
	StockOutOfStock = "outofstock"
	StockBackorder  = "onbackorder"
)

// Item is the display-ready product projection served to storefront
// clients. It is the only product shape downstream components depend
// on; raw upstream records never leave the transformer.
type Item struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Slug         string          `json:"slug"`
	Permalink    string          `json:"permalink"`
	DateCreated  time.Time       `json:"date_created"`
	DateModified time.Time       `json:"date_modified"`

	// Price fields are decimal strings as delivered upstream.
	// DisplayPrice is the lossy numeric token extracted from the
	// rendered price fragment and is display-only.
	Price        string `json:"price"`
	RegularPrice string `json:"regular_price"`
	SalePrice    string `json:"sale_price"`
	DisplayPrice string `json:"display_price"`

	StockStatus string          `json:"stock_status"`
	Categories  []ItemCategory  `json:"categories"`
	Attributes  []ItemAttribute `json:"attributes"`
	Images      []ItemImage     `json:"images"`
	SocialImage string          `json:"social_image,omitempty"`
}

// ItemCategory is a category membership of an item.
type ItemCategory struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ItemAttribute is an attribute of an item. Options are the
// human-readable term names delivered upstream; matching normalizes
// them at query time.
type ItemAttribute struct {
	Slug    string   `json:"slug"`
	Options []string `json:"options"`
}

// ItemImage is an image reference. The first image of an item is its
// primary image.
type ItemImage struct {
	Src string `json:"src"`
	Alt string `json:"alt,omitempty"`
}

// attribute returns the item's attribute with the given slug, or nil.
func (it *Item) attribute(slug string) *ItemAttribute {
	for i := range it.Attributes {
		if it.Attributes[i].Slug == slug {
			return &it.Attributes[i]
		}
	}
	return nil
}

// inCategoryID reports whether the item belongs to the category.
func (it *Item) inCategoryID(categoryID int64) bool {
	for _, c := range it.Categories {
		if c.ID == categoryID {
			return true
		}
	}
	return false
}

// inCategorySlug reports whether the item belongs to the category.
func (it *Item) inCategorySlug(slug string) bool {
	for _, c := range it.Categories {
		if c.Slug == slug {
			return true
		}
	}
	return false
}
