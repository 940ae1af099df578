package woo

// Product is the raw WooCommerce product record as returned by the
// products listing endpoint. Only the fields the catalogue core consumes
// are decoded; the rest of the (large) upstream payload is dropped at
// the JSON layer.
type Product struct {
	ID           int64              `json:"id"`
	Name         string             `json:"name"`
	Slug         string             `json:"slug"`
	Permalink    string             `json:"permalink"`
	DateCreated  string             `json:"date_created"`
	DateModified string             `json:"date_modified"`
	Price        string             `json:"price"`
	RegularPrice string             `json:"regular_price"`
	SalePrice    string             `json:"sale_price"`
	PriceHTML    string             `json:"price_html"`
	StockStatus  string             `json:"stock_status"`
	Categories   []Category         `json:"categories"`
	Attributes   []ProductAttribute `json:"attributes"`
	Images       []Image            `json:"images"`
	YoastHead    *YoastHead         `json:"yoast_head_json"`
}

// Category is a product category as embedded in a product record and as
// returned by the categories listing endpoint.
type Category struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}

// ProductAttribute is an attribute as embedded in a product record.
// Options carries human-readable term names, not slugs.
type ProductAttribute struct {
	ID      int64    `json:"id"`
	Name    string   `json:"name"`
	Options []string `json:"options"`
}

// Attribute is a global attribute definition from the attributes
// listing endpoint.
type Attribute struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// AttributeTerm is a single term of a global attribute.
type AttributeTerm struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}

// Image is a product image reference.
type Image struct {
	ID  int64  `json:"id"`
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// YoastHead carries the SEO metadata fragment embedded by Yoast.
// Only the social image is used.
type YoastHead struct {
	OGImage []OGImage `json:"og_image"`
}

// OGImage is a single og:image entry.
type OGImage struct {
	URL string `json:"url"`
}
