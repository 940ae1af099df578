package catalog

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// filterableAttributes is the fixed allow-list of attribute slugs the
// filter endpoint recognizes. Filter keys outside this list are
// ignored, not rejected.
var filterableAttributes = []string{"material", "room-type", "colour", "finish"}

// titleCollator provides locale-aware ordering for title sorts.
// collate.Collator is not safe for concurrent use, so compares are
// serialized by sortItems taking it per call.
func titleCollator() *collate.Collator {
	return collate.New(language.English, collate.IgnoreCase)
}

// isFilterableAttribute reports whether slug is in the allow-list.
func isFilterableAttribute(slug string) bool {
	for _, s := range filterableAttributes {
		if s == slug {
			return true
		}
	}
	return false
}

// filterByCategoryID keeps items belonging to the category.
func filterByCategoryID(items []Item, categoryID int64) []Item {
	filtered := make([]Item, 0, len(items))
	for _, it := range items {
		if it.inCategoryID(categoryID) {
			filtered = append(filtered, it)
		}
	}
	return filtered
}

// filterByAttributes applies the general filter map: AND across
// recognized keys, OR across a key's comma-separated tokens. Matching
// is case-insensitive against option names, accepting either the plain
// lowercase form or the lowercase hyphenated form. Items lacking a
// filtered attribute entirely fail that filter.
func filterByAttributes(items []Item, filters map[string]string) []Item {
	type tokenSet map[string]struct{}
	active := make(map[string]tokenSet)
	for key, value := range filters {
		if !isFilterableAttribute(key) {
			continue
		}
		tokens := make(tokenSet)
		for _, tok := range strings.Split(value, ",") {
			tok = strings.ToLower(strings.TrimSpace(tok))
			if tok != "" {
				tokens[tok] = struct{}{}
			}
		}
		if len(tokens) > 0 {
			active[key] = tokens
		}
	}
	if len(active) == 0 {
		return items
	}

	filtered := make([]Item, 0, len(items))
	for _, it := range items {
		ok := true
		for slug, tokens := range active {
			attr := it.attribute(slug)
			if attr == nil || !attributeMatches(attr, tokens) {
				ok = false
				break
			}
		}
		if ok {
			filtered = append(filtered, it)
		}
	}
	return filtered
}

// attributeMatches reports whether any option of the attribute matches
// any requested token, in lowercase or lowercase-hyphenated form.
func attributeMatches(attr *ItemAttribute, tokens map[string]struct{}) bool {
	for _, opt := range attr.Options {
		lower := strings.ToLower(opt)
		hyphenated := strings.ReplaceAll(lower, " ", "-")
		if _, ok := tokens[lower]; ok {
			return true
		}
		if _, ok := tokens[hyphenated]; ok {
			return true
		}
	}
	return false
}

// searchItems performs case-insensitive substring search on name or
// slug, optionally restricted to a category slug, and orders matches by
// relevance: exact name match, then name-starts-with-term, then
// alphabetical by name. The comparator is a stable total order over the
// matched set.
func searchItems(items []Item, term, categorySlug string) []Item {
	needle := strings.ToLower(strings.TrimSpace(term))

	matched := make([]Item, 0, len(items))
	for _, it := range items {
		if categorySlug != "" && !it.inCategorySlug(categorySlug) {
			continue
		}
		name := strings.ToLower(it.Name)
		slug := strings.ToLower(it.Slug)
		if strings.Contains(name, needle) || strings.Contains(slug, needle) {
			matched = append(matched, it)
		}
	}

	rank := func(it Item) int {
		name := strings.ToLower(it.Name)
		switch {
		case name == needle:
			return 0
		case strings.HasPrefix(name, needle):
			return 1
		default:
			return 2
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		ri, rj := rank(matched[i]), rank(matched[j])
		if ri != rj {
			return ri < rj
		}
		return strings.ToLower(matched[i].Name) < strings.ToLower(matched[j].Name)
	})
	return matched
}

// filterNewArrivals keeps items created within the last two calendar
// months relative to now, newest first. AddDate's normalizing month
// subtraction defines the boundary.
func filterNewArrivals(items []Item, now time.Time) []Item {
	cutoff := now.AddDate(0, -2, 0)

	arrivals := make([]Item, 0, len(items))
	for _, it := range items {
		if !it.DateCreated.Before(cutoff) {
			arrivals = append(arrivals, it)
		}
	}
	sort.SliceStable(arrivals, func(i, j int) bool {
		return arrivals[i].DateCreated.After(arrivals[j].DateCreated)
	})
	return arrivals
}

// sortItems orders a copy of items by orderBy ("date", "price",
// "title") and order ("asc", "desc"). Unknown orderBy values behave as
// date; anything but "asc" means descending. Prices compare as parsed
// floats with missing treated as zero; dates with the zero time; titles
// with English collation.
func sortItems(items []Item, orderBy, order string) []Item {
	sorted := make([]Item, len(items))
	copy(sorted, items)

	ascending := strings.EqualFold(order, "asc")

	var less func(a, b Item) bool
	switch strings.ToLower(orderBy) {
	case "price":
		less = func(a, b Item) bool {
			return priceValue(a) < priceValue(b)
		}
	case "title":
		collator := titleCollator()
		less = func(a, b Item) bool {
			return collator.CompareString(a.Name, b.Name) < 0
		}
	default:
		// "date" and anything unrecognized
		less = func(a, b Item) bool {
			return a.DateCreated.Before(b.DateCreated)
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		if ascending {
			return less(sorted[i], sorted[j])
		}
		return less(sorted[j], sorted[i])
	})
	return sorted
}

// priceValue parses an item's price for sorting. Missing or unparsable
// prices sort as zero.
func priceValue(it Item) float64 {
	if it.Price == "" {
		return 0
	}
	v, err := strconv.ParseFloat(it.Price, 64)
	if err != nil {
		return 0
	}
	return v
}

// paginate slices a 1-indexed page out of items. Out-of-range pages
// yield an empty slice, never an error. totalPages is ceil(len/perPage).
func paginate(items []Item, page, perPage int) (pageItems []Item, totalPages int) {
	if perPage <= 0 {
		return []Item{}, 0
	}
	total := len(items)
	totalPages = (total + perPage - 1) / perPage

	start := (page - 1) * perPage
	if page < 1 || start >= total {
		return []Item{}, totalPages
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return items[start:end], totalPages
}
