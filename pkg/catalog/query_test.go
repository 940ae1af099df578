package catalog

import (
	"reflect"
	"testing"
	"time"
)

func day(offset int) time.Time {
	return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func testItems() []Item {
	return []Item{
		{
			ID: 1, Name: "Marble Tile", Slug: "marble-tile", Price: "49.99",
			DateCreated: day(-10),
			Categories:  []ItemCategory{{ID: 5, Slug: "tiles"}, {ID: 12, Slug: "marble"}},
			Attributes: []ItemAttribute{
				{Slug: "material", Options: []string{"Marble"}},
				{Slug: "colour", Options: []string{"White", "Grey"}},
			},
		},
		{
			ID: 2, Name: "Marble", Slug: "marble", Price: "120",
			DateCreated: day(-40),
			Categories:  []ItemCategory{{ID: 12, Slug: "marble"}},
			Attributes: []ItemAttribute{
				{Slug: "material", Options: []string{"Marble"}},
				{Slug: "room-type", Options: []string{"Living Room"}},
			},
		},
		{
			ID: 3, Name: "White Marble", Slug: "white-marble", Price: "85.50",
			DateCreated: day(-100),
			Categories:  []ItemCategory{{ID: 12, Slug: "marble"}},
			Attributes: []ItemAttribute{
				{Slug: "material", Options: []string{"Marble"}},
				{Slug: "colour", Options: []string{"White"}},
			},
		},
		{
			ID: 4, Name: "Oak Plank", Slug: "oak-plank", Price: "15",
			DateCreated: day(-2),
			Categories:  []ItemCategory{{ID: 7, Slug: "wood"}},
			Attributes: []ItemAttribute{
				{Slug: "material", Options: []string{"Oak Wood"}},
				{Slug: "room-type", Options: []string{"Living Room", "Bedroom"}},
			},
		},
		{
			ID: 5, Name: "Slate Tile", Slug: "slate-tile", Price: "",
			DateCreated: day(-70),
			Categories:  []ItemCategory{{ID: 5, Slug: "tiles"}},
			Attributes:  []ItemAttribute{{Slug: "colour", Options: []string{"Grey"}}},
		},
	}
}

func ids(items []Item) []int64 {
	out := make([]int64, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestFilterByCategoryID(t *testing.T) {
	items := testItems()

	got := ids(filterByCategoryID(items, 12))
	want := []int64{1, 2, 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("categoryID=12: got %v, want %v", got, want)
	}

	// Item 1 belongs to {5, 12}; filtering by 7 must exclude it
	for _, it := range filterByCategoryID(items, 7) {
		if it.ID == 1 {
			t.Error("item in categories {5,12} returned for categoryID=7")
		}
	}
}

func TestFilterByAttributes(t *testing.T) {
	items := testItems()

	t.Run("single_key_or_semantics", func(t *testing.T) {
		got := ids(filterByAttributes(items, map[string]string{"colour": "white,grey"}))
		want := []int64{1, 3, 5}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("hyphenated_token_matches_spaced_option", func(t *testing.T) {
		got := ids(filterByAttributes(items, map[string]string{"room-type": "living-room"}))
		want := []int64{2, 4}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("and_across_keys", func(t *testing.T) {
		got := ids(filterByAttributes(items, map[string]string{
			"material": "marble",
			"colour":   "white",
		}))
		want := []int64{1, 3}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("missing_attribute_fails_filter", func(t *testing.T) {
		// Item 5 has no material attribute at all
		for _, it := range filterByAttributes(items, map[string]string{"material": "marble"}) {
			if it.ID == 5 {
				t.Error("item without material attribute passed material filter")
			}
		}
	})

	t.Run("unrecognized_key_ignored", func(t *testing.T) {
		got := filterByAttributes(items, map[string]string{"bogus": "whatever"})
		if len(got) != len(items) {
			t.Errorf("unrecognized filter key changed result: got %d items, want %d", len(got), len(items))
		}
	})

	t.Run("monotonicity", func(t *testing.T) {
		// Adding a recognized key never increases the result count
		base := filterByAttributes(items, map[string]string{"material": "marble"})
		narrowed := filterByAttributes(items, map[string]string{
			"material": "marble",
			"colour":   "white",
		})
		if len(narrowed) > len(base) {
			t.Errorf("adding a filter key increased results: %d > %d", len(narrowed), len(base))
		}
	})
}

func TestSearchItems_Relevance(t *testing.T) {
	// Exact name first, prefix second, alphabetical fallback last
	got := searchItems(testItems(), "marble", "")
	want := []int64{2, 1, 3}
	if !reflect.DeepEqual(ids(got), want) {
		t.Errorf("relevance order: got %v, want %v", ids(got), want)
	}
}

func TestSearchItems(t *testing.T) {
	items := testItems()

	t.Run("matches_slug_too", func(t *testing.T) {
		got := searchItems(items, "oak-plank", "")
		if len(got) != 1 || got[0].ID != 4 {
			t.Errorf("slug search: got %v", ids(got))
		}
	})

	t.Run("case_insensitive", func(t *testing.T) {
		got := searchItems(items, "MARBLE", "")
		if len(got) != 3 {
			t.Errorf("uppercase term: got %d matches, want 3", len(got))
		}
	})

	t.Run("category_restriction", func(t *testing.T) {
		got := searchItems(items, "tile", "tiles")
		want := []int64{1, 5}
		if !reflect.DeepEqual(ids(got), want) {
			t.Errorf("got %v, want %v", ids(got), want)
		}
	})

	t.Run("no_match", func(t *testing.T) {
		if got := searchItems(items, "granite", ""); len(got) != 0 {
			t.Errorf("got %v, want empty", ids(got))
		}
	})
}

func TestSortItems(t *testing.T) {
	items := testItems()

	t.Run("price_asc_missing_is_zero", func(t *testing.T) {
		got := ids(sortItems(items, "price", "asc"))
		want := []int64{5, 4, 1, 3, 2}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("date_desc", func(t *testing.T) {
		got := ids(sortItems(items, "date", "desc"))
		want := []int64{4, 1, 2, 5, 3}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("title_asc", func(t *testing.T) {
		got := sortItems(items, "title", "asc")
		if got[0].Name != "Marble" || got[len(got)-1].Name != "White Marble" {
			t.Errorf("title order wrong: first %q, last %q", got[0].Name, got[len(got)-1].Name)
		}
	})

	t.Run("unknown_orderby_behaves_as_date", func(t *testing.T) {
		unknown := ids(sortItems(items, "banana", "desc"))
		date := ids(sortItems(items, "date", "desc"))
		if !reflect.DeepEqual(unknown, date) {
			t.Errorf("unknown orderby %v != date %v", unknown, date)
		}
	})

	t.Run("input_not_mutated", func(t *testing.T) {
		before := ids(items)
		sortItems(items, "price", "desc")
		if !reflect.DeepEqual(before, ids(items)) {
			t.Error("sortItems mutated its input")
		}
	})
}

func TestFilterNewArrivals(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	cutoff := now.AddDate(0, -2, 0)

	items := []Item{
		{ID: 1, DateCreated: cutoff},                      // exactly at boundary: included
		{ID: 2, DateCreated: cutoff.AddDate(0, 0, -1)},    // one day older: excluded
		{ID: 3, DateCreated: now.AddDate(0, 0, -1)},       // recent
		{ID: 4, DateCreated: cutoff.AddDate(0, 0, 1)},     // just inside
	}

	got := ids(filterNewArrivals(items, now))
	want := []int64{3, 4, 1} // newest first
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestPaginate(t *testing.T) {
	items := testItems()

	t.Run("reconstruction_law", func(t *testing.T) {
		// Concatenating all pages reconstructs the sequence exactly
		for _, perPage := range []int{1, 2, 3, 5, 10} {
			var rebuilt []Item
			_, totalPages := paginate(items, 1, perPage)
			for page := 1; page <= totalPages; page++ {
				pageItems, _ := paginate(items, page, perPage)
				rebuilt = append(rebuilt, pageItems...)
			}
			if !reflect.DeepEqual(ids(rebuilt), ids(items)) {
				t.Errorf("perPage=%d: rebuilt %v, want %v", perPage, ids(rebuilt), ids(items))
			}
		}
	})

	t.Run("total_pages", func(t *testing.T) {
		_, totalPages := paginate(items, 1, 2)
		if totalPages != 3 {
			t.Errorf("totalPages = %d, want 3", totalPages)
		}
	})

	t.Run("out_of_range_page_is_empty", func(t *testing.T) {
		pageItems, totalPages := paginate(items, 99, 2)
		if len(pageItems) != 0 {
			t.Errorf("out-of-range page returned %d items", len(pageItems))
		}
		if totalPages != 3 {
			t.Errorf("totalPages = %d, want 3", totalPages)
		}
	})

	t.Run("page_below_one_is_empty", func(t *testing.T) {
		if pageItems, _ := paginate(items, 0, 2); len(pageItems) != 0 {
			t.Errorf("page 0 returned %d items", len(pageItems))
		}
	})

	t.Run("empty_input", func(t *testing.T) {
		pageItems, totalPages := paginate(nil, 1, 10)
		if len(pageItems) != 0 || totalPages != 0 {
			t.Errorf("empty input: got %d items, %d pages", len(pageItems), totalPages)
		}
	})
}

func TestQueryIdempotence(t *testing.T) {
	items := testItems()
	filters := map[string]string{"material": "marble", "colour": "white,grey"}

	run := func() []int64 {
		filtered := filterByAttributes(items, filters)
		sorted := sortItems(filtered, "price", "desc")
		pageItems, _ := paginate(sorted, 1, 10)
		return ids(pageItems)
	}

	first := run()
	second := run()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("identical query produced different output: %v vs %v", first, second)
	}
}
