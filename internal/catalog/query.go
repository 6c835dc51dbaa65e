package catalog

import (
	"sort"
	"time"

	"storefront-core/internal/models"
	"storefront-core/internal/util"
)

// SortOrder selects how a filtered product list is ordered.
type SortOrder string

// Sort orders. SortFeatured is the default: catalog order, untouched.
const (
	SortFeatured  SortOrder = "featured"
	SortPriceAsc  SortOrder = "price-asc"
	SortPriceDesc SortOrder = "price-desc"
	SortRating    SortOrder = "rating"
	SortNewest    SortOrder = "newest"
)

// PriceRange is an inclusive price filter: Min <= price <= Max.
type PriceRange struct {
	Min int64
	Max int64
}

// Criteria describes one catalog query. Zero-value fields mean "no filter
// on that dimension". Within a dimension the filter is an OR-selection;
// across dimensions filters combine with AND.
type Criteria struct {
	PriceRange *PriceRange
	Brands     []string
	Categories []string
	SortBy     SortOrder
}

// FilterAndSort runs the query pipeline: price range, then brand selection,
// then category selection, then ordering. The input slice is never mutated.
func FilterAndSort(products []models.Product, criteria Criteria) []models.Product {
	start := time.Now()
	defer func() {
		util.CatalogQueryLatency.Observe(time.Since(start).Seconds())
	}()

	result := make([]models.Product, 0, len(products))
	for _, p := range products {
		if !matches(p, criteria) {
			continue
		}
		result = append(result, p)
	}

	switch criteria.SortBy {
	case SortPriceAsc:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].Price < result[j].Price
		})
	case SortPriceDesc:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].Price > result[j].Price
		})
	case SortRating:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].Rating > result[j].Rating
		})
	case SortNewest:
		// Stable partition: new arrivals first, relative order preserved
		// within both groups.
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].NewArrival && !result[j].NewArrival
		})
	}

	return result
}

func matches(p models.Product, criteria Criteria) bool {
	if r := criteria.PriceRange; r != nil {
		if p.Price < r.Min || p.Price > r.Max {
			return false
		}
	}
	if len(criteria.Brands) > 0 && !contains(criteria.Brands, p.Brand) {
		return false
	}
	if len(criteria.Categories) > 0 && !contains(criteria.Categories, p.Category) {
		return false
	}
	return true
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
