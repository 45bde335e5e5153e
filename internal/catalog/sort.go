package catalog

import "errors"

var ErrInvalidSort = errors.New("sort must be one of newest, oldest, price-low, price-high, popular")

// Sort is the user facing listing order
type Sort string

const (
	SortNewest    Sort = "newest"
	SortOldest    Sort = "oldest"
	SortPriceLow  Sort = "price-low"
	SortPriceHigh Sort = "price-high"
	SortPopular   Sort = "popular"
)

// DefaultSort applies when no sort is requested
const DefaultSort = SortNewest

func (s Sort) Valid() bool {
	switch s {
	case SortNewest, SortOldest, SortPriceLow, SortPriceHigh, SortPopular:
		return true
	}
	return false
}

// ParseSort accepts an empty string as DefaultSort
func ParseSort(raw string) (Sort, error) {
	if raw == "" {
		return DefaultSort, nil
	}
	s := Sort(raw)
	if !s.Valid() {
		return "", ErrInvalidSort
	}
	return s, nil
}

// OrderField is a sortable listing attribute. The price field maps to a
// different column per table.
type OrderField int

const (
	OrderCreatedAt OrderField = iota
	OrderPrice
	OrderViews
)

// Order is a store level order clause
type Order struct {
	Field OrderField
	Desc  bool
}

// Order translates s into the store order clause. Unknown values fall back
// to newest first.
func (s Sort) Order() Order {
	switch s {
	case SortOldest:
		return Order{Field: OrderCreatedAt}
	case SortPriceLow:
		return Order{Field: OrderPrice}
	case SortPriceHigh:
		return Order{Field: OrderPrice, Desc: true}
	case SortPopular:
		return Order{Field: OrderViews, Desc: true}
	default:
		return Order{Field: OrderCreatedAt, Desc: true}
	}
}

// Query narrows a product or service listing. An empty Category or "all"
// matches every category.
type Query struct {
	Category string
	Order    Order
}

func (q Query) categorySlug() string {
	if q.Category == "all" {
		return ""
	}
	return q.Category
}
