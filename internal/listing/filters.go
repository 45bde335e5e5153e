package listing

import (
	"net/url"
	"strings"

	"github.com/lankamarket/lankamarket-api/internal/catalog"
)

// Type selects which halves of the catalog a listing query covers
type Type string

const (
	TypeAll      Type = "all"
	TypeProducts Type = "products"
	TypeServices Type = "services"
)

// AllCategories matches every category
const AllCategories = "all"

func (t Type) Valid() bool {
	return t == TypeAll || t == TypeProducts || t == TypeServices
}

func (t Type) includesProducts() bool { return t == TypeAll || t == TypeProducts }
func (t Type) includesServices() bool { return t == TypeAll || t == TypeServices }

// Filters is the browse state of the listings page
type Filters struct {
	Type     Type         `json:"type"`
	Category string       `json:"category"`
	Sort     catalog.Sort `json:"sort"`
}

// DefaultFilters shows everything, newest first
func DefaultFilters() Filters {
	return Filters{Type: TypeAll, Category: AllCategories, Sort: catalog.DefaultSort}
}

// ParseFilters reads filters from a query string. Missing or unknown values
// fall back to their defaults.
func ParseFilters(values url.Values) Filters {
	f := DefaultFilters()

	if t := Type(strings.TrimSpace(values.Get("type"))); t.Valid() {
		f.Type = t
	}
	if c := strings.TrimSpace(values.Get("category")); c != "" {
		f.Category = c
	}
	if s := catalog.Sort(strings.TrimSpace(values.Get("sort"))); s.Valid() {
		f.Sort = s
	}

	return f
}

// Encode writes the non-default filters as a query string with keys in the
// order type, category, sort. Default filters encode to "".
func (f Filters) Encode() string {
	var parts []string
	if f.Type != "" && f.Type != TypeAll {
		parts = append(parts, "type="+url.QueryEscape(string(f.Type)))
	}
	if f.Category != "" && f.Category != AllCategories {
		parts = append(parts, "category="+url.QueryEscape(f.Category))
	}
	if f.Sort != "" && f.Sort != catalog.DefaultSort {
		parts = append(parts, "sort="+url.QueryEscape(string(f.Sort)))
	}
	return strings.Join(parts, "&")
}
