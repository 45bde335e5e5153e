package ui

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lankamarket/lankamarket-api/internal/catalog"
	"github.com/lankamarket/lankamarket-api/internal/listing"
)

// PrintCategoryCreated prints the inserted category
func PrintCategoryCreated(w io.Writer, c *catalog.Category) {
	fmt.Fprintln(w, successStyle.Render("Category created"))
	fmt.Fprintf(w, "  Name:  %s\n", c.Name)
	fmt.Fprintf(w, "  Slug:  %s\n", c.Slug)
	fmt.Fprintf(w, "  Type:  %s\n", c.Type)
	fmt.Fprintf(w, "  Order: %d\n", c.SortOrder)
	fmt.Fprintln(w, subtleStyle.Render("  id "+c.ID.String()))
}

// PrintCategories prints categories one per line
func PrintCategories(w io.Writer, categories []catalog.Category) {
	fmt.Fprintln(w, titleStyle.Render("Categories"))
	if len(categories) == 0 {
		fmt.Fprintln(w, subtleStyle.Render("  none"))
		return
	}
	for _, c := range categories {
		fmt.Fprintf(w, "  %s %-24s %s\n", kindStyle.Render(string(c.Type)), c.Name, subtleStyle.Render(c.Slug))
	}
}

// PrintListings prints the merged listings and the canonical query string
// that reproduces them
func PrintListings(w io.Writer, listings []listing.Listing, f listing.Filters) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%d listings", len(listings))))
	for _, l := range listings {
		fmt.Fprintf(w, "  %s%s  %s\n",
			kindStyle.Render(l.Kind()),
			priceStyle.Render(FormatPrice(l.Price())),
			l.Title(),
		)
	}

	query := f.Encode()
	if query == "" {
		query = "(defaults)"
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, subtleStyle.Render("query: "+query))
}

// FormatPrice renders an amount in rupees with thousands separators
func FormatPrice(v float64) string {
	whole := strconv.FormatFloat(v, 'f', 2, 64)
	intPart, frac, _ := strings.Cut(whole, ".")

	neg := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := "Rs " + b.String() + "." + frac
	if neg {
		out = "-" + out
	}
	return out
}

// PrintError prints an error message.
func PrintError(w io.Writer, msg string) {
	fmt.Fprintln(w, errorStyle.Render("Error: "+msg))
}
