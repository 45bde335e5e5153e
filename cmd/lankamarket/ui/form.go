package ui

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/lankamarket/lankamarket-api/internal/catalog"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidateSlug accepts lowercase words joined by single dashes
func ValidateSlug(s string) error {
	if !slugPattern.MatchString(strings.TrimSpace(s)) {
		return fmt.Errorf("slug must be lowercase letters, digits and dashes, e.g. home-garden")
	}
	return nil
}

// Slugify derives a slug suggestion from a category name
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// RunCategoryForm asks for the fields of a new category. Values already set
// in defaults are shown pre-filled.
func RunCategoryForm(defaults catalog.NewCategory) (catalog.NewCategory, error) {
	name := defaults.Name
	slug := defaults.Slug
	typ := string(defaults.Type)
	if typ == "" {
		typ = string(catalog.CategoryProduct)
	}
	sortOrder := strconv.Itoa(defaults.SortOrder)

	form1 := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Category name").
				Placeholder("Home & Garden").
				Value(&name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),

			huh.NewSelect[string]().
				Title("Listing type").
				Options(
					huh.NewOption("Products", string(catalog.CategoryProduct)),
					huh.NewOption("Services", string(catalog.CategoryService)),
				).
				Value(&typ),
		),
	).WithTheme(huh.ThemeCatppuccin())

	if err := form1.Run(); err != nil {
		return catalog.NewCategory{}, err
	}

	// Stage 2: slug suggestion depends on the name
	if slug == "" {
		slug = Slugify(name)
	}

	form2 := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Slug").
				Description("Used in listing URLs, e.g. /listings?category=home-garden").
				Value(&slug).
				Validate(ValidateSlug),

			huh.NewInput().
				Title("Sort order").
				Description("Lower numbers are shown first").
				Value(&sortOrder).
				Validate(func(s string) error {
					if _, err := strconv.Atoi(strings.TrimSpace(s)); err != nil {
						return fmt.Errorf("sort order must be a whole number")
					}
					return nil
				}),
		),
	).WithTheme(huh.ThemeCatppuccin())

	if err := form2.Run(); err != nil {
		return catalog.NewCategory{}, err
	}

	order, _ := strconv.Atoi(strings.TrimSpace(sortOrder))
	return catalog.NewCategory{
		Name:      strings.TrimSpace(name),
		Slug:      strings.TrimSpace(slug),
		Type:      catalog.CategoryType(typ),
		SortOrder: order,
	}, nil
}
