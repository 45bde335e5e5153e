package main

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"

	"github.com/lankamarket/lankamarket-api/cmd/lankamarket/ui"
	"github.com/lankamarket/lankamarket-api/internal/catalog"
	"github.com/lankamarket/lankamarket-api/internal/config"
	"github.com/lankamarket/lankamarket-api/internal/database"
	"github.com/lankamarket/lankamarket-api/internal/listing"
	"github.com/lankamarket/lankamarket-api/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "lankamarket",
		Short:        "LankaMarket operator tooling",
		Long:         "Create the schema, manage categories and browse listings of a LankaMarket deployment.",
		SilenceUsage: true,
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create any missing tables and indexes",
		RunE:  runMigrate,
	}

	categoryCmd := &cobra.Command{
		Use:   "category",
		Short: "Manage listing categories",
	}

	categoryAddCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a category (interactive unless all flags are given)",
		RunE:  runCategoryAdd,
	}
	categoryAddCmd.Flags().String("name", "", "Category name")
	categoryAddCmd.Flags().String("slug", "", "URL slug, e.g. home-garden")
	categoryAddCmd.Flags().String("type", "", "Listing type (product, service)")
	categoryAddCmd.Flags().Int("sort-order", 0, "Position in category lists, lower first")

	categoryListCmd := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		RunE:  runCategoryList,
	}
	categoryListCmd.Flags().String("type", "", "Only this listing type (product, service)")

	categoryCmd.AddCommand(categoryAddCmd, categoryListCmd)

	listingsCmd := &cobra.Command{
		Use:   "listings",
		Short: "Browse merged product and service listings of a running API",
		RunE:  runListings,
	}
	listingsCmd.Flags().String("api", "http://localhost:8080", "Base URL of the LankaMarket API")
	listingsCmd.Flags().String("type", "", "all, products or services")
	listingsCmd.Flags().String("category", "", "Category slug")
	listingsCmd.Flags().String("sort", "", "newest, oldest, price-low, price-high or popular")
	listingsCmd.Flags().Duration("timeout", 10*time.Second, "Per request timeout")

	rootCmd.AddCommand(migrateCmd, categoryCmd, listingsCmd)
	return rootCmd
}

func openDB() (*bun.DB, error) {
	cfg, err := config.LoadDatabase()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return database.Open(cfg)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		ui.PrintError(cmd.ErrOrStderr(), err.Error())
		return err
	}
	defer db.Close()

	if err := database.CreateSchema(cmd.Context(), db); err != nil {
		ui.PrintError(cmd.ErrOrStderr(), err.Error())
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
	return nil
}

func runCategoryAdd(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	slug, _ := cmd.Flags().GetString("slug")
	typ, _ := cmd.Flags().GetString("type")
	sortOrder, _ := cmd.Flags().GetInt("sort-order")

	in := catalog.NewCategory{
		Name:      name,
		Slug:      slug,
		Type:      catalog.CategoryType(typ),
		SortOrder: sortOrder,
	}

	// Interactive mode when any required flag is missing
	if name == "" || slug == "" || typ == "" {
		var err error
		in, err = ui.RunCategoryForm(in)
		if err != nil {
			return fmt.Errorf("form cancelled: %w", err)
		}
	} else if err := ui.ValidateSlug(slug); err != nil {
		ui.PrintError(cmd.ErrOrStderr(), err.Error())
		return err
	}

	db, err := openDB()
	if err != nil {
		ui.PrintError(cmd.ErrOrStderr(), err.Error())
		return err
	}
	defer db.Close()

	created, err := catalog.NewQueryService(catalog.NewRepository(db)).CreateCategory(cmd.Context(), in)
	if err != nil {
		ui.PrintError(cmd.ErrOrStderr(), err.Error())
		return err
	}

	ui.PrintCategoryCreated(cmd.OutOrStdout(), created)
	return nil
}

func runCategoryList(cmd *cobra.Command, args []string) error {
	typ, _ := cmd.Flags().GetString("type")

	db, err := openDB()
	if err != nil {
		ui.PrintError(cmd.ErrOrStderr(), err.Error())
		return err
	}
	defer db.Close()

	categories, err := catalog.NewQueryService(catalog.NewRepository(db)).ListCategories(cmd.Context(), typ)
	if err != nil {
		ui.PrintError(cmd.ErrOrStderr(), err.Error())
		return err
	}

	ui.PrintCategories(cmd.OutOrStdout(), categories)
	return nil
}

func runListings(cmd *cobra.Command, args []string) error {
	api, _ := cmd.Flags().GetString("api")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	filters := filtersFromFlags(cmd)

	// Failed halves are logged to stderr and shown as empty
	ctx := logging.WithContext(cmd.Context(), logging.NewLoggerTo(cmd.ErrOrStderr(), false))

	pipeline := listing.NewPipeline(listing.NewHTTPSource(api, timeout), nil)
	ui.PrintListings(cmd.OutOrStdout(), pipeline.Run(ctx, filters), filters)
	return nil
}

// filtersFromFlags parses the listing flags the same way the API parses its
// query string
func filtersFromFlags(cmd *cobra.Command) listing.Filters {
	values := url.Values{}
	for _, key := range []string{"type", "category", "sort"} {
		if v, _ := cmd.Flags().GetString(key); v != "" {
			values.Set(key, v)
		}
	}
	return listing.ParseFilters(values)
}
