package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/lankamarket/lankamarket-api/internal/database"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateCategory = errors.New("category slug already exists")
)

// Repository reads and writes the catalog tables
type Repository struct {
	db bun.IDB
}

func NewRepository(db bun.IDB) *Repository {
	return &Repository{db: db}
}

// ListCategories returns categories ordered by sort_order then name.
// A nil filter returns every type.
func (r *Repository) ListCategories(ctx context.Context, filter *CategoryType) ([]Category, error) {
	var rows []database.Category
	q := r.db.NewSelect().Model(&rows)
	if filter != nil {
		q = q.Where("c.type = ?", string(*filter))
	}
	if err := q.OrderExpr("c.sort_order ASC, c.name ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	out := make([]Category, 0, len(rows))
	for i := range rows {
		out = append(out, *mapCategory(&rows[i]))
	}
	return out, nil
}

// GetCategory retrieves a category by ID
func (r *Repository) GetCategory(ctx context.Context, id uuid.UUID) (*Category, error) {
	row := new(database.Category)
	if err := r.db.NewSelect().Model(row).Where("c.id = ?", id).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return mapCategory(row), nil
}

// CreateCategory inserts a category
func (r *Repository) CreateCategory(ctx context.Context, in NewCategory) (*Category, error) {
	row := &database.Category{
		ID:        uuid.New(),
		Name:      in.Name,
		Slug:      in.Slug,
		Type:      string(in.Type),
		SortOrder: in.SortOrder,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := r.db.NewInsert().Model(row).Exec(ctx); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrDuplicateCategory
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return mapCategory(row), nil
}

// ListProducts returns products joined with their category and seller
func (r *Repository) ListProducts(ctx context.Context, query Query) ([]Product, error) {
	var rows []database.Product
	q := r.db.NewSelect().
		Model(&rows).
		Relation("Category").
		Relation("Seller")
	if slug := query.categorySlug(); slug != "" {
		q = q.Where(`"category"."slug" = ?`, slug)
	}
	q = q.OrderExpr(orderClause("p", "price", query.Order))

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	out := make([]Product, 0, len(rows))
	for i := range rows {
		out = append(out, *mapProduct(&rows[i]))
	}
	return out, nil
}

// GetProduct retrieves one product with its category and seller
func (r *Repository) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	row := new(database.Product)
	err := r.db.NewSelect().
		Model(row).
		Relation("Category").
		Relation("Seller").
		Where("p.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return mapProduct(row), nil
}

// CreateProduct inserts a product with zero views
func (r *Repository) CreateProduct(ctx context.Context, in NewProduct) (*Product, error) {
	row := &database.Product{
		ID:          uuid.New(),
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		CategoryID:  in.CategoryID,
		SellerID:    in.SellerID,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := r.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return mapProduct(row), nil
}

// IncrementProductViews adds one to the product's views_count
func (r *Repository) IncrementProductViews(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.NewUpdate().
		Model((*database.Product)(nil)).
		Set("views_count = views_count + 1").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to increment product views: %w", err)
	}
	return nil
}

// ListServices returns services joined with their category and seller
func (r *Repository) ListServices(ctx context.Context, query Query) ([]Service, error) {
	var rows []database.Service
	q := r.db.NewSelect().
		Model(&rows).
		Relation("Category").
		Relation("Seller")
	if slug := query.categorySlug(); slug != "" {
		q = q.Where(`"category"."slug" = ?`, slug)
	}
	q = q.OrderExpr(orderClause("sv", "base_price", query.Order))

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}

	out := make([]Service, 0, len(rows))
	for i := range rows {
		out = append(out, *mapService(&rows[i]))
	}
	return out, nil
}

// GetService retrieves one service with its category and seller
func (r *Repository) GetService(ctx context.Context, id uuid.UUID) (*Service, error) {
	row := new(database.Service)
	err := r.db.NewSelect().
		Model(row).
		Relation("Category").
		Relation("Seller").
		Where("sv.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return mapService(row), nil
}

// CreateService inserts a service with zero views
func (r *Repository) CreateService(ctx context.Context, s *Service) error {
	row := &database.Service{
		ID:          uuid.New(),
		Name:        s.Name,
		Description: s.Description,
		BasePrice:   s.BasePrice,
		CategoryID:  s.CategoryID,
		SellerID:    s.SellerID,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := r.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	s.ID, s.CreatedAt, s.ViewsCount = row.ID, row.CreatedAt, 0
	return nil
}

// IncrementServiceViews adds one to the service's views_count
func (r *Repository) IncrementServiceViews(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.NewUpdate().
		Model((*database.Service)(nil)).
		Set("views_count = views_count + 1").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to increment service views: %w", err)
	}
	return nil
}

// orderClause builds the ORDER BY expression from a whitelisted field
func orderClause(alias, priceColumn string, o Order) string {
	column := "created_at"
	switch o.Field {
	case OrderPrice:
		column = priceColumn
	case OrderViews:
		column = "views_count"
	}

	dir := "ASC"
	if o.Desc {
		dir = "DESC"
	}
	return alias + "." + column + " " + dir
}

func mapCategory(c *database.Category) *Category {
	if c == nil {
		return nil
	}
	return &Category{
		ID:        c.ID,
		Name:      c.Name,
		Slug:      c.Slug,
		Type:      CategoryType(c.Type),
		SortOrder: c.SortOrder,
		CreatedAt: c.CreatedAt,
	}
}

func mapSeller(s *database.Seller) *SellerSummary {
	if s == nil {
		return nil
	}
	return &SellerSummary{
		ID:        s.ID,
		FirstName: s.FirstName,
		LastName:  s.LastName,
		Email:     s.Email,
	}
}

func mapProduct(p *database.Product) *Product {
	return &Product{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		CategoryID:  p.CategoryID,
		SellerID:    p.SellerID,
		ViewsCount:  p.ViewsCount,
		CreatedAt:   p.CreatedAt,
		Category:    mapCategory(p.Category),
		Seller:      mapSeller(p.Seller),
	}
}

func mapService(s *database.Service) *Service {
	return &Service{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		BasePrice:   s.BasePrice,
		CategoryID:  s.CategoryID,
		SellerID:    s.SellerID,
		ViewsCount:  s.ViewsCount,
		CreatedAt:   s.CreatedAt,
		Category:    mapCategory(s.Category),
		Seller:      mapSeller(s.Seller),
	}
}
