package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/lankamarket/lankamarket-api/internal/logging"
)

var (
	ErrInvalidCategoryType = errors.New("category type must be product or service")
	ErrTitleRequired       = errors.New("title is required")
	ErrPriceRequired       = errors.New("price is required and must not be negative")
	ErrCategoryRequired    = errors.New("category_id is required")
	ErrUnknownCategory     = errors.New("category does not exist")
	ErrCategoryNameSlug    = errors.New("category name and slug are required")
)

// Store is the persistence the catalog service depends on
type Store interface {
	ListCategories(ctx context.Context, filter *CategoryType) ([]Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*Category, error)
	CreateCategory(ctx context.Context, in NewCategory) (*Category, error)
	ListProducts(ctx context.Context, q Query) ([]Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	CreateProduct(ctx context.Context, in NewProduct) (*Product, error)
	IncrementProductViews(ctx context.Context, id uuid.UUID) error
	ListServices(ctx context.Context, q Query) ([]Service, error)
	GetService(ctx context.Context, id uuid.UUID) (*Service, error)
	IncrementServiceViews(ctx context.Context, id uuid.UUID) error
}

// QueryService answers catalog queries
type QueryService struct {
	store Store
}

func NewQueryService(store Store) *QueryService {
	return &QueryService{store: store}
}

// ListCategories returns categories of one type, or all of them when
// typeFilter is empty
func (s *QueryService) ListCategories(ctx context.Context, typeFilter string) ([]Category, error) {
	if typeFilter == "" {
		return s.store.ListCategories(ctx, nil)
	}

	t := CategoryType(typeFilter)
	if !t.Valid() {
		return nil, ErrInvalidCategoryType
	}
	return s.store.ListCategories(ctx, &t)
}

// CreateCategory adds a category after checking its fields
func (s *QueryService) CreateCategory(ctx context.Context, in NewCategory) (*Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Slug = strings.ToLower(strings.TrimSpace(in.Slug))
	if in.Name == "" || in.Slug == "" {
		return nil, ErrCategoryNameSlug
	}
	if !in.Type.Valid() {
		return nil, ErrInvalidCategoryType
	}
	return s.store.CreateCategory(ctx, in)
}

func (s *QueryService) ListProducts(ctx context.Context, q Query) ([]Product, error) {
	return s.store.ListProducts(ctx, q)
}

// GetProduct returns the product and counts the view. A failed view update
// is logged and does not fail the read.
func (s *QueryService) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	p, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.store.IncrementProductViews(ctx, id); err != nil {
		logging.GetLoggerFromContext(ctx).Warn("failed to count product view", "product_id", id, "error", err)
	} else {
		p.ViewsCount++
	}
	return p, nil
}

// CreateProduct validates presence of the required fields and inserts the
// product for sellerID
func (s *QueryService) CreateProduct(ctx context.Context, in NewProduct) (*Product, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.Title == "" {
		return nil, ErrTitleRequired
	}
	if in.Price < 0 {
		return nil, ErrPriceRequired
	}
	if in.CategoryID == uuid.Nil {
		return nil, ErrCategoryRequired
	}

	category, err := s.store.GetCategory(ctx, in.CategoryID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUnknownCategory
		}
		return nil, err
	}
	if category.Type != CategoryProduct {
		return nil, ErrUnknownCategory
	}

	p, err := s.store.CreateProduct(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	p.Category = category
	return p, nil
}

func (s *QueryService) ListServices(ctx context.Context, q Query) ([]Service, error) {
	return s.store.ListServices(ctx, q)
}

// GetService mirrors GetProduct
func (s *QueryService) GetService(ctx context.Context, id uuid.UUID) (*Service, error) {
	sv, err := s.store.GetService(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.store.IncrementServiceViews(ctx, id); err != nil {
		logging.GetLoggerFromContext(ctx).Warn("failed to count service view", "service_id", id, "error", err)
	} else {
		sv.ViewsCount++
	}
	return sv, nil
}
