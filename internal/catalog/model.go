package catalog

import (
	"time"

	"github.com/google/uuid"
)

// CategoryType says which kind of listing a category groups
type CategoryType string

const (
	CategoryProduct CategoryType = "product"
	CategoryService CategoryType = "service"
)

func (t CategoryType) Valid() bool {
	return t == CategoryProduct || t == CategoryService
}

type Category struct {
	ID        uuid.UUID    `json:"id"`
	Name      string       `json:"name"`
	Slug      string       `json:"slug"`
	Type      CategoryType `json:"type"`
	SortOrder int          `json:"sort_order"`
	CreatedAt time.Time    `json:"created_at"`
}

// SellerSummary is the public part of the seller embedded in a listing
type SellerSummary struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
}

type Product struct {
	ID          uuid.UUID      `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Price       float64        `json:"price"`
	CategoryID  uuid.UUID      `json:"category_id"`
	SellerID    uuid.UUID      `json:"seller_id"`
	ViewsCount  int64          `json:"views_count"`
	CreatedAt   time.Time      `json:"created_at"`
	Category    *Category      `json:"category,omitempty"`
	Seller      *SellerSummary `json:"seller,omitempty"`
}

type Service struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	BasePrice   float64        `json:"base_price"`
	CategoryID  uuid.UUID      `json:"category_id"`
	SellerID    uuid.UUID      `json:"seller_id"`
	ViewsCount  int64          `json:"views_count"`
	CreatedAt   time.Time      `json:"created_at"`
	Category    *Category      `json:"category,omitempty"`
	Seller      *SellerSummary `json:"seller,omitempty"`
}

// NewProduct is the input of CreateProduct
type NewProduct struct {
	Title       string
	Description string
	Price       float64
	CategoryID  uuid.UUID
	SellerID    uuid.UUID
}

// NewCategory is the input of CreateCategory
type NewCategory struct {
	Name      string
	Slug      string
	Type      CategoryType
	SortOrder int
}
