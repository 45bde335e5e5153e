package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the identity row shared by customers, sellers and admins
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           uuid.UUID `bun:"id,pk,type:uuid"`
	Email        string    `bun:"email,notnull,unique"`
	PasswordHash string    `bun:"password_hash,notnull"`
	FirstName    string    `bun:"first_name,notnull"`
	LastName     string    `bun:"last_name,notnull"`
	Phone        *string   `bun:"phone"`
	Role         string    `bun:"role,notnull"`
	IsActive     bool      `bun:"is_active,notnull"`
	IsVerified   bool      `bun:"is_verified,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
	UpdatedAt    time.Time `bun:"updated_at,notnull"`
}

// CustomerProfile extends a customer User 1:1
type CustomerProfile struct {
	bun.BaseModel `bun:"table:customer_profiles,alias:cp"`

	UserID            uuid.UUID  `bun:"user_id,pk,type:uuid"`
	DateOfBirth       *time.Time `bun:"date_of_birth"`
	Gender            *string    `bun:"gender"`
	PreferredLanguage string     `bun:"preferred_language,notnull"`
	MarketingConsent  bool       `bun:"marketing_consent,notnull"`
	ReferralCode      string     `bun:"referral_code,notnull,unique"`
	ReferredBy        *string    `bun:"referred_by"`
	CreatedAt         time.Time  `bun:"created_at,notnull"`
}

type Category struct {
	bun.BaseModel `bun:"table:categories,alias:c"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	Name      string    `bun:"name,notnull"`
	Slug      string    `bun:"slug,notnull,unique"`
	Type      string    `bun:"type,notnull"`
	SortOrder int       `bun:"sort_order,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

// Seller is a read-only projection of users used for listing joins
type Seller struct {
	bun.BaseModel `bun:"table:users,alias:s"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	Email     string    `bun:"email"`
	FirstName string    `bun:"first_name"`
	LastName  string    `bun:"last_name"`
}

type Product struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID          uuid.UUID `bun:"id,pk,type:uuid"`
	Title       string    `bun:"title,notnull"`
	Description string    `bun:"description,notnull"`
	Price       float64   `bun:"price,notnull"`
	CategoryID  uuid.UUID `bun:"category_id,notnull,type:uuid"`
	SellerID    uuid.UUID `bun:"seller_id,notnull,type:uuid"`
	ViewsCount  int64     `bun:"views_count,notnull"`
	CreatedAt   time.Time `bun:"created_at,notnull"`

	Category *Category `bun:"rel:belongs-to,join:category_id=id"`
	Seller   *Seller   `bun:"rel:belongs-to,join:seller_id=id"`
}

type Service struct {
	bun.BaseModel `bun:"table:services,alias:sv"`

	ID          uuid.UUID `bun:"id,pk,type:uuid"`
	Name        string    `bun:"name,notnull"`
	Description string    `bun:"description,notnull"`
	BasePrice   float64   `bun:"base_price,notnull"`
	CategoryID  uuid.UUID `bun:"category_id,notnull,type:uuid"`
	SellerID    uuid.UUID `bun:"seller_id,notnull,type:uuid"`
	ViewsCount  int64     `bun:"views_count,notnull"`
	CreatedAt   time.Time `bun:"created_at,notnull"`

	Category *Category `bun:"rel:belongs-to,join:category_id=id"`
	Seller   *Seller   `bun:"rel:belongs-to,join:seller_id=id"`
}
