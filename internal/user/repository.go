package user

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
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// Store is the persistence contract the auth workflow depends on
type Store interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, u *User) error
	CreateCustomerProfile(ctx context.Context, p *CustomerProfile) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmailAndRole(ctx context.Context, email string, role Role) (*User, error)
	GetCustomerProfile(ctx context.Context, userID uuid.UUID) (*CustomerProfile, error)
	List(ctx context.Context) ([]User, error)
	// RunInTx runs fn against a Store bound to one database transaction.
	// The transaction commits if fn returns nil and rolls back otherwise.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

// Repository handles user data persistence
type Repository struct {
	db   bun.IDB
	root *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db, root: db}
}

// RunInTx implements Store. Calls made on an already transactional
// repository join the running transaction.
func (r *Repository) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	if _, ok := r.db.(bun.Tx); ok {
		return fn(ctx, r)
	}

	return r.root.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, &Repository{db: tx, root: r.root})
	})
}

// EmailExists reports whether any user already uses email
func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*database.User)(nil)).
		Where("email = ?", email).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}

	return exists, nil
}

// Create inserts a new user. ID and timestamps are filled in when unset.
func (r *Repository) Create(ctx context.Context, u *User) error {
	now := time.Now().UTC()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = now
	}

	_, err := r.db.NewInsert().
		Model(mapModelToDBUser(u)).
		Exec(ctx)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// CreateCustomerProfile inserts the 1:1 customer extension of a user
func (r *Repository) CreateCustomerProfile(ctx context.Context, p *CustomerProfile) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	dbProfile := &database.CustomerProfile{
		UserID:            p.UserID,
		DateOfBirth:       p.DateOfBirth,
		PreferredLanguage: p.PreferredLanguage,
		MarketingConsent:  p.MarketingConsent,
		ReferralCode:      p.ReferralCode,
		ReferredBy:        p.ReferredBy,
		CreatedAt:         p.CreatedAt,
	}
	if p.Gender != nil {
		g := string(*p.Gender)
		dbProfile.Gender = &g
	}

	if _, err := r.db.NewInsert().Model(dbProfile).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create customer profile: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByEmailAndRole retrieves a user by email, restricted to one role
func (r *Repository) GetByEmailAndRole(ctx context.Context, email string, role Role) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("email = ?", email).
		Where("role = ?", string(role)).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetCustomerProfile retrieves the profile belonging to userID
func (r *Repository) GetCustomerProfile(ctx context.Context, userID uuid.UUID) (*CustomerProfile, error) {
	dbProfile := new(database.CustomerProfile)
	err := r.db.NewSelect().
		Model(dbProfile).
		Where("user_id = ?", userID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get customer profile: %w", err)
	}

	p := &CustomerProfile{
		UserID:            dbProfile.UserID,
		DateOfBirth:       dbProfile.DateOfBirth,
		PreferredLanguage: dbProfile.PreferredLanguage,
		MarketingConsent:  dbProfile.MarketingConsent,
		ReferralCode:      dbProfile.ReferralCode,
		ReferredBy:        dbProfile.ReferredBy,
		CreatedAt:         dbProfile.CreatedAt,
	}
	if dbProfile.Gender != nil {
		g := Gender(*dbProfile.Gender)
		p.Gender = &g
	}

	return p, nil
}

// List returns every user, newest first
func (r *Repository) List(ctx context.Context) ([]User, error) {
	var dbUsers []database.User
	err := r.db.NewSelect().
		Model(&dbUsers).
		OrderExpr("u.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]User, 0, len(dbUsers))
	for i := range dbUsers {
		users = append(users, *mapDBUserToModel(&dbUsers[i]))
	}

	return users, nil
}

func mapModelToDBUser(u *User) *database.User {
	return &database.User{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Phone:        u.Phone,
		Role:         string(u.Role),
		IsActive:     u.IsActive,
		IsVerified:   u.IsVerified,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// mapDBUserToModel converts database model to domain model
func mapDBUserToModel(dbu *database.User) *User {
	return &User{
		ID:           dbu.ID,
		Email:        dbu.Email,
		PasswordHash: dbu.PasswordHash,
		FirstName:    dbu.FirstName,
		LastName:     dbu.LastName,
		Phone:        dbu.Phone,
		Role:         Role(dbu.Role),
		IsActive:     dbu.IsActive,
		IsVerified:   dbu.IsVerified,
		CreatedAt:    dbu.CreatedAt,
		UpdatedAt:    dbu.UpdatedAt,
	}
}
