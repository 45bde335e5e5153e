package user

import (
	"time"

	"github.com/google/uuid"
)

// Role tags what a user may do on the marketplace
type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
	RoleAdmin    Role = "admin"
)

// Gender values accepted on a customer profile
type Gender string

const (
	GenderMale           Gender = "male"
	GenderFemale         Gender = "female"
	GenderOther          Gender = "other"
	GenderPreferNotToSay Gender = "prefer_not_to_say"
)

// Valid reports whether g is one of the known genders
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther, GenderPreferNotToSay:
		return true
	}
	return false
}

// DefaultLanguage is used when a customer does not pick one
const DefaultLanguage = "en"

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose password hash in JSON
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Phone        *string   `json:"phone,omitempty"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"is_active"`
	IsVerified   bool      `json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type CustomerProfile struct {
	UserID            uuid.UUID  `json:"user_id"`
	DateOfBirth       *time.Time `json:"date_of_birth,omitempty"`
	Gender            *Gender    `json:"gender,omitempty"`
	PreferredLanguage string     `json:"preferred_language"`
	MarketingConsent  bool       `json:"marketing_consent"`
	ReferralCode      string     `json:"referral_code"`
	ReferredBy        *string    `json:"referred_by,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}
