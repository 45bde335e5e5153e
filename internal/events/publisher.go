package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Routing keys published on the marketplace exchange
const (
	KeyCustomerRegistered = "customer.registered"
	KeyCustomerLoggedIn   = "customer.logged_in"
)

// Publisher sends domain events to a message broker
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
	Close() error
}

type noopPublisher struct{}

// NewNoop returns a Publisher that drops every event
func NewNoop() Publisher { return noopPublisher{} }

func (noopPublisher) Publish(ctx context.Context, key string, event any) error { return nil }
func (noopPublisher) Close() error                                           { return nil }

type CustomerRegistered struct {
	UserID       uuid.UUID `json:"user_id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	ReferralCode string    `json:"referral_code"`
	ReferredBy   *string   `json:"referred_by,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

type CustomerLoggedIn struct {
	UserID     uuid.UUID `json:"user_id"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurred_at"`
}
