package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lankamarket/lankamarket-api/internal/events"
	"github.com/lankamarket/lankamarket-api/internal/logging"
	"github.com/lankamarket/lankamarket-api/internal/user"
)

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrCredentialsRequired = errors.New("email and password are required")
	ErrEmailRequired       = errors.New("email is required")
	ErrPasswordRequired    = errors.New("password is required")
	ErrPasswordTooShort    = errors.New("password must be at least 8 characters")
	ErrInvalidEmailFormat  = errors.New("invalid email format")
	ErrFirstNameRequired   = errors.New("first_name is required")
	ErrLastNameRequired    = errors.New("last_name is required")
	ErrInvalidGender       = errors.New("gender must be one of male, female, other, prefer_not_to_say")
	ErrInvalidDateOfBirth  = errors.New("date_of_birth must be formatted as YYYY-MM-DD")
)

const minPasswordLen = 8

// Hasher hashes and verifies passwords
type Hasher interface {
	Hash(password string) (string, error)
	Verify(encodedHash, password string) (bool, error)
}

// WelcomeMailer sends the post-registration greeting
type WelcomeMailer interface {
	SendWelcomeEmail(ctx context.Context, toEmail, firstName, referralCode string) error
}

// RegisterInput is a customer registration request
type RegisterInput struct {
	Email             string
	Password          string
	FirstName         string
	LastName          string
	Phone             string
	DateOfBirth       string // YYYY-MM-DD
	Gender            string
	PreferredLanguage string
	MarketingConsent  bool
	ReferredBy        string
}

// LoginResult carries the issued session token and the public user fields
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *user.User
}

// Service handles customer registration and login
type Service struct {
	users         user.Store
	hasher        Hasher
	tokens        TokenService
	publisher     events.Publisher
	mailer        WelcomeMailer
	logger        *logging.Logger
	tokenDuration time.Duration

	// background tracks welcome emails still being sent
	background sync.WaitGroup
}

// NewService wires the workflow. mailer may be nil when email is disabled.
func NewService(
	users user.Store,
	hasher Hasher,
	tokens TokenService,
	publisher events.Publisher,
	mailer WelcomeMailer,
	logger *logging.Logger,
	tokenDuration time.Duration,
) *Service {
	if publisher == nil {
		publisher = events.NewNoop()
	}
	return &Service{
		users:         users,
		hasher:        hasher,
		tokens:        tokens,
		publisher:     publisher,
		mailer:        mailer,
		logger:        logger,
		tokenDuration: tokenDuration,
	}
}

// Register creates a customer user and its profile. The user and profile
// rows are written in one transaction, so a failed profile insert leaves
// nothing behind.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*user.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	profile, err := validateRegistration(in)
	if err != nil {
		return nil, err
	}

	exists, err := s.users.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, user.ErrDuplicateEmail
	}

	passwordHash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser := &user.User{
		ID:           uuid.New(),
		Email:        in.Email,
		PasswordHash: passwordHash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         user.RoleCustomer,
		IsActive:     true,
		IsVerified:   false,
	}
	if phone := strings.TrimSpace(in.Phone); phone != "" {
		newUser.Phone = &phone
	}
	profile.UserID = newUser.ID

	err = s.users.RunInTx(ctx, func(ctx context.Context, tx user.Store) error {
		// The unique index on email is the final authority when two
		// registrations race past EmailExists.
		if err := tx.Create(ctx, newUser); err != nil {
			return err
		}
		return tx.CreateCustomerProfile(ctx, profile)
	})
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, user.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	s.afterRegister(ctx, newUser, profile)

	return newUser, nil
}

// afterRegister fires the best-effort side effects of a registration
func (s *Service) afterRegister(ctx context.Context, u *user.User, p *user.CustomerProfile) {
	err := s.publisher.Publish(ctx, events.KeyCustomerRegistered, events.CustomerRegistered{
		UserID:       u.ID,
		Email:        u.Email,
		FirstName:    u.FirstName,
		ReferralCode: p.ReferralCode,
		ReferredBy:   p.ReferredBy,
		OccurredAt:   time.Now().UTC(),
	})
	if err != nil {
		s.logger.Warn("failed to publish registration event", "user_id", u.ID, "error", err)
	}

	if s.mailer == nil {
		return
	}
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		// Fresh context: the request context is cancelled once the response is written
		mailCtx := logging.WithContext(context.Background(), s.logger)
		if err := s.mailer.SendWelcomeEmail(mailCtx, u.Email, u.FirstName, p.ReferralCode); err != nil {
			s.logger.Warn("failed to send welcome email", "email", u.Email, "error", err)
		}
	}()
}

// Login authenticates a customer and issues a session token. Unknown
// email, wrong role, inactive account and wrong password all yield
// ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrCredentialsRequired
	}

	existingUser, err := s.users.GetByEmailAndRole(ctx, email, user.RoleCustomer)
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			s.logger.Error("login lookup failed", "error", err)
		}
		return nil, ErrInvalidCredentials
	}

	if !existingUser.IsActive {
		return nil, ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(existingUser.PasswordHash, password)
	if err != nil {
		s.logger.Error("stored password hash is unreadable", "user_id", existingUser.ID, "error", err)
		return nil, ErrInvalidCredentials
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.CreateToken(existingUser.ID, existingUser.Email, string(existingUser.Role), s.tokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to create token: %w", err)
	}

	err = s.publisher.Publish(ctx, events.KeyCustomerLoggedIn, events.CustomerLoggedIn{
		UserID:     existingUser.ID,
		Email:      existingUser.Email,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		s.logger.Warn("failed to publish login event", "user_id", existingUser.ID, "error", err)
	}

	return &LoginResult{
		Token:     token,
		ExpiresAt: time.Now().Add(s.tokenDuration),
		User:      existingUser,
	}, nil
}

// Me returns the authenticated customer and their profile
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*user.User, *user.CustomerProfile, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	p, err := s.users.GetCustomerProfile(ctx, userID)
	if err != nil && !errors.Is(err, user.ErrNotFound) {
		return nil, nil, err
	}

	return u, p, nil
}

// validateRegistration checks the input and builds the profile row
func validateRegistration(in RegisterInput) (*user.CustomerProfile, error) {
	if in.Email == "" {
		return nil, ErrEmailRequired
	}
	if in.Password == "" {
		return nil, ErrPasswordRequired
	}
	if in.FirstName == "" {
		return nil, ErrFirstNameRequired
	}
	if in.LastName == "" {
		return nil, ErrLastNameRequired
	}
	if len(in.Email) > 254 {
		return nil, ErrInvalidEmailFormat
	}
	if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email {
		return nil, ErrInvalidEmailFormat
	}
	if len(in.Password) < minPasswordLen {
		return nil, ErrPasswordTooShort
	}

	profile := &user.CustomerProfile{
		PreferredLanguage: strings.TrimSpace(in.PreferredLanguage),
		MarketingConsent:  in.MarketingConsent,
		ReferralCode:      newReferralCode(),
	}
	if profile.PreferredLanguage == "" {
		profile.PreferredLanguage = user.DefaultLanguage
	}

	if in.Gender != "" {
		g := user.Gender(in.Gender)
		if !g.Valid() {
			return nil, ErrInvalidGender
		}
		profile.Gender = &g
	}

	if in.DateOfBirth != "" {
		dob, err := time.Parse(time.DateOnly, in.DateOfBirth)
		if err != nil || dob.After(time.Now()) {
			return nil, ErrInvalidDateOfBirth
		}
		profile.DateOfBirth = &dob
	}

	if ref := strings.ToUpper(strings.TrimSpace(in.ReferredBy)); ref != "" {
		profile.ReferredBy = &ref
	}

	return profile, nil
}

// newReferralCode returns a short shareable code such as LM-7F3A9C21
func newReferralCode() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "LM-" + strings.ToUpper(id[:8])
}

// Wait blocks until pending welcome emails are sent or ctx is done
func (s *Service) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.background.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
