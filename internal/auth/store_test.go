package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/lankamarket/lankamarket-api/internal/user"
)

// memStore is an in-memory user.Store. RunInTx snapshots the maps and
// restores them when fn fails.
type memStore struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*user.User
	profiles map[uuid.UUID]*user.CustomerProfile

	profileErr error
	lookupErr  error
	// hideEmails makes EmailExists report false, as if a concurrent
	// registration had not committed yet
	hideEmails bool
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[uuid.UUID]*user.User),
		profiles: make(map[uuid.UUID]*user.CustomerProfile),
	}
}

func (s *memStore) EmailExists(ctx context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hideEmails {
		return false, nil
	}
	for _, u := range s.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) Create(ctx context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return user.ErrDuplicateEmail
		}
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *memStore) CreateCustomerProfile(ctx context.Context, p *user.CustomerProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profileErr != nil {
		return s.profileErr
	}
	cp := *p
	s.profiles[p.UserID] = &cp
	return nil
}

func (s *memStore) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memStore) GetByEmailAndRole(ctx context.Context, email string, role user.Role) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	for _, u := range s.users {
		if u.Email == email && u.Role == role {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrNotFound
}

func (s *memStore) GetCustomerProfile(ctx context.Context, userID uuid.UUID) (*user.CustomerProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *memStore) List(ctx context.Context) ([]user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]user.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, nil
}

func (s *memStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx user.Store) error) error {
	s.mu.Lock()
	users := make(map[uuid.UUID]*user.User, len(s.users))
	for k, v := range s.users {
		users[k] = v
	}
	profiles := make(map[uuid.UUID]*user.CustomerProfile, len(s.profiles))
	for k, v := range s.profiles {
		profiles[k] = v
	}
	s.mu.Unlock()

	if err := fn(ctx, s); err != nil {
		s.mu.Lock()
		s.users, s.profiles = users, profiles
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *memStore) userCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// recordingPublisher captures published routing keys
type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (p *recordingPublisher) Publish(ctx context.Context, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}

// chanMailer reports every welcome email on sent
type chanMailer struct {
	sent chan string
}

func (m *chanMailer) SendWelcomeEmail(ctx context.Context, toEmail, firstName, referralCode string) error {
	m.sent <- toEmail
	return nil
}

// gatedMailer blocks every send until release is closed
type gatedMailer struct {
	release chan struct{}
	sent    atomic.Int32
}

func (m *gatedMailer) SendWelcomeEmail(ctx context.Context, toEmail, firstName, referralCode string) error {
	<-m.release
	m.sent.Add(1)
	return nil
}

var errStoreDown = errors.New("connection refused")
