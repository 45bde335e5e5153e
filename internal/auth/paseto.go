package auth

import (
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/google/uuid"
)

// PasetoService issues and validates PASETO v4.local tokens
// (XChaCha20-Poly1305 with a shared 32 byte key)
type PasetoService struct {
	key paseto.V4SymmetricKey
}

func NewPasetoService(secret []byte) (*PasetoService, error) {
	if len(secret) == 0 {
		return nil, ErrMissingKey
	}
	if len(secret) != 32 {
		return nil, fmt.Errorf("paseto key must be exactly 32 bytes, got %d", len(secret))
	}

	key, err := paseto.V4SymmetricKeyFromBytes(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to create symmetric key: %w", err)
	}

	return &PasetoService{key: key}, nil
}

// CreateToken encrypts a token for the user that expires after duration.
// Claim names match the JWT flavour so either service reads the same identity.
func (s *PasetoService) CreateToken(userID uuid.UUID, email, role string, duration time.Duration) (string, error) {
	now := time.Now()

	token := paseto.NewToken()
	token.SetIssuedAt(now)
	token.SetExpiration(now.Add(duration))
	token.SetSubject(userID.String())
	token.SetString("uid", userID.String())
	token.SetString("email", email)
	token.SetString("role", role)

	return token.V4Encrypt(s.key, nil), nil
}

// VerifyToken decrypts the token and checks its expiry
func (s *PasetoService) VerifyToken(tokenStr string) (*TokenClaims, error) {
	// Expiry is checked below so it can be reported separately
	parser := paseto.NewParserWithoutExpiryCheck()

	token, err := parser.ParseV4Local(s.key, tokenStr, nil)
	if err != nil {
		return nil, ErrInvalidToken
	}

	expiresAt, err := token.GetExpiration()
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !time.Now().Before(expiresAt) {
		return nil, ErrExpiredToken
	}

	claims := &TokenClaims{ExpiresAt: expiresAt}
	if claims.UserID, err = token.GetString("uid"); err != nil || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	if claims.Email, err = token.GetString("email"); err != nil {
		return nil, ErrInvalidToken
	}
	if claims.Role, err = token.GetString("role"); err != nil {
		return nil, ErrInvalidToken
	}
	if claims.IssuedAt, err = token.GetIssuedAt(); err != nil {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
