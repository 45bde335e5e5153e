package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func tokenServices(t *testing.T) map[string]TokenService {
	t.Helper()

	jwtSvc, err := NewJWTService(testSecret)
	require.NoError(t, err)
	pasetoSvc, err := NewPasetoService(testSecret)
	require.NoError(t, err)

	return map[string]TokenService{"jwt": jwtSvc, "paseto": pasetoSvc}
}

func TestTokenService_RoundTrip(t *testing.T) {
	for name, svc := range tokenServices(t) {
		t.Run(name, func(t *testing.T) {
			id := uuid.New()

			tok, err := svc.CreateToken(id, "kamal@example.lk", "customer", 24*time.Hour)
			require.NoError(t, err)

			claims, err := svc.VerifyToken(tok)
			require.NoError(t, err)
			assert.Equal(t, id.String(), claims.UserID)
			assert.Equal(t, "kamal@example.lk", claims.Email)
			assert.Equal(t, "customer", claims.Role)
			assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt, 5*time.Second)
		})
	}
}

func TestTokenService_RejectsExpired(t *testing.T) {
	for name, svc := range tokenServices(t) {
		t.Run(name, func(t *testing.T) {
			tok, err := svc.CreateToken(uuid.New(), "old@example.lk", "customer", -time.Minute)
			require.NoError(t, err)

			_, err = svc.VerifyToken(tok)
			assert.ErrorIs(t, err, ErrExpiredToken)
		})
	}
}

func TestTokenService_RejectsTampered(t *testing.T) {
	for name, svc := range tokenServices(t) {
		t.Run(name, func(t *testing.T) {
			tok, err := svc.CreateToken(uuid.New(), "a@example.lk", "customer", time.Hour)
			require.NoError(t, err)

			_, err = svc.VerifyToken(tok[:len(tok)-4] + "AAAA")
			assert.ErrorIs(t, err, ErrInvalidToken)

			_, err = svc.VerifyToken("")
			assert.ErrorIs(t, err, ErrInvalidToken)

			_, err = svc.VerifyToken("not.a.token")
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokenService_RejectsOtherKey(t *testing.T) {
	other := []byte(strings.Repeat("z", 32))

	jwtA, _ := NewJWTService(testSecret)
	jwtB, _ := NewJWTService(other)
	tok, err := jwtA.CreateToken(uuid.New(), "a@example.lk", "customer", time.Hour)
	require.NoError(t, err)
	_, err = jwtB.VerifyToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	pA, _ := NewPasetoService(testSecret)
	pB, _ := NewPasetoService(other)
	tok, err = pA.CreateToken(uuid.New(), "a@example.lk", "customer", time.Hour)
	require.NoError(t, err)
	_, err = pB.VerifyToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_RejectsNoneAlgorithm(t *testing.T) {
	svc, err := NewJWTService(testSecret)
	require.NoError(t, err)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"uid": uuid.NewString(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	tok, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.VerifyToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokenServices_RequireKey(t *testing.T) {
	_, err := NewJWTService(nil)
	assert.ErrorIs(t, err, ErrMissingKey)

	_, err = NewPasetoService(nil)
	assert.ErrorIs(t, err, ErrMissingKey)

	_, err = NewPasetoService([]byte("short"))
	assert.Error(t, err)
}
