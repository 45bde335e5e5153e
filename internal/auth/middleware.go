package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/lankamarket/lankamarket-api/internal/httputil"
	"github.com/lankamarket/lankamarket-api/internal/logging"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const (
	UserIDContextKey    ContextKey = "user_id"
	UserEmailContextKey ContextKey = "user_email"
	UserRoleContextKey  ContextKey = "user_role"
)

var (
	errMissingAuth       = errors.New("missing authentication")
	errInvalidAuthHeader = errors.New("invalid authorization header format")
	errInvalidUserID     = errors.New("invalid user ID in token")
)

// Middleware handles authentication for protected routes
type Middleware struct {
	tokenService TokenService
	cookieName   string
}

func NewMiddleware(tokenService TokenService, cookieName string) *Middleware {
	return &Middleware{tokenService: tokenService, cookieName: cookieName}
}

// RequireAuth rejects the request with 401 unless it carries a valid token
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, err := m.authenticate(r)
		if err != nil {
			switch {
			case errors.Is(err, errMissingAuth):
				httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
			case errors.Is(err, errInvalidAuthHeader):
				httputil.RespondErrorWithCode(w, "invalid authorization header format", httputil.CodeInvalidAuthHeader, http.StatusUnauthorized)
			case errors.Is(err, ErrExpiredToken):
				httputil.RespondErrorWithCode(w, "token has expired", httputil.CodeTokenExpired, http.StatusUnauthorized)
			case errors.Is(err, errInvalidUserID):
				httputil.RespondErrorWithCode(w, "invalid user ID in token", httputil.CodeInvalidTokenUserID, http.StatusUnauthorized)
			default:
				httputil.RespondErrorWithCode(w, "invalid token", httputil.CodeInvalidToken, http.StatusUnauthorized)
			}
			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuth attaches the identity when a valid token is present and
// otherwise lets the request through anonymously
func (m *Middleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, err := m.authenticate(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// authenticate returns a context carrying the caller's identity. The
// Authorization header takes priority over the cookie.
func (m *Middleware) authenticate(r *http.Request) (context.Context, error) {
	var token string

	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return nil, errInvalidAuthHeader
		}
		token = parts[1]
	}

	if token == "" {
		cookieToken, err := GetTokenFromCookie(r, m.cookieName)
		if err != nil {
			return nil, errMissingAuth
		}
		token = cookieToken
	}

	claims, err := m.tokenService.VerifyToken(token)
	if err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, errInvalidUserID
	}

	ctx := context.WithValue(r.Context(), UserIDContextKey, userID)
	ctx = context.WithValue(ctx, UserEmailContextKey, claims.Email)
	ctx = context.WithValue(ctx, UserRoleContextKey, claims.Role)
	ctx = logging.AddRequestFields(ctx, "user_id", userID.String())
	return ctx, nil
}

// GetUserIDFromContext extracts the user ID from the request context
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDContextKey).(uuid.UUID)
	return userID, ok
}

// GetUserEmailFromContext extracts the user email from the request context
func GetUserEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(UserEmailContextKey).(string)
	return email, ok
}

// GetUserRoleFromContext extracts the user role from the request context
func GetUserRoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(UserRoleContextKey).(string)
	return role, ok
}
