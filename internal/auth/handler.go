package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/google/uuid"

	"github.com/lankamarket/lankamarket-api/internal/httputil"
	"github.com/lankamarket/lankamarket-api/internal/logging"
	"github.com/lankamarket/lankamarket-api/internal/metrics"
	"github.com/lankamarket/lankamarket-api/internal/user"
)

// RateLimiter records a request and reports whether it may proceed
type RateLimiter interface {
	Allow(ctx context.Context, ip, purpose string) (bool, error)
}

// Handler contains HTTP handlers for customer authentication endpoints
type Handler struct {
	service     *Service
	rateLimiter RateLimiter
	metrics     *metrics.Metrics
	cookie      CookieSettings
}

func NewHandler(service *Service, rateLimiter RateLimiter, m *metrics.Metrics, cookie CookieSettings) *Handler {
	return &Handler{
		service:     service,
		rateLimiter: rateLimiter,
		metrics:     m,
		cookie:      cookie,
	}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	Phone             string `json:"phone,omitempty"`
	DateOfBirth       string `json:"date_of_birth,omitempty"`
	Gender            string `json:"gender,omitempty"`
	PreferredLanguage string `json:"preferred_language,omitempty"`
	MarketingConsent  bool   `json:"marketing_consent,omitempty"`
	ReferredBy        string `json:"referred_by,omitempty"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse represents the registration response
type RegisterResponse struct {
	Message string    `json:"message"`
	UserID  uuid.UUID `json:"user_id"`
}

// UserResponse is the public part of a user returned on login
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      user.Role `json:"role"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    UserResponse `json:"user"`
}

// MeResponse is the authenticated customer with their profile
type MeResponse struct {
	User    *user.User            `json:"user"`
	Profile *user.CustomerProfile `json:"profile,omitempty"`
}

// Register handles customer registration
// @Summary      Register a customer
// @Description  Create a customer account and its profile.
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration details"
// @Success      201 {object} RegisterResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid request or validation error"
// @Failure      409 {object} httputil.ErrorResponse "Email already registered"
// @Failure      429 {object} httputil.ErrorResponse "Too many requests"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /customers/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if !h.allow(r, logger, "register") {
		httputil.RespondErrorWithCode(w, "too many requests, please try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid registration request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	newUser, err := h.service.Register(r.Context(), RegisterInput{
		Email:             req.Email,
		Password:          req.Password,
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Phone:             req.Phone,
		DateOfBirth:       req.DateOfBirth,
		Gender:            req.Gender,
		PreferredLanguage: req.PreferredLanguage,
		MarketingConsent:  req.MarketingConsent,
		ReferredBy:        req.ReferredBy,
	})
	if err != nil {
		outcome, httpErr := registrationError(err)
		h.metrics.Registrations.WithLabelValues(outcome).Inc()
		httputil.WriteError(w, logger, httpErr)
		return
	}

	h.metrics.Registrations.WithLabelValues("success").Inc()
	logger.Info("customer registered", "user_id", newUser.ID)

	httputil.RespondJSON(w, RegisterResponse{
		Message: "Customer registered successfully",
		UserID:  newUser.ID,
	}, http.StatusCreated)
}

func registrationError(err error) (string, error) {
	switch {
	case errors.Is(err, user.ErrDuplicateEmail):
		return "conflict", httputil.ConflictError(httputil.CodeEmailAlreadyExists, "email already registered")
	case errors.Is(err, ErrEmailRequired):
		return "invalid", httputil.ValidationError(httputil.CodeEmailRequired, err.Error())
	case errors.Is(err, ErrPasswordRequired):
		return "invalid", httputil.ValidationError(httputil.CodePasswordRequired, err.Error())
	case errors.Is(err, ErrPasswordTooShort):
		return "invalid", httputil.ValidationError(httputil.CodePasswordTooShort, err.Error())
	case errors.Is(err, ErrInvalidEmailFormat):
		return "invalid", httputil.ValidationError(httputil.CodeInvalidEmailFormat, err.Error())
	case errors.Is(err, ErrFirstNameRequired), errors.Is(err, ErrLastNameRequired):
		return "invalid", httputil.ValidationError(httputil.CodeNameRequired, err.Error())
	case errors.Is(err, ErrInvalidGender), errors.Is(err, ErrInvalidDateOfBirth):
		return "invalid", httputil.ValidationError(httputil.CodeValidationFailed, err.Error())
	default:
		return "error", httputil.UpstreamError("failed to register customer", err)
	}
}

// Login handles customer login
// @Summary      Customer login
// @Description  Authenticate a customer. The session token is returned in the body and set as the auth cookie.
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} LoginResponse
// @Failure      400 {object} httputil.ErrorResponse "Missing credentials"
// @Failure      401 {object} httputil.ErrorResponse "Invalid credentials"
// @Failure      429 {object} httputil.ErrorResponse "Too many requests"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /customers/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if !h.allow(r, logger, "login") {
		httputil.RespondErrorWithCode(w, "too many requests, please try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrCredentialsRequired):
			h.metrics.Logins.WithLabelValues("invalid").Inc()
			httputil.WriteError(w, logger, httputil.ValidationError(httputil.CodeValidationFailed, err.Error()))
		case errors.Is(err, ErrInvalidCredentials):
			h.metrics.Logins.WithLabelValues("rejected").Inc()
			httputil.WriteError(w, logger, httputil.AuthError(httputil.CodeInvalidCredentials, "invalid email or password"))
		default:
			h.metrics.Logins.WithLabelValues("error").Inc()
			httputil.WriteError(w, logger, httputil.UpstreamError("failed to login", err))
		}
		return
	}

	h.metrics.Logins.WithLabelValues("success").Inc()
	logger.Info("customer logged in", "user_id", result.User.ID)

	SetAuthCookie(w, h.cookie, result.Token)
	httputil.RespondJSON(w, LoginResponse{
		Message: "Login successful",
		Token:   result.Token,
		User: UserResponse{
			ID:        result.User.ID,
			Email:     result.User.Email,
			FirstName: result.User.FirstName,
			LastName:  result.User.LastName,
			Role:      result.User.Role,
		},
	}, http.StatusOK)
}

// Logout clears the session cookie. Tokens are stateless, so there is
// nothing to revoke server side.
// @Summary      Customer logout
// @Tags         customers
// @Produce      json
// @Success      200 {object} httputil.MessageResponse
// @Router       /customers/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ClearAuthCookie(w, h.cookie)
	httputil.RespondMessage(w, "logged out", http.StatusOK)
}

// Me returns the authenticated customer
// @Summary      Current customer
// @Tags         customers
// @Produce      json
// @Security     CookieAuth
// @Success      200 {object} MeResponse
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /customers/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}
	email, _ := GetUserEmailFromContext(r.Context())

	u, profile, err := h.service.Me(r.Context(), userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			httputil.WriteError(w, logger, httputil.NotFoundError("user not found"))
			return
		}
		httputil.WriteError(w, logger, httputil.UpstreamError("failed to load user", err))
		return
	}

	logger.Debug("profile requested", "user_id", userID, "email", email)
	httputil.RespondJSON(w, MeResponse{User: u, Profile: profile}, http.StatusOK)
}

// allow applies the per-IP limit. Limiter failures let the request through.
func (h *Handler) allow(r *http.Request, logger *logging.Logger, purpose string) bool {
	ip := getClientIP(r)
	ok, err := h.rateLimiter.Allow(r.Context(), ip, purpose)
	if err != nil {
		logger.Error("failed to check IP rate limit", "error", err.Error())
		return true
	}
	if !ok {
		logger.Warn("IP rate limit exceeded", "ip", ip, "purpose", purpose)
	}
	return ok
}

// getClientIP is the peer address of the request. Forwarding headers are
// only honoured through chi's RealIP, which the router installs when the API
// runs behind a trusted proxy.
func getClientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
