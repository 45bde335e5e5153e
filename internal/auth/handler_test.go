package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lankamarket/lankamarket-api/internal/httputil"
	"github.com/lankamarket/lankamarket-api/internal/metrics"
)

type stubLimiter struct {
	allow bool
	err   error
	calls []string
}

func (l *stubLimiter) Allow(ctx context.Context, ip, purpose string) (bool, error) {
	l.calls = append(l.calls, ip+"|"+purpose)
	return l.allow, l.err
}

type handlerFixture struct {
	*serviceFixture
	limiter *stubLimiter
	metrics *metrics.Metrics
	router  chi.Router
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	f := &handlerFixture{
		serviceFixture: newServiceFixture(t),
		limiter:        &stubLimiter{allow: true},
		metrics:        metrics.New(),
	}
	h := NewHandler(f.svc, f.limiter, f.metrics, CookieSettings{Name: "auth_token", Duration: time.Hour})
	mw := NewMiddleware(f.tokens, "auth_token")

	r := chi.NewRouter()
	r.Post("/customers/register", h.Register)
	r.Post("/customers/login", h.Login)
	r.Post("/customers/logout", h.Logout)
	r.With(mw.RequireAuth).Get("/customers/me", h.Me)
	f.router = r
	return f
}

func (f *handlerFixture) do(method, path, body string, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, m := range mutate {
		m(req)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

const registerBody = `{"email":"kamala@example.lk","password":"s3cretpass","first_name":"Kamala","last_name":"Silva"}`

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httputil.ErrorResponse {
	t.Helper()
	var resp httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHandler_Register(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(http.MethodPost, "/customers/register", registerBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp RegisterResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Customer registered successfully", resp.Message)

	_, err := f.store.GetByID(context.Background(), resp.UserID)
	assert.NoError(t, err)
	assert.Equal(t, []string{"192.0.2.1|register"}, f.limiter.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Registrations.WithLabelValues("success")))
}

func TestHandler_Register_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"malformed body", `{"email":`, http.StatusBadRequest, httputil.CodeInvalidRequestBody},
		{"missing email", `{"password":"s3cretpass","first_name":"A","last_name":"B"}`, http.StatusBadRequest, httputil.CodeEmailRequired},
		{"missing password", `{"email":"a@example.lk","first_name":"A","last_name":"B"}`, http.StatusBadRequest, httputil.CodePasswordRequired},
		{"short password", `{"email":"a@example.lk","password":"abc","first_name":"A","last_name":"B"}`, http.StatusBadRequest, httputil.CodePasswordTooShort},
		{"bad email", `{"email":"nope","password":"s3cretpass","first_name":"A","last_name":"B"}`, http.StatusBadRequest, httputil.CodeInvalidEmailFormat},
		{"missing name", `{"email":"a@example.lk","password":"s3cretpass","last_name":"B"}`, http.StatusBadRequest, httputil.CodeNameRequired},
		{"bad gender", `{"email":"a@example.lk","password":"s3cretpass","first_name":"A","last_name":"B","gender":"x"}`, http.StatusBadRequest, httputil.CodeValidationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHandlerFixture(t)
			rec := f.do(http.MethodPost, "/customers/register", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, rec).Code)
		})
	}
}

func TestHandler_Register_Conflict(t *testing.T) {
	f := newHandlerFixture(t)

	require.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/customers/register", registerBody).Code)

	rec := f.do(http.MethodPost, "/customers/register", registerBody)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, httputil.CodeEmailAlreadyExists, decodeError(t, rec).Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Registrations.WithLabelValues("conflict")))
}

func TestHandler_Register_StoreFailureHidesDetail(t *testing.T) {
	f := newHandlerFixture(t)
	f.store.profileErr = errStoreDown

	rec := f.do(http.MethodPost, "/customers/register", registerBody)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, httputil.CodeInternalError, resp.Code)
	assert.NotContains(t, resp.Error, "connection refused")
}

func TestHandler_RateLimited(t *testing.T) {
	f := newHandlerFixture(t)
	f.limiter.allow = false

	rec := f.do(http.MethodPost, "/customers/register", registerBody)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, httputil.CodeTooManyRequests, decodeError(t, rec).Code)
	assert.Zero(t, f.store.userCount())

	rec = f.do(http.MethodPost, "/customers/login", `{"email":"a@example.lk","password":"x"}`, func(r *http.Request) {
		r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "203.0.113.7|login", f.limiter.calls[1])
}

func TestHandler_RateLimiterErrorLetsRequestThrough(t *testing.T) {
	f := newHandlerFixture(t)
	f.limiter.allow = false
	f.limiter.err = errors.New("redis unavailable")

	rec := f.do(http.MethodPost, "/customers/register", registerBody)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestHandler_LoginAndMe(t *testing.T) {
	f := newHandlerFixture(t)
	require.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/customers/register", registerBody).Code)

	rec := f.do(http.MethodPost, "/customers/login", `{"email":"kamala@example.lk","password":"s3cretpass"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Login successful", resp.Message)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "kamala@example.lk", resp.User.Email)
	assert.Equal(t, "Kamala", resp.User.FirstName)
	assert.NotContains(t, rec.Body.String(), "password")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "auth_token", cookies[0].Name)
	assert.Equal(t, resp.Token, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	rec = f.do(http.MethodGet, "/customers/me", "", func(r *http.Request) { r.AddCookie(cookies[0]) })
	require.Equal(t, http.StatusOK, rec.Code)

	var me MeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, resp.User.ID, me.User.ID)
	require.NotNil(t, me.Profile)
	assert.Equal(t, "en", me.Profile.PreferredLanguage)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Logins.WithLabelValues("success")))
}

func TestHandler_Login_Errors(t *testing.T) {
	f := newHandlerFixture(t)
	require.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/customers/register", registerBody).Code)

	rec := f.do(http.MethodPost, "/customers/login", `{"email":"kamala@example.lk","password":"wrongpass"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, httputil.CodeInvalidCredentials, decodeError(t, rec).Code)

	unknown := f.do(http.MethodPost, "/customers/login", `{"email":"ghost@example.lk","password":"wrongpass"}`)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, rec.Body.String(), unknown.Body.String(), "unknown email and wrong password must look the same")

	rec = f.do(http.MethodPost, "/customers/login", `{"email":"kamala@example.lk"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/customers/login", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, httputil.CodeInvalidRequestBody, decodeError(t, rec).Code)

	assert.Empty(t, rec.Result().Cookies())
}

func TestHandler_Logout(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(http.MethodPost, "/customers/logout", "")
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "auth_token", cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestHandler_Me_Unauthenticated(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(http.MethodGet, "/customers/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, httputil.CodeMissingAuth, decodeError(t, rec).Code)
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		want       string
	}{
		{"ipv4 with port", "198.51.100.4:5123", "198.51.100.4"},
		{"ipv6 with port", "[2001:db8::7]:443", "2001:db8::7"},
		{"address set by RealIP", "203.0.113.1", "203.0.113.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			req.Header.Set("X-Forwarded-For", "10.9.9.9")
			req.Header.Set("X-Real-IP", "10.8.8.8")
			assert.Equal(t, tt.want, getClientIP(req))
		})
	}
}

func TestHandler_RateLimitKeyIgnoresForwardingHeaders(t *testing.T) {
	f := newHandlerFixture(t)

	for _, spoofed := range []string{"10.0.0.1", "10.0.0.2"} {
		f.do(http.MethodPost, "/customers/login", `{"email":"a@b.lk","password":"x"}`, func(r *http.Request) {
			r.RemoteAddr = "198.51.100.4:5123"
			r.Header.Set("X-Forwarded-For", spoofed)
		})
	}

	require.Len(t, f.limiter.calls, 2)
	assert.Equal(t, f.limiter.calls[0], f.limiter.calls[1])
	assert.True(t, strings.HasPrefix(f.limiter.calls[0], "198.51.100.4|"))
}
