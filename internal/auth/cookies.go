package auth

import (
	"net/http"
	"time"
)

// CookieSettings control how the session cookie is written
type CookieSettings struct {
	Name     string
	Secure   bool
	Duration time.Duration
}

// SetAuthCookie stores the session token in an HttpOnly cookie
func SetAuthCookie(w http.ResponseWriter, s CookieSettings, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.Duration.Seconds()),
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearAuthCookie expires the session cookie
func ClearAuthCookie(w http.ResponseWriter, s CookieSettings) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// GetTokenFromCookie returns the session token carried by the named cookie
func GetTokenFromCookie(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		return "", err
	}
	if c.Value == "" {
		return "", http.ErrNoCookie
	}
	return c.Value, nil
}
