// Package cookie moves the refresh token between server and browser. It
// knows keys, values, and expiry — never what the value means.
package cookie

import (
	"errors"
	"net/http"
	"time"
)

// Config controls the cookie attributes. SameSite may be Strict (default)
// or Lax; anything weaker is rejected at construction. Secure should be
// true everywhere except explicitly local/insecure channels.
type Config struct {
	Name     string
	Path     string
	Secure   bool
	SameSite http.SameSite
}

// Transport writes and reads one named HttpOnly cookie. The
// http.ResponseWriter and *http.Request parameters are the explicit
// response-sink and request-source capabilities; the transport holds no
// ambient request context.
type Transport struct {
	config Config
}

// NewTransport validates the configuration and returns a Transport.
func NewTransport(cfg Config) (*Transport, error) {
	if cfg.Name == "" {
		cfg.Name = "refreshToken"
	}
	if cfg.Path == "" {
		cfg.Path = "/"
	}
	switch cfg.SameSite {
	case 0:
		cfg.SameSite = http.SameSiteStrictMode
	case http.SameSiteStrictMode, http.SameSiteLaxMode:
	default:
		return nil, errors.New("samesite must be strict or lax")
	}
	return &Transport{config: cfg}, nil
}

// Name returns the configured cookie name.
func (t *Transport) Name() string {
	return t.config.Name
}

// Write attaches the cookie to the response. HttpOnly is always set; a zero
// expires yields a session-lifetime cookie.
func (t *Transport) Write(w http.ResponseWriter, value string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     t.config.Name,
		Value:    value,
		Path:     t.config.Path,
		Expires:  expires,
		HttpOnly: true,
		Secure:   t.config.Secure,
		SameSite: t.config.SameSite,
	})
}

// Clear attaches an expired empty cookie, instructing the browser to drop
// the stored value.
func (t *Transport) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     t.config.Name,
		Value:    "",
		Path:     t.config.Path,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   t.config.Secure,
		SameSite: t.config.SameSite,
	})
}

// TryRead returns the raw cookie value if present. It performs no
// validation of the value's meaning.
func (t *Transport) TryRead(r *http.Request) (string, bool) {
	c, err := r.Cookie(t.config.Name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}
