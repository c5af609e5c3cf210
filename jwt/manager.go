package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrSignature covers signature mismatches and issuer mismatches: the
	// token is structurally valid but was not minted by this issuer.
	ErrSignature = errors.New("invalid token signature")
	// ErrExpired is returned when the token's exp claim is at or before the
	// validation clock.
	ErrExpired = errors.New("token expired")
	// ErrMalformed is returned when the token cannot be parsed at all.
	ErrMalformed = errors.New("malformed token")
)

// Config holds the immutable issuance parameters: the server-held HS256
// secret, the issuer string embedded in and required of every token, and the
// access-token lifetime.
type Config struct {
	Secret    []byte
	Issuer    string
	AccessTTL time.Duration
}

// Manager mints and validates access tokens. It holds no mutable state and
// is safe for concurrent use.
type Manager struct {
	config Config
}

// AccessClaims is the claim set carried by every access token. UserID and
// Roles are the identity assertion; the registered claims carry issuer,
// issued-at, expiry, and a uuid token id.
type AccessClaims struct {
	UserID int64    `json:"uid"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

// NewManager validates the configuration and returns a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("hs256 requires a signing secret")
	}
	if cfg.Issuer == "" {
		return nil, errors.New("issuer must be configured")
	}
	if cfg.AccessTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	return &Manager{config: cfg}, nil
}

// Issue mints a signed access token for the subject with exp = now + TTL.
// Pure function of its inputs and the configuration; no side effects.
func (m *Manager) Issue(userID int64, roles []string, now time.Time) (string, error) {
	claims := AccessClaims{
		UserID: userID,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.AccessTTL)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.config.Secret)
}

// Validate verifies signature, expiry against the supplied clock, and issuer.
// No leeway is granted: a token is expired the instant now passes exp. The
// signature check is the HMAC library's constant-time comparison.
func (m *Manager) Validate(tokenStr string, now time.Time) (*AccessClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.config.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	token, err := parser.ParseWithClaims(tokenStr, &AccessClaims{}, func(t *jwt.Token) (interface{}, error) {
		return m.config.Secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrMalformed
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		default:
			// Signature mismatch, issuer mismatch, unexpected algorithm:
			// the token was not minted here.
			return nil, ErrSignature
		}
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return nil, ErrMalformed
	}
	return claims, nil
}

// TTL returns the configured access-token lifetime.
func (m *Manager) TTL() time.Duration {
	return m.config.AccessTTL
}
