package authcore

import (
	"errors"
	"time"

	"github.com/recipeshare/authcore/cookie"
	"github.com/recipeshare/authcore/refresh"
)

// Config is the immutable engine configuration. Construct it explicitly and
// pass it to the builder; there is no global instance, so tests can run
// engines with distinct secrets and TTLs side by side.
type Config struct {
	JWT     JWTConfig
	Refresh RefreshConfig
	Cookie  cookie.Config
}

// JWTConfig configures the access-token issuer.
type JWTConfig struct {
	Issuer    string
	Secret    []byte
	AccessTTL time.Duration
}

// RefreshConfig configures the refresh-token issuer and store.
type RefreshConfig struct {
	TTL          time.Duration
	EntropyBytes int
	RedisPrefix  string
}

// DefaultConfig returns the production baseline: 15-minute access tokens,
// 7-day refresh tokens, 32 bytes of refresh entropy, and a Secure
// Strict-SameSite cookie. Issuer and Secret have no safe default and must
// be set by the caller.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL: 15 * time.Minute,
		},
		Refresh: RefreshConfig{
			TTL:          7 * 24 * time.Hour,
			EntropyBytes: refresh.DefaultEntropyBytes,
			RedisPrefix:  "ac",
		},
		Cookie: cookie.Config{
			Name:   "refreshToken",
			Path:   "/",
			Secure: true,
		},
	}
}

func validateConfig(cfg Config) error {
	if len(cfg.JWT.Secret) == 0 {
		return errors.New("JWT.Secret must be configured")
	}
	if cfg.JWT.Issuer == "" {
		return errors.New("JWT.Issuer must be configured")
	}
	if cfg.JWT.AccessTTL <= 0 {
		return errors.New("JWT.AccessTTL must be positive")
	}
	if cfg.Refresh.TTL <= 0 {
		return errors.New("Refresh.TTL must be positive")
	}
	if cfg.Refresh.EntropyBytes != 0 && cfg.Refresh.EntropyBytes < refresh.MinEntropyBytes {
		return errors.New("Refresh.EntropyBytes below minimum")
	}
	return nil
}
