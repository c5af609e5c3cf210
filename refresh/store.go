package refresh

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when the presented token has no record.
	ErrNotFound = errors.New("refresh token not found")
	// ErrTokenExpired is returned when the record exists but its expiry has
	// passed. Expiry is checked before liveness.
	ErrTokenExpired = errors.New("refresh token expired")
	// ErrReused is returned when the record exists, is unexpired, and has
	// already been rotated or revoked.
	ErrReused = errors.New("refresh token already rotated")
	// ErrStoreUnavailable wraps backend outages and timeouts.
	ErrStoreUnavailable = errors.New("refresh store unavailable")
)

// MinEntropyBytes is the smallest accepted token entropy (128 bits).
const MinEntropyBytes = 16

// DefaultEntropyBytes is used when the configuration does not say otherwise.
const DefaultEntropyBytes = 32

// Store is the refresh-token issuer and persistence contract. Exactly one
// live token exists per issuance event; Rotate is single-use and serialized
// against concurrent attempts on the same token by the implementation.
type Store interface {
	// Issue generates a fresh opaque token for userID expiring at
	// now + TTL and persists its hash.
	Issue(ctx context.Context, userID int64, now time.Time) (string, error)

	// Rotate validates token and atomically replaces it with a new one
	// bound to the same user. Errors: ErrNotFound, ErrTokenExpired,
	// ErrReused (userID is still returned so the caller can revoke the
	// chain), or a wrapped ErrStoreUnavailable.
	Rotate(ctx context.Context, token string, now time.Time) (newToken string, userID int64, err error)

	// Revoke marks the token dead. Idempotent: unknown or already-dead
	// tokens are not an error.
	Revoke(ctx context.Context, token string) error

	// RevokeAllForUser marks every live token for the user dead.
	RevokeAllForUser(ctx context.Context, userID int64) error
}

// NewToken returns entropy random bytes from crypto/rand, base64url-encoded
// without padding.
func NewToken(entropy int) (string, error) {
	if entropy < MinEntropyBytes {
		return "", errors.New("refresh token entropy below minimum")
	}
	raw := make([]byte, entropy)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// HashToken is the at-rest form of a token: hex-encoded SHA-256.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
