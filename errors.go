package authcore

import "errors"

var (
	// ErrInvalidCredentials is returned by Login for both an unknown
	// identifier and a wrong password. The two cases are deliberately
	// indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidSignature is returned when an access token fails signature
	// or issuer verification.
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrMalformedToken is returned when an access token cannot be parsed.
	ErrMalformedToken = errors.New("malformed token")
	// ErrExpired is returned when an access or refresh token is past its
	// expiry timestamp.
	ErrExpired = errors.New("token expired")
	// ErrNotFound is returned when a refresh token or a guarded resource
	// does not exist.
	ErrNotFound = errors.New("not found")
	// ErrReused is returned when an already-rotated refresh token is
	// presented again. All live tokens for the affected user are revoked
	// before this error is surfaced.
	ErrReused = errors.New("refresh token reuse detected")
	// ErrForbidden is returned when the acting subject neither owns the
	// resource nor holds the administrative role.
	ErrForbidden = errors.New("user id does not match")
	// ErrStoreUnavailable wraps storage timeouts and outages. Callers may
	// retry with backoff; every other error above is terminal.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrEngineNotReady is returned when an Engine method is called on an
	// engine missing a required collaborator.
	ErrEngineNotReady = errors.New("engine not initialized")
)
