package flows

import (
	"context"
	"fmt"
	"time"
)

// Identity is the flow-local slice of a user record: just enough to mint
// tokens.
type Identity struct {
	ID    int64
	Roles []string
}

// LoginErrors carries host-level sentinel errors used by the login flow.
type LoginErrors struct {
	EngineNotReady     error
	InvalidCredentials error
	StoreUnavailable   error
}

// LoginDeps captures login flow dependencies.
type LoginDeps struct {
	// Authenticate resolves the identifier (username or email,
	// case-insensitive) and verifies the password. found is false for both
	// an unknown identifier and a failed verification, so the flow cannot
	// leak which one happened.
	Authenticate func(ctx context.Context, identifier, password string) (identity Identity, found bool, err error)

	IssueAccess  func(userID int64, roles []string, now time.Time) (string, error)
	IssueRefresh func(ctx context.Context, userID int64, now time.Time) (string, error)

	Now    func() time.Time
	Warn   func(msg string, args ...any)
	Errors LoginErrors
}

// RunLogin executes the login flow: authenticate, persist a refresh token,
// mint an access token.
func RunLogin(ctx context.Context, identifier, password string, deps LoginDeps) (access, refreshToken string, err error) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Warn == nil {
		deps.Warn = func(string, ...any) {}
	}
	if deps.Authenticate == nil || deps.IssueAccess == nil || deps.IssueRefresh == nil {
		return "", "", deps.Errors.EngineNotReady
	}

	if identifier == "" || password == "" {
		return "", "", deps.Errors.InvalidCredentials
	}

	identity, found, err := deps.Authenticate(ctx, identifier, password)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", deps.Errors.StoreUnavailable, err)
	}
	if !found {
		return "", "", deps.Errors.InvalidCredentials
	}

	now := deps.Now()

	refreshToken, err = deps.IssueRefresh(ctx, identity.ID, now)
	if err != nil {
		return "", "", err
	}

	access, err = deps.IssueAccess(identity.ID, identity.Roles, now)
	if err != nil {
		return "", "", err
	}

	return access, refreshToken, nil
}
