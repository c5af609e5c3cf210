package flows

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// RefreshErrors carries host-level sentinel errors surfaced by the refresh
// flow, plus the store-level sentinels the flow must recognize.
type RefreshErrors struct {
	EngineNotReady   error
	NotFound         error
	Expired          error
	Reused           error
	StoreUnavailable error

	StoreNotFound error
	StoreExpired  error
	StoreReused   error
}

// RefreshDeps captures refresh flow dependencies.
type RefreshDeps struct {
	Rotate      func(ctx context.Context, token string, now time.Time) (newToken string, userID int64, err error)
	RolesOf     func(ctx context.Context, userID int64) ([]string, error)
	IssueAccess func(userID int64, roles []string, now time.Time) (string, error)
	RevokeAll   func(ctx context.Context, userID int64) error

	Now    func() time.Time
	Warn   func(msg string, args ...any)
	Errors RefreshErrors
}

// RefreshResult carries the issued pair on success.
type RefreshResult struct {
	AccessToken  string
	RefreshToken string
	UserID       int64
}

// RunRefresh executes refresh rotation and re-issuance. Reuse of a rotated
// token revokes the user's whole chain before the error surfaces: once a
// dead token comes back, every sibling is suspect.
func RunRefresh(ctx context.Context, token string, deps RefreshDeps) (RefreshResult, error) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Warn == nil {
		deps.Warn = func(string, ...any) {}
	}
	if deps.Rotate == nil || deps.RolesOf == nil || deps.IssueAccess == nil || deps.RevokeAll == nil {
		return RefreshResult{}, deps.Errors.EngineNotReady
	}
	if token == "" {
		return RefreshResult{}, deps.Errors.NotFound
	}

	now := deps.Now()

	newToken, userID, err := deps.Rotate(ctx, token, now)
	if err != nil {
		switch {
		case errors.Is(err, deps.Errors.StoreReused):
			if userID != 0 {
				if revErr := deps.RevokeAll(ctx, userID); revErr != nil {
					deps.Warn("authcore: chain revocation after reuse failed", "user_id", userID)
				}
			}
			return RefreshResult{UserID: userID}, deps.Errors.Reused
		case errors.Is(err, deps.Errors.StoreNotFound):
			return RefreshResult{}, deps.Errors.NotFound
		case errors.Is(err, deps.Errors.StoreExpired):
			return RefreshResult{}, deps.Errors.Expired
		default:
			return RefreshResult{}, fmt.Errorf("%w: %v", deps.Errors.StoreUnavailable, err)
		}
	}

	// Roles may have changed since login; the new access token carries the
	// store's current view, not the one captured at login time.
	roles, err := deps.RolesOf(ctx, userID)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("%w: %v", deps.Errors.StoreUnavailable, err)
	}

	access, err := deps.IssueAccess(userID, roles, now)
	if err != nil {
		return RefreshResult{}, err
	}

	return RefreshResult{
		AccessToken:  access,
		RefreshToken: newToken,
		UserID:       userID,
	}, nil
}
