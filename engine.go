package authcore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/recipeshare/authcore/authz"
	"github.com/recipeshare/authcore/cookie"
	"github.com/recipeshare/authcore/internal/flows"
	"github.com/recipeshare/authcore/jwt"
	"github.com/recipeshare/authcore/refresh"
)

// Engine is the session orchestrator: it composes the access-token issuer,
// the refresh-token store, the cookie transport, and the ownership gate.
// All methods are safe for concurrent use after Build.
type Engine struct {
	config       Config
	jwtManager   *jwt.Manager
	refreshStore refresh.Store
	cookies      *cookie.Transport
	users        UserStore
	gate         *authz.Gate
	logger       *zap.Logger
}

// Login authenticates the identifier/password pair and issues an
// access/refresh token pair. An unknown identifier and a wrong password are
// indistinguishable: both return [ErrInvalidCredentials].
func (e *Engine) Login(ctx context.Context, identifier, password string) (TokenPair, error) {
	if e == nil {
		return TokenPair{}, ErrEngineNotReady
	}

	access, refreshToken, err := flows.RunLogin(ctx, identifier, password, e.loginDeps())
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refreshToken}, nil
}

// LoginHTTP is Login plus cookie transport: on success the refresh token is
// written as an HttpOnly cookie on w and only the access token is returned.
func (e *Engine) LoginHTTP(ctx context.Context, w http.ResponseWriter, identifier, password string) (string, error) {
	pair, err := e.Login(ctx, identifier, password)
	if err != nil {
		return "", err
	}
	e.cookies.Write(w, pair.RefreshToken, time.Now().Add(e.config.Refresh.TTL))
	return pair.AccessToken, nil
}

// Refresh rotates the presented refresh token and issues a new pair. The
// access token carries freshly looked-up roles. Reuse of a rotated token
// revokes every live token for the bound user before [ErrReused] surfaces.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	if e == nil {
		return TokenPair{}, ErrEngineNotReady
	}

	result, err := flows.RunRefresh(ctx, refreshToken, e.refreshDeps())
	if err != nil {
		if errors.Is(err, ErrReused) {
			e.logger.Warn("refresh token replay detected, user chain revoked",
				zap.Int64("user_id", result.UserID))
		}
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: result.AccessToken, RefreshToken: result.RefreshToken}, nil
}

// RefreshHTTP reads the refresh token from the request cookie, rotates it,
// and rewrites the cookie with the replacement. On any rotation failure the
// cookie is cleared: the client's stored token is dead either way.
func (e *Engine) RefreshHTTP(ctx context.Context, w http.ResponseWriter, r *http.Request) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}

	token, found := e.cookies.TryRead(r)
	if !found {
		e.cookies.Clear(w)
		return "", ErrNotFound
	}

	pair, err := e.Refresh(ctx, token)
	if err != nil {
		e.cookies.Clear(w)
		return "", err
	}

	e.cookies.Write(w, pair.RefreshToken, time.Now().Add(e.config.Refresh.TTL))
	return pair.AccessToken, nil
}

// Logout revokes the refresh token. It always succeeds from the caller's
// perspective, even when the token is unknown, already revoked, or the
// store is briefly unreachable.
func (e *Engine) Logout(ctx context.Context, refreshToken string) {
	if e == nil {
		return
	}
	flows.RunLogout(ctx, refreshToken, flows.LogoutDeps{
		Revoke: e.refreshStore.Revoke,
		Warn:   e.warn,
	})
}

// LogoutHTTP is Logout plus cookie transport: the cookie is cleared whether
// or not it held a live token.
func (e *Engine) LogoutHTTP(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if e == nil {
		return
	}
	if token, found := e.cookies.TryRead(r); found {
		e.Logout(ctx, token)
	}
	e.cookies.Clear(w)
}

// Validate verifies an access token against the current wall clock and
// returns the asserted identity. Errors: [ErrInvalidSignature],
// [ErrExpired], [ErrMalformedToken].
func (e *Engine) Validate(tokenStr string) (AuthResult, error) {
	if e == nil {
		return AuthResult{}, ErrEngineNotReady
	}

	claims, err := e.jwtManager.Validate(tokenStr, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrExpired):
			return AuthResult{}, ErrExpired
		case errors.Is(err, jwt.ErrMalformed):
			return AuthResult{}, ErrMalformedToken
		default:
			return AuthResult{}, ErrInvalidSignature
		}
	}
	return AuthResult{UserID: claims.UserID, Roles: claims.Roles}, nil
}

// Authorize decides whether the subject may mutate the resource: existence
// first ([ErrNotFound]), then owner-or-admin ([ErrForbidden]).
func (e *Engine) Authorize(ctx context.Context, resourceID, subjectID int64, roles []string) error {
	if e == nil || e.gate == nil {
		return ErrEngineNotReady
	}

	err := e.gate.Authorize(ctx, resourceID, subjectID, roles)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, authz.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, authz.ErrForbidden):
		return ErrForbidden
	default:
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
}

// CookieName returns the refresh cookie's configured name.
func (e *Engine) CookieName() string {
	return e.cookies.Name()
}

func (e *Engine) warn(msg string, args ...any) {
	e.logger.Sugar().Warnw(msg, args...)
}

func (e *Engine) loginDeps() flows.LoginDeps {
	return flows.LoginDeps{
		Authenticate: func(ctx context.Context, identifier, password string) (flows.Identity, bool, error) {
			identity, err := e.users.FindByUsernameOrEmail(ctx, identifier)
			if err != nil {
				return flows.Identity{}, false, err
			}
			if identity == nil {
				return flows.Identity{}, false, nil
			}
			ok, err := e.users.VerifyPassword(ctx, identity, password)
			if err != nil {
				return flows.Identity{}, false, err
			}
			if !ok {
				return flows.Identity{}, false, nil
			}
			return flows.Identity{ID: identity.ID, Roles: identity.Roles}, true, nil
		},
		IssueAccess: e.jwtManager.Issue,
		IssueRefresh: func(ctx context.Context, userID int64, now time.Time) (string, error) {
			token, err := e.refreshStore.Issue(ctx, userID, now)
			if err != nil {
				return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
			}
			return token, nil
		},
		Warn: e.warn,
		Errors: flows.LoginErrors{
			EngineNotReady:     ErrEngineNotReady,
			InvalidCredentials: ErrInvalidCredentials,
			StoreUnavailable:   ErrStoreUnavailable,
		},
	}
}

func (e *Engine) refreshDeps() flows.RefreshDeps {
	return flows.RefreshDeps{
		Rotate:      e.refreshStore.Rotate,
		RolesOf:     e.users.RolesOf,
		IssueAccess: e.jwtManager.Issue,
		RevokeAll:   e.refreshStore.RevokeAllForUser,
		Warn:        e.warn,
		Errors: flows.RefreshErrors{
			EngineNotReady:   ErrEngineNotReady,
			NotFound:         ErrNotFound,
			Expired:          ErrExpired,
			Reused:           ErrReused,
			StoreUnavailable: ErrStoreUnavailable,

			StoreNotFound: refresh.ErrNotFound,
			StoreExpired:  refresh.ErrTokenExpired,
			StoreReused:   refresh.ErrReused,
		},
	}
}
