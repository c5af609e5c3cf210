package flows

import "context"

// LogoutDeps captures logout flow dependencies.
type LogoutDeps struct {
	Revoke func(ctx context.Context, token string) error
	Warn   func(msg string, args ...any)
}

// RunLogout revokes the presented token. Logout always succeeds from the
// caller's perspective: an invalid token is already logged out, and a store
// failure is only worth a warning because the token will expire on its own.
func RunLogout(ctx context.Context, token string, deps LogoutDeps) {
	if deps.Warn == nil {
		deps.Warn = func(string, ...any) {}
	}
	if deps.Revoke == nil || token == "" {
		return
	}
	if err := deps.Revoke(ctx, token); err != nil {
		deps.Warn("authcore: refresh token revocation failed on logout")
	}
}
