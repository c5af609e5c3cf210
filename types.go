package authcore

import "context"

// Identity is the read-only user record supplied by the external user
// store. The core never writes identities; password hashes never cross this
// boundary.
type Identity struct {
	ID       int64
	Username string
	Email    string
	Roles    []string
}

// UserStore is the credential collaborator the core requires.
//
// FindByUsernameOrEmail must match the identifier case-insensitively
// against both the username and the email, returning (nil, nil) when no
// identity matches. VerifyPassword owns the hashing scheme end to end.
// RolesOf returns the user's current roles; Refresh consults it so role
// changes propagate within one access-token lifetime.
type UserStore interface {
	FindByUsernameOrEmail(ctx context.Context, identifier string) (*Identity, error)
	VerifyPassword(ctx context.Context, identity *Identity, password string) (bool, error)
	RolesOf(ctx context.Context, userID int64) ([]string, error)
}

// TokenPair is returned by Login and Refresh. The refresh token must only
// ever reach the client through the cookie transport; the access token goes
// in the response body or header.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthResult is the identity asserted by a validated access token.
type AuthResult struct {
	UserID int64
	Roles  []string
}
