// Package refresh implements issuance, single-use rotation, and revocation
// of opaque refresh tokens.
//
// # Token format
//
// A token is raw output of a cryptographically secure random source,
// base64url-encoded without padding. Tokens are never stored in plaintext —
// the stores retain only the SHA-256 hash.
//
// # Rotation protocol
//
// Rotate atomically marks the presented token dead and issues a replacement
// bound to the same user. The dead record is kept as a tombstone until the
// token's original expiry, so replaying a rotated token is distinguishable
// from presenting an unknown one: the former is a compromise signal
// ([ErrReused]), the latter plain [ErrNotFound]. At most one of any number
// of concurrent rotations of the same token succeeds; the compare-and-swap
// happens inside the storage layer, never as a read-then-write in Go.
//
// # What this package must NOT do
//
//   - Mint access tokens or know anything about JWT claims.
//   - Decide revocation policy: reuse-triggered mass revocation is the
//     orchestrator's call, built from RevokeAllForUser.
package refresh
