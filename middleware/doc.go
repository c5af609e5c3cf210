// Package middleware exposes HTTP middleware adapters for access-token
// enforcement built on top of authcore.Engine validation.
//
// # Guards
//
//   - [RequireAuth] — rejects requests without a valid Bearer access token.
//   - [RequireRole] — RequireAuth plus a role membership check.
//
// Each guard reads the Authorization header, calls Engine.Validate, and
// injects the asserted identity into the request context via
// authcore.WithSubject.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself — all decisions are delegated to
// Engine.Validate.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to Engine).
//   - Touch the refresh store (Engine handles I/O).
//   - Distinguish token failure modes to the client (everything is 401).
package middleware
