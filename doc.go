// Package authcore is the authentication and authorization core of the
// recipeshare backend: JWT access tokens, rotating opaque refresh tokens
// delivered through HttpOnly cookies, and the ownership gate that guards
// every mutating operation on an owned resource.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// authcore is the public surface. It exposes [Engine], [Builder], [Config],
// the collaborator interfaces ([UserStore], [authz.OwnerProvider]) and value
// types. Flow orchestration lives under internal/ and is never exported.
// Token mechanics live in the jwt and refresh subpackages, browser transport
// in cookie, and the ownership decision procedure in authz.
//
// # What this package must NOT do
//
//   - Expose Redis or Postgres clients, store internals, or token encoding
//     details in its public API.
//   - Store domain entities: recipes, users, and their relations belong to
//     external collaborators reached only through the declared interfaces.
//   - Mutate the refresh-token store anywhere outside the refresh package.
package authcore
