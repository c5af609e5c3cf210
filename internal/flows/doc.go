// Package flows holds the login, refresh, and logout orchestration logic as
// dependency-struct functions with no root package imports. The root engine
// injects collaborators and sentinel errors; flows decide ordering and
// failure folding.
package flows
