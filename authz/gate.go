// Package authz implements the ownership gate consumed by every mutating
// operation on an owned resource.
//
// The decision order is a contract, not an implementation detail: existence
// is checked before ownership, so a missing resource is always ErrNotFound —
// even for a caller who would fail ownership — and an existing resource
// owned by someone else is always ErrForbidden, never disguised as
// ErrNotFound.
package authz

import (
	"context"
	"errors"
	"fmt"
)

// AdminRole bypasses the ownership check.
const AdminRole = "Admin"

var (
	// ErrNotFound is returned when the resource does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrForbidden is returned when the subject neither owns the resource
	// nor holds AdminRole.
	ErrForbidden = errors.New("user id does not match")
	// ErrUnavailable wraps owner-lookup failures.
	ErrUnavailable = errors.New("owner lookup unavailable")
)

// OwnerProvider resolves a resource to its owning user. ok is false when the
// resource does not exist; err is reserved for lookup failures.
type OwnerProvider interface {
	OwnerID(ctx context.Context, resourceID int64) (ownerID int64, ok bool, err error)
}

// Gate is the decision procedure over an OwnerProvider. It is stateless and
// recomputes every decision per call; decisions are never cached or stored.
type Gate struct {
	owners OwnerProvider
}

// NewGate creates a Gate over the given provider.
func NewGate(owners OwnerProvider) (*Gate, error) {
	if owners == nil {
		return nil, errors.New("owner provider is required")
	}
	return &Gate{owners: owners}, nil
}

// Authorize decides whether subjectID, holding roles, may mutate resourceID.
// Existence first, then owner-or-admin.
func (g *Gate) Authorize(ctx context.Context, resourceID, subjectID int64, roles []string) error {
	ownerID, ok, err := g.owners.OwnerID(ctx, resourceID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !ok {
		return ErrNotFound
	}

	if ownerID == subjectID {
		return nil
	}
	for _, role := range roles {
		if role == AdminRole {
			return nil
		}
	}
	return ErrForbidden
}
