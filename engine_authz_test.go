package authcore

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestValidateMapsTokenErrors(t *testing.T) {
	engine := newTestEngine(t, testConfig(), seededUserStore())
	pair := mustLogin(t, engine)

	if _, err := engine.Validate("not-a-token"); !errors.Is(err, ErrMalformedToken) {
		t.Fatalf("expected ErrMalformedToken, got %v", err)
	}

	parts := strings.Split(pair.AccessToken, ".")
	sig := []byte(parts[2])
	if sig[10] == 'A' {
		sig[10] = 'B'
	} else {
		sig[10] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)
	if _, err := engine.Validate(tampered); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestValidateExpiredAccessToken(t *testing.T) {
	cfg := testConfig()
	cfg.JWT.AccessTTL = time.Nanosecond

	engine := newTestEngine(t, cfg, seededUserStore())
	pair := mustLogin(t, engine)

	if _, err := engine.Validate(pair.AccessToken); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestAuthorizeOwner(t *testing.T) {
	engine := newTestEngine(t, testConfig(), seededUserStore())

	if err := engine.Authorize(context.Background(), 2, 1, []string{"User"}); err != nil {
		t.Fatalf("owner should be allowed: %v", err)
	}
}

func TestAuthorizeNonOwner(t *testing.T) {
	engine := newTestEngine(t, testConfig(), seededUserStore())

	err := engine.Authorize(context.Background(), 2, 99, []string{"User"})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAuthorizeAdminBypass(t *testing.T) {
	engine := newTestEngine(t, testConfig(), seededUserStore())

	if err := engine.Authorize(context.Background(), 2, 99, []string{"Admin"}); err != nil {
		t.Fatalf("admin should bypass ownership: %v", err)
	}
}

func TestAuthorizeMissingResourceBeatsOwnership(t *testing.T) {
	engine := newTestEngine(t, testConfig(), seededUserStore())

	// Resource 0 does not exist; even an admin sees NotFound, never Forbidden.
	for _, roles := range [][]string{nil, {"User"}, {"Admin"}} {
		err := engine.Authorize(context.Background(), 0, 99, roles)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound for roles %v, got %v", roles, err)
		}
	}
}

func TestAuthorizeWithoutGate(t *testing.T) {
	seed := newTestEngine(t, testConfig(), seededUserStore())

	engine, err := New().
		WithConfig(testConfig()).
		WithRefreshStore(seed.refreshStore).
		WithUserStore(seededUserStore()).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if err := engine.Authorize(context.Background(), 2, 1, nil); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("expected ErrEngineNotReady without owner provider, got %v", err)
	}
}

func TestSubjectContextRoundtrip(t *testing.T) {
	ctx := context.Background()

	if _, ok := SubjectFromContext(ctx); ok {
		t.Fatal("expected no subject on bare context")
	}

	subject := AuthResult{UserID: 1, Roles: []string{"User"}}
	ctx = WithSubject(ctx, subject)

	got, ok := SubjectFromContext(ctx)
	if !ok || got.UserID != 1 {
		t.Fatalf("expected stored subject, got %+v ok=%v", got, ok)
	}
}
