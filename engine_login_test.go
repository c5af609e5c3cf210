package authcore

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
)

func TestLoginSuccess(t *testing.T) {
	engine := newTestEngine(t, testConfig(), seededUserStore())

	pair := mustLogin(t, engine)
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}

	subject, err := engine.Validate(pair.AccessToken)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if subject.UserID != 1 {
		t.Fatalf("expected user id 1, got %d", subject.UserID)
	}
	if len(subject.Roles) != 1 || subject.Roles[0] != "User" {
		t.Fatalf("unexpected roles: %v", subject.Roles)
	}
}

func TestLoginByEmailCaseInsensitive(t *testing.T) {
	engine := newTestEngine(t, testConfig(), seededUserStore())

	for _, identifier := range []string{"user1@mailinator.com", "USER1@MAILINATOR.COM", "User1"} {
		if _, err := engine.Login(context.Background(), identifier, "pass"); err != nil {
			t.Fatalf("login with %q failed: %v", identifier, err)
		}
	}
}

func TestLoginFailureIndistinguishable(t *testing.T) {
	engine := newTestEngine(t, testConfig(), seededUserStore())
	ctx := context.Background()

	_, unknownErr := engine.Login(ctx, "nobody", "pass")
	_, wrongPassErr := engine.Login(ctx, "user1", "wrong")

	if !errors.Is(unknownErr, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", unknownErr)
	}
	if !errors.Is(wrongPassErr, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", wrongPassErr)
	}
	// An attacker probing for valid usernames must see identical failures.
	if unknownErr.Error() != wrongPassErr.Error() {
		t.Fatalf("login failures differ: %q vs %q", unknownErr, wrongPassErr)
	}
}

func TestLoginEmptyCredentials(t *testing.T) {
	engine := newTestEngine(t, testConfig(), seededUserStore())
	ctx := context.Background()

	for _, tc := range []struct{ identifier, password string }{
		{"", "pass"},
		{"user1", ""},
		{"", ""},
	} {
		_, err := engine.Login(ctx, tc.identifier, tc.password)
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials for %+v, got %v", tc, err)
		}
	}
}

func TestLoginUserStoreOutage(t *testing.T) {
	users := seededUserStore()
	users.findErr = errors.New("connection refused")
	engine := newTestEngine(t, testConfig(), users)

	_, err := engine.Login(context.Background(), "user1", "pass")
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	// An outage must never read as a credential failure.
	if errors.Is(err, ErrInvalidCredentials) {
		t.Fatal("outage must not map to ErrInvalidCredentials")
	}
}

func TestLoginHTTPSetsCookie(t *testing.T) {
	engine := newTestEngine(t, testConfig(), seededUserStore())

	rec := httptest.NewRecorder()
	access, err := engine.LoginHTTP(context.Background(), rec, "user1", "pass")
	if err != nil {
		t.Fatalf("LoginHTTP failed: %v", err)
	}
	if access == "" {
		t.Fatal("expected an access token")
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != engine.CookieName() {
		t.Fatalf("unexpected cookie name %q", c.Name)
	}
	if c.Value == "" {
		t.Fatal("expected refresh token in cookie")
	}
	if !c.HttpOnly {
		t.Fatal("refresh cookie must be HttpOnly")
	}
	if c.Value == access {
		t.Fatal("refresh cookie must not carry the access token")
	}
}

func TestLoginHTTPFailureSetsNoCookie(t *testing.T) {
	engine := newTestEngine(t, testConfig(), seededUserStore())

	rec := httptest.NewRecorder()
	if _, err := engine.LoginHTTP(context.Background(), rec, "user1", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if cookies := rec.Result().Cookies(); len(cookies) != 0 {
		t.Fatalf("expected no cookies on failed login, got %d", len(cookies))
	}
}
