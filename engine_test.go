package authcore

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type mockUserStore struct {
	mu    sync.RWMutex
	users map[int64]Identity
	// plaintext passwords; production stores verify hashes instead
	passwords map[int64]string

	findErr error
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{
		users:     map[int64]Identity{},
		passwords: map[int64]string{},
	}
}

func (s *mockUserStore) put(identity Identity, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[identity.ID] = identity
	s.passwords[identity.ID] = password
}

func (s *mockUserStore) setRoles(userID int64, roles []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[userID]
	u.Roles = roles
	s.users[userID] = u
}

func (s *mockUserStore) FindByUsernameOrEmail(_ context.Context, identifier string) (*Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.findErr != nil {
		return nil, s.findErr
	}
	for _, u := range s.users {
		if strings.EqualFold(u.Username, identifier) || strings.EqualFold(u.Email, identifier) {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

func (s *mockUserStore) VerifyPassword(_ context.Context, identity *Identity, password string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.passwords[identity.ID] == password, nil
}

func (s *mockUserStore) RolesOf(_ context.Context, userID int64) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %d not found", userID)
	}
	return u.Roles, nil
}

type recipeOwners map[int64]int64

func (m recipeOwners) OwnerID(_ context.Context, resourceID int64) (int64, bool, error) {
	owner, ok := m[resourceID]
	return owner, ok, nil
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.JWT.Issuer = "https://localhost:44342/"
	cfg.JWT.Secret = []byte("test-secret")
	return cfg
}

func seededUserStore() *mockUserStore {
	users := newMockUserStore()
	users.put(Identity{ID: 1, Username: "user1", Email: "user1@mailinator.com", Roles: []string{"User"}}, "pass")
	users.put(Identity{ID: 2, Username: "admin1", Email: "admin1@mailinator.com", Roles: []string{"Admin"}}, "pass")
	return users
}

func newTestEngine(t *testing.T, cfg Config, users UserStore) *Engine {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithUserStore(users).
		WithOwnerProvider(recipeOwners{2: 1}).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return engine
}

// mustLogin is shorthand for the happy path used by most scenarios.
func mustLogin(t *testing.T, engine *Engine) TokenPair {
	t.Helper()

	pair, err := engine.Login(context.Background(), "user1", "pass")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	return pair
}
