package authcore

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func testRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestBuildRequiresUserStore(t *testing.T) {
	_, err := New().
		WithConfig(testConfig()).
		WithRedis(testRedisClient(t)).
		Build()
	if err == nil {
		t.Fatal("expected error without user store")
	}
}

func TestBuildRequiresBackend(t *testing.T) {
	_, err := New().
		WithConfig(testConfig()).
		WithUserStore(seededUserStore()).
		Build()
	if err == nil {
		t.Fatal("expected error without a refresh backend")
	}
}

func TestBuildRejectsConflictingBackends(t *testing.T) {
	seed := newTestEngine(t, testConfig(), seededUserStore())

	_, err := New().
		WithConfig(testConfig()).
		WithRedis(testRedisClient(t)).
		WithRefreshStore(seed.refreshStore).
		WithUserStore(seededUserStore()).
		Build()
	if err == nil {
		t.Fatal("expected error for conflicting backends")
	}
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing secret", func(c *Config) { c.JWT.Secret = nil }},
		{"missing issuer", func(c *Config) { c.JWT.Issuer = "" }},
		{"zero access ttl", func(c *Config) { c.JWT.AccessTTL = 0 }},
		{"zero refresh ttl", func(c *Config) { c.Refresh.TTL = 0 }},
		{"weak entropy", func(c *Config) { c.Refresh.EntropyBytes = 8 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(&cfg)

			_, err := New().
				WithConfig(cfg).
				WithRedis(testRedisClient(t)).
				WithUserStore(seededUserStore()).
				Build()
			if err == nil {
				t.Fatal("expected config validation error")
			}
		})
	}
}

func TestBuilderSingleUse(t *testing.T) {
	builder := New().
		WithConfig(testConfig()).
		WithRedis(testRedisClient(t)).
		WithUserStore(seededUserStore())

	if _, err := builder.Build(); err != nil {
		t.Fatalf("first Build failed: %v", err)
	}
	if _, err := builder.Build(); err == nil {
		t.Fatal("expected second Build to fail")
	}
}
