package authcore

import (
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/recipeshare/authcore/authz"
	"github.com/recipeshare/authcore/cookie"
	"github.com/recipeshare/authcore/jwt"
	"github.com/recipeshare/authcore/refresh"
)

// Builder assembles an [Engine]. Exactly one refresh-token backend must be
// supplied: a Redis client, a pgx pool, or an explicit [refresh.Store].
type Builder struct {
	config Config

	redis        redis.UniversalClient
	postgres     *pgxpool.Pool
	refreshStore refresh.Store

	users  UserStore
	owners authz.OwnerProvider
	logger *zap.Logger

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{config: DefaultConfig()}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithRedis selects a Redis-backed refresh-token store.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithPostgres selects a Postgres-backed refresh-token store.
func (b *Builder) WithPostgres(pool *pgxpool.Pool) *Builder {
	b.postgres = pool
	return b
}

// WithRefreshStore injects a store directly, bypassing the built-in
// backends. Intended for tests and custom persistence.
func (b *Builder) WithRefreshStore(store refresh.Store) *Builder {
	b.refreshStore = store
	return b
}

// WithUserStore sets the credential collaborator. Required.
func (b *Builder) WithUserStore(users UserStore) *Builder {
	b.users = users
	return b
}

// WithOwnerProvider sets the resource-ownership collaborator consumed by
// [Engine.Authorize]. Optional; engines that never authorize may omit it.
func (b *Builder) WithOwnerProvider(owners authz.OwnerProvider) *Builder {
	b.owners = owners
	return b
}

// WithLogger sets the structured logger. Defaults to zap.NewNop.
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// Build validates the configuration, wires the components, and returns the
// Engine. A Builder is single-use.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	b.built = true

	if err := validateConfig(b.config); err != nil {
		return nil, err
	}
	if b.users == nil {
		return nil, errors.New("user store is required")
	}

	jwtManager, err := jwt.NewManager(jwt.Config{
		Secret:    b.config.JWT.Secret,
		Issuer:    b.config.JWT.Issuer,
		AccessTTL: b.config.JWT.AccessTTL,
	})
	if err != nil {
		return nil, err
	}

	store := b.refreshStore
	switch {
	case store != nil:
		if b.redis != nil || b.postgres != nil {
			return nil, errors.New("refresh store conflicts with redis/postgres backends")
		}
	case b.redis != nil && b.postgres != nil:
		return nil, errors.New("choose one refresh backend: redis or postgres")
	case b.redis != nil:
		store, err = refresh.NewRedisStore(b.redis, b.config.Refresh.RedisPrefix, b.config.Refresh.TTL, b.config.Refresh.EntropyBytes)
		if err != nil {
			return nil, err
		}
	case b.postgres != nil:
		store, err = refresh.NewPostgresStore(b.postgres, b.config.Refresh.TTL, b.config.Refresh.EntropyBytes)
		if err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("a refresh token backend is required")
	}

	cookies, err := cookie.NewTransport(b.config.Cookie)
	if err != nil {
		return nil, err
	}

	var gate *authz.Gate
	if b.owners != nil {
		gate, err = authz.NewGate(b.owners)
		if err != nil {
			return nil, err
		}
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Engine{
		config:       b.config,
		jwtManager:   jwtManager,
		refreshStore: store,
		cookies:      cookies,
		users:        b.users,
		gate:         gate,
		logger:       logger,
	}, nil
}
