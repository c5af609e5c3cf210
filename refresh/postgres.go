package refresh

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema is the table owned by PostgresStore. Revoked rows are kept as
// tombstones for replay detection and cleared by DeleteExpired.
const Schema = `
CREATE TABLE IF NOT EXISTS refresh_tokens (
	id          UUID PRIMARY KEY,
	user_id     BIGINT NOT NULL,
	token_hash  TEXT NOT NULL UNIQUE,
	expires_at  TIMESTAMPTZ NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL,
	revoked_at  TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS refresh_tokens_user_id_idx ON refresh_tokens (user_id);
`

// PostgresStore is a pgx-backed refresh-token store. Rotation is a
// transaction with a row lock on the presented token, so concurrent
// rotations of the same token serialize and exactly one succeeds.
type PostgresStore struct {
	db      *pgxpool.Pool
	ttl     time.Duration
	entropy int
}

// NewPostgresStore creates a PostgresStore over an existing pool.
func NewPostgresStore(db *pgxpool.Pool, ttl time.Duration, entropy int) (*PostgresStore, error) {
	if db == nil {
		return nil, errors.New("pgx pool is required")
	}
	if ttl <= 0 {
		return nil, errors.New("invalid refresh TTL configuration")
	}
	if entropy == 0 {
		entropy = DefaultEntropyBytes
	}
	if entropy < MinEntropyBytes {
		return nil, errors.New("refresh token entropy below minimum")
	}
	return &PostgresStore{db: db, ttl: ttl, entropy: entropy}, nil
}

// Issue generates a token and inserts its hash with expiry now + TTL.
func (s *PostgresStore) Issue(ctx context.Context, userID int64, now time.Time) (string, error) {
	token, err := NewToken(s.entropy)
	if err != nil {
		return "", err
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		uuid.New(), userID, HashToken(token), now.Add(s.ttl), now,
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return token, nil
}

// Rotate locks the presented row, classifies it, and atomically replaces it.
// The UPDATE guarded by revoked_at IS NULL is the compare-and-swap: a second
// transaction arriving after commit sees the tombstone and gets ErrReused.
func (s *PostgresStore) Rotate(ctx context.Context, token string, now time.Time) (string, int64, error) {
	newToken, err := NewToken(s.entropy)
	if err != nil {
		return "", 0, err
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer tx.Rollback(ctx)

	var (
		userID    int64
		expiresAt time.Time
		revokedAt *time.Time
	)
	err = tx.QueryRow(ctx,
		`SELECT user_id, expires_at, revoked_at FROM refresh_tokens
		 WHERE token_hash = $1 FOR UPDATE`,
		HashToken(token),
	).Scan(&userID, &expiresAt, &revokedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", 0, ErrNotFound
		}
		return "", 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if !expiresAt.After(now) {
		_, _ = tx.Exec(ctx, `DELETE FROM refresh_tokens WHERE token_hash = $1`, HashToken(token))
		_ = tx.Commit(ctx)
		return "", 0, ErrTokenExpired
	}
	if revokedAt != nil {
		return "", userID, ErrReused
	}

	tag, err := tx.Exec(ctx,
		`UPDATE refresh_tokens SET revoked_at = $2
		 WHERE token_hash = $1 AND revoked_at IS NULL`,
		HashToken(token), now,
	)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return "", userID, ErrReused
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		uuid.New(), userID, HashToken(newToken), now.Add(s.ttl), now,
	)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return newToken, userID, nil
}

// Revoke marks the token dead. Idempotent by construction.
func (s *PostgresStore) Revoke(ctx context.Context, token string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE refresh_tokens SET revoked_at = now()
		 WHERE token_hash = $1 AND revoked_at IS NULL`,
		HashToken(token),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// RevokeAllForUser marks every live token for the user dead.
func (s *PostgresStore) RevokeAllForUser(ctx context.Context, userID int64) error {
	_, err := s.db.Exec(ctx,
		`UPDATE refresh_tokens SET revoked_at = now()
		 WHERE user_id = $1 AND revoked_at IS NULL`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// DeleteExpired removes expired rows and tombstones whose expiry has passed.
// Intended for a periodic reaper, not the request path.
func (s *PostgresStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return tag.RowsAffected(), nil
}

var _ Store = (*PostgresStore)(nil)
