package refresh

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	rotateStatusNotFound int64 = 0
	rotateStatusExpired  int64 = 1
	rotateStatusReused   int64 = 2
	rotateStatusRotated  int64 = 3
	rotateStatusCorrupt  int64 = 4
)

// Record layout at rest: "<userID>|<expiresAtUnix>|<live>" where live is 1
// or 0. Dead records stay behind as tombstones until the original expiry so
// replay detection keeps working after rotation.
const rotateScript = `
local data = redis.call("GET", KEYS[1])
if not data then
  return {0}
end

local uid, exp, live = string.match(data, "^(%-?%d+)|(%d+)|(%d+)$")
if not uid then
  return {4}
end

local now = tonumber(ARGV[1])
if tonumber(exp) <= now then
  redis.call("DEL", KEYS[1])
  redis.call("SREM", ARGV[5] .. uid, ARGV[6])
  return {1}
end

if live ~= "1" then
  return {2, uid}
end

local ttl = redis.call("PTTL", KEYS[1])
if ttl <= 0 then
  redis.call("DEL", KEYS[1])
  redis.call("SREM", ARGV[5] .. uid, ARGV[6])
  return {1}
end

redis.call("SET", KEYS[1], uid .. "|" .. exp .. "|0", "PX", ttl)
redis.call("SET", KEYS[2], uid .. "|" .. ARGV[2] .. "|1", "PX", tonumber(ARGV[3]))
local userkey = ARGV[5] .. uid
redis.call("SADD", userkey, ARGV[4])
redis.call("PEXPIRE", userkey, tonumber(ARGV[3]))
return {3, uid}
`

var rotateLua = redis.NewScript(rotateScript)

const revokeScript = `
local data = redis.call("GET", KEYS[1])
if not data then
  return 0
end
local uid, exp, live = string.match(data, "^(%-?%d+)|(%d+)|(%d+)$")
if not uid or live ~= "1" then
  return 0
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl <= 0 then
  redis.call("DEL", KEYS[1])
  return 0
end
redis.call("SET", KEYS[1], uid .. "|" .. exp .. "|0", "PX", ttl)
return 1
`

var revokeLua = redis.NewScript(revokeScript)

// RedisStore is a Redis-backed refresh-token store. Rotation runs as a
// single Lua compare-and-swap so concurrent rotations of the same token
// cannot both succeed.
type RedisStore struct {
	redis   redis.UniversalClient
	prefix  string
	ttl     time.Duration
	entropy int
}

// NewRedisStore creates a RedisStore. prefix namespaces all keys; ttl is the
// refresh-token lifetime; entropy is the token size in random bytes.
func NewRedisStore(client redis.UniversalClient, prefix string, ttl time.Duration, entropy int) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if prefix == "" {
		prefix = "ac"
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
	return &RedisStore{redis: client, prefix: prefix, ttl: ttl, entropy: entropy}, nil
}

func (s *RedisStore) key(hash string) string {
	return s.prefix + ":rt:" + hash
}

func (s *RedisStore) userKeyPrefix() string {
	return s.prefix + ":ru:"
}

func (s *RedisStore) userKey(userID int64) string {
	return s.userKeyPrefix() + strconv.FormatInt(userID, 10)
}

func encodeRecord(userID int64, expiresAt time.Time, live bool) string {
	flag := "0"
	if live {
		flag = "1"
	}
	return strconv.FormatInt(userID, 10) + "|" + strconv.FormatInt(expiresAt.Unix(), 10) + "|" + flag
}

func decodeRecord(data string) (userID int64, expiresAt time.Time, live bool, err error) {
	parts := strings.SplitN(data, "|", 3)
	if len(parts) != 3 {
		return 0, time.Time{}, false, errors.New("corrupt refresh record")
	}
	userID, err = strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, time.Time{}, false, errors.New("corrupt refresh record")
	}
	exp, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, time.Time{}, false, errors.New("corrupt refresh record")
	}
	return userID, time.Unix(exp, 0), parts[2] == "1", nil
}

// Issue generates a token, persists its hash with the configured TTL, and
// indexes it under the owning user.
func (s *RedisStore) Issue(ctx context.Context, userID int64, now time.Time) (string, error) {
	token, err := NewToken(s.entropy)
	if err != nil {
		return "", err
	}

	hash := HashToken(token)
	expiresAt := now.Add(s.ttl)
	userKey := s.userKey(userID)

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(hash), encodeRecord(userID, expiresAt, true), s.ttl)
		pipe.SAdd(ctx, userKey, hash)
		pipe.PExpire(ctx, userKey, s.ttl)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return token, nil
}

// Rotate runs the Lua compare-and-swap. On ErrReused the bound userID is
// still returned so the caller can revoke the user's whole chain.
func (s *RedisStore) Rotate(ctx context.Context, token string, now time.Time) (string, int64, error) {
	oldHash := HashToken(token)

	newToken, err := NewToken(s.entropy)
	if err != nil {
		return "", 0, err
	}
	newHash := HashToken(newToken)
	expiresAt := now.Add(s.ttl)

	result, err := rotateLua.Run(
		ctx,
		s.redis,
		[]string{s.key(oldHash), s.key(newHash)},
		now.Unix(),
		expiresAt.Unix(),
		s.ttl.Milliseconds(),
		newHash,
		s.userKeyPrefix(),
		oldHash,
	).Result()
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	parts, ok := result.([]interface{})
	if !ok || len(parts) == 0 {
		return "", 0, fmt.Errorf("%w: invalid rotate script response", ErrStoreUnavailable)
	}
	code, ok := parts[0].(int64)
	if !ok {
		return "", 0, fmt.Errorf("%w: invalid rotate script status", ErrStoreUnavailable)
	}

	switch code {
	case rotateStatusNotFound:
		return "", 0, ErrNotFound
	case rotateStatusExpired:
		return "", 0, ErrTokenExpired
	case rotateStatusReused:
		return "", scriptUserID(parts), ErrReused
	case rotateStatusRotated:
		return newToken, scriptUserID(parts), nil
	case rotateStatusCorrupt:
		return "", 0, fmt.Errorf("%w: corrupt refresh record", ErrStoreUnavailable)
	default:
		return "", 0, fmt.Errorf("%w: unknown rotate script status", ErrStoreUnavailable)
	}
}

func scriptUserID(parts []interface{}) int64 {
	if len(parts) < 2 {
		return 0
	}
	var raw string
	switch v := parts[1].(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return 0
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// Revoke marks the token dead, keeping the tombstone TTL intact. Unknown and
// already-dead tokens are a no-op.
func (s *RedisStore) Revoke(ctx context.Context, token string) error {
	hash := HashToken(token)
	if err := revokeLua.Run(ctx, s.redis, []string{s.key(hash)}).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// RevokeAllForUser marks every indexed token for the user dead. Tokens only
// ever transition live to dead, so racing rotations are safe: dead is
// terminal.
func (s *RedisStore) RevokeAllForUser(ctx context.Context, userID int64) error {
	hashes, err := s.redis.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	for _, hash := range hashes {
		if err := revokeLua.Run(ctx, s.redis, []string{s.key(hash)}).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
