package session

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/go-blog/internal/model"
)

// Redis hash fields per session key.
const (
	fieldUserID   = "user_id"
	fieldUsername = "username"
	fieldReturnTo = "return_to"
	fieldSuccess  = "flash_success"
	fieldError    = "flash_error"
)

// RedisStore keeps sessions as Redis hashes under "session:<token>"
// with a sliding TTL: every successful Resolve refreshes the expiry.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func key(token string) string { return "session:" + token }

// Create writes the session hash and its TTL atomically via pipeline.
func (s *RedisStore) Create(ctx context.Context, userID uint64, username string) (string, error) {
	token, err := NewToken()
	if err != nil {
		return "", err
	}
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, key(token), fieldUserID, strconv.FormatUint(userID, 10), fieldUsername, username)
	pipe.Expire(ctx, key(token), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}
	return token, nil
}

// Resolve returns the identity bound to token, refreshing the sliding
// expiry as a side effect. Unknown tokens and anonymous sessions both
// resolve to nil without error.
func (s *RedisStore) Resolve(ctx context.Context, token string) (*model.Identity, error) {
	vals, err := s.rdb.HGetAll(ctx, key(token)).Result()
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, nil
	}
	s.rdb.Expire(ctx, key(token), s.ttl)
	userID, err := strconv.ParseUint(vals[fieldUserID], 10, 64)
	if err != nil || userID == 0 {
		return nil, nil
	}
	return &model.Identity{UserID: userID, Username: vals[fieldUsername]}, nil
}

func (s *RedisStore) Destroy(ctx context.Context, token string) error {
	// DEL on a missing key is already a no-op in Redis.
	return s.rdb.Del(ctx, key(token)).Err()
}

// SetFlash stores a one-time message. The existence probe prevents HSET
// from resurrecting an expired session as a stray key without TTL.
func (s *RedisStore) SetFlash(ctx context.Context, token, kind, message string) error {
	field := fieldSuccess
	if kind == FlashError {
		field = fieldError
	}
	n, err := s.rdb.Exists(ctx, key(token)).Result()
	if err != nil || n == 0 {
		return err
	}
	return s.rdb.HSet(ctx, key(token), field, message).Err()
}

// PopFlash reads and clears both flash slots in one pipeline so a
// message can never be rendered twice.
func (s *RedisStore) PopFlash(ctx context.Context, token string) (Flash, error) {
	pipe := s.rdb.TxPipeline()
	get := pipe.HMGet(ctx, key(token), fieldSuccess, fieldError)
	pipe.HDel(ctx, key(token), fieldSuccess, fieldError)
	if _, err := pipe.Exec(ctx); err != nil {
		return Flash{}, err
	}
	vals := get.Val()
	var f Flash
	if len(vals) == 2 {
		if v, ok := vals[0].(string); ok {
			f.Success = v
		}
		if v, ok := vals[1].(string); ok {
			f.Error = v
		}
	}
	return f, nil
}

func (s *RedisStore) SetReturnTo(ctx context.Context, token, target string) error {
	n, err := s.rdb.Exists(ctx, key(token)).Result()
	if err != nil || n == 0 {
		return err
	}
	return s.rdb.HSet(ctx, key(token), fieldReturnTo, target).Err()
}

func (s *RedisStore) PopReturnTo(ctx context.Context, token string) (string, error) {
	pipe := s.rdb.TxPipeline()
	get := pipe.HGet(ctx, key(token), fieldReturnTo)
	pipe.HDel(ctx, key(token), fieldReturnTo)
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return "", err
	}
	target, err := get.Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return target, nil
}
