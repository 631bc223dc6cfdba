package sessions

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRepository implements Repository with Redis as the backing store.
// Sessions are stored as JSON under "refresh:<token>" with TTL equal to the
// remaining lifetime, and the token is also indexed per user so logout can
// drop every session of an account.
type RedisRepository struct {
	client *redis.Client
	prefix string
}

// NewRedisRepository creates a Redis-based session repository. Prefix may be
// empty.
func NewRedisRepository(client *redis.Client, prefix string) *RedisRepository {
	if prefix == "" {
		prefix = "refresh:"
	}
	return &RedisRepository{client: client, prefix: prefix}
}

func (r *RedisRepository) key(refresh string) string {
	return r.prefix + refresh
}

func (r *RedisRepository) userKey(userID string) string {
	return r.prefix + "user:" + userID
}

func (r *RedisRepository) Create(ctx context.Context, s *Session) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	exp := time.Until(s.ExpiresAt)
	if exp <= 0 {
		// never store an already expired session without a TTL
		exp = time.Second
	}
	if err := r.client.Set(ctx, r.key(s.RefreshToken), b, exp).Err(); err != nil {
		return err
	}
	if err := r.client.SAdd(ctx, r.userKey(s.UserID), s.RefreshToken).Err(); err != nil {
		return err
	}
	return r.client.Expire(ctx, r.userKey(s.UserID), exp).Err()
}

func (r *RedisRepository) GetByRefresh(ctx context.Context, refresh string) (*Session, error) {
	b, err := r.client.Get(ctx, r.key(refresh)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	if time.Now().UTC().After(s.ExpiresAt) {
		_ = r.client.Del(ctx, r.key(refresh)).Err()
		return nil, nil
	}
	return &s, nil
}

func (r *RedisRepository) DeleteByRefresh(ctx context.Context, refresh string) error {
	s, err := r.GetByRefresh(ctx, refresh)
	if err == nil && s != nil {
		_ = r.client.SRem(ctx, r.userKey(s.UserID), refresh).Err()
	}
	return r.client.Del(ctx, r.key(refresh)).Err()
}

func (r *RedisRepository) DeleteByUser(ctx context.Context, userID string) error {
	tokens, err := r.client.SMembers(ctx, r.userKey(userID)).Result()
	if err != nil && err != redis.Nil {
		return err
	}
	for _, tok := range tokens {
		_ = r.client.Del(ctx, r.key(tok)).Err()
	}
	return r.client.Del(ctx, r.userKey(userID)).Err()
}
