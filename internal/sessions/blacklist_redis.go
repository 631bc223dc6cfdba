package sessions

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// package-level Redis client used for the access token blacklist (optional)
var blacklistClient *redis.Client

// SetBlacklistClient configures the Redis client used for blacklist
// operations. Safe to call with nil to disable the blacklist.
func SetBlacklistClient(c *redis.Client) {
	blacklistClient = c
}

// BlacklistAccessToken stores the token in the Redis blacklist with the given
// TTL. Without a configured client this is a no-op.
func BlacklistAccessToken(ctx context.Context, token string, ttl time.Duration) error {
	if blacklistClient == nil {
		return nil
	}
	return blacklistClient.Set(ctx, "blacklist:access:"+token, "1", ttl).Err()
}

// IsAccessTokenBlacklisted reports whether the token was blacklisted. Without
// a configured client it returns (false, nil).
func IsAccessTokenBlacklisted(ctx context.Context, token string) (bool, error) {
	if blacklistClient == nil {
		return false, nil
	}
	exists, err := blacklistClient.Exists(ctx, "blacklist:access:"+token).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}
