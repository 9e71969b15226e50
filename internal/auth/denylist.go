package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevokedKeyPrefix is the Redis key prefix for revoked token IDs
const RevokedKeyPrefix = "revoked_token:"

// Denylist records revoked token IDs in Redis until the token would have expired anyway.
type Denylist struct {
	client *redis.Client
}

func NewDenylist(client *redis.Client) *Denylist {
	return &Denylist{client: client}
}

// Revoke marks claims.ID as revoked for the token's remaining lifetime.
func (d *Denylist) Revoke(ctx context.Context, claims *Claims) error {
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return nil
	}
	return d.client.Set(ctx, RevokedKeyPrefix+claims.ID, "1", ttl).Err()
}

func (d *Denylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.client.Exists(ctx, RevokedKeyPrefix+tokenID).Result()
	return n > 0, err
}
