package rbac

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// SessionPermissionCache stores each admin session's resolved permission set
// in Redis. The set lives for the admin session: it is warmed on login,
// dropped on logout, and deliberately not invalidated by concurrent role
// edits made by another actor.
type SessionPermissionCache struct {
	client   *redis.Client
	resolver *Resolver
	ttl      time.Duration
	group    singleflight.Group
}

// NewSessionPermissionCache constructs the cache. ttl should match the
// session lifetime.
func NewSessionPermissionCache(client *redis.Client, resolver *Resolver, ttl time.Duration) *SessionPermissionCache {
	return &SessionPermissionCache{client: client, resolver: resolver, ttl: ttl}
}

// Permissions returns the cached set for the session, resolving and storing
// it on a miss. Concurrent misses for the same session collapse into one
// resolver call.
func (c *SessionPermissionCache) Permissions(ctx context.Context, sessionID string, userID int64) (PermissionSet, error) {
	if sessionID == "" {
		return c.resolver.EffectivePermissions(ctx, userID)
	}

	payload, err := c.client.Get(ctx, c.redisKey(sessionID)).Bytes()
	if err == nil {
		var keys []string
		if err := json.Unmarshal(payload, &keys); err == nil {
			return NewPermissionSet(keys...), nil
		}
		// Unreadable payload: fall through and rebuild.
	} else if !errors.Is(err, redis.Nil) {
		return nil, err
	}

	result, err, _ := c.group.Do(sessionID, func() (any, error) {
		set, err := c.resolver.EffectivePermissions(ctx, userID)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(set.Keys())
		if err != nil {
			return nil, err
		}
		if err := c.client.Set(ctx, c.redisKey(sessionID), data, c.ttl).Err(); err != nil {
			return nil, err
		}
		return set, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(PermissionSet), nil
}

// Warm resolves and stores the set for a fresh login.
func (c *SessionPermissionCache) Warm(ctx context.Context, sessionID string, userID int64) error {
	_, err := c.Permissions(ctx, sessionID, userID)
	return err
}

// Invalidate drops the cached set, forcing a re-resolve on next use.
func (c *SessionPermissionCache) Invalidate(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return c.client.Del(ctx, c.redisKey(sessionID)).Err()
}

func (c *SessionPermissionCache) redisKey(sessionID string) string {
	return "perms:" + sessionID
}
