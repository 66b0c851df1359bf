// Package intent stores deferred navigation targets captured before an auth
// detour. An intent is scoped to one browsing session and consumed at most
// once by the flow controller.
package intent

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lanternfest/portal/internal/routes"
	"github.com/lanternfest/portal/internal/settings"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Store holds at most one pending redirect target per session scope.
type Store interface {
	// Get returns the pending target for a scope, or nil when absent.
	Get(ctx context.Context, scope string) (*routes.Route, error)
	// Set records the pending target for a scope, replacing any prior one.
	Set(ctx context.Context, scope string, route routes.Route) error
	// Clear removes the pending target for a scope.
	Clear(ctx context.Context, scope string) error
}

// redisKeyPrefix namespaces intent keys in redis.
const redisKeyPrefix = "portal:intent:"

// RedisStore persists redirect intents in redis so they survive a page
// reload within the same browsing session.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore constructs a RedisStore.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// ttl returns the configured intent retention.
func ttl() time.Duration {
	minutes := settings.Int(settings.RedirectIntentTTLMinutesKey, settings.DefaultRedirectIntentTTLMinutes)
	if minutes <= 0 {
		minutes = settings.DefaultRedirectIntentTTLMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// Get returns the pending target for a scope, or nil when absent.
func (s *RedisStore) Get(ctx context.Context, scope string) (*routes.Route, error) {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		return nil, nil
	}
	raw, errGet := s.client.Get(ctx, redisKeyPrefix+scope).Result()
	if errGet != nil {
		if errors.Is(errGet, redis.Nil) {
			return nil, nil
		}
		return nil, errGet
	}
	route, ok := routes.Parse(raw)
	if !ok {
		log.Warnf("intent: discarding unparseable target %q for scope %s", raw, scope)
		return nil, nil
	}
	return &route, nil
}

// Set records the pending target for a scope, replacing any prior one.
func (s *RedisStore) Set(ctx context.Context, scope string, route routes.Route) error {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		return errors.New("intent: empty scope")
	}
	return s.client.Set(ctx, redisKeyPrefix+scope, route.String(), ttl()).Err()
}

// Clear removes the pending target for a scope.
func (s *RedisStore) Clear(ctx context.Context, scope string) error {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		return nil
	}
	return s.client.Del(ctx, redisKeyPrefix+scope).Err()
}
