package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ghuser/showcase/pkg/logger"
)

// ViewGroup names a family of cached read views that are invalidated together.
type ViewGroup string

const (
	// GroupHome covers the landing page views (featured products).
	GroupHome ViewGroup = "home"
	// GroupExplore covers the public listings (all, trending, recent, explore sections).
	GroupExplore ViewGroup = "explore"
	// GroupAdmin covers moderation views (stats, filtered lists, tags, pending count).
	GroupAdmin ViewGroup = "admin"
)

// PublicGroups are the groups any product change can affect for anonymous visitors.
var PublicGroups = []ViewGroup{GroupHome, GroupExplore}

// AllGroups lists every view group.
var AllGroups = []ViewGroup{GroupHome, GroupExplore, GroupAdmin}

const viewKeyPrefix = "views"

// ViewCache stores JSON-encoded query results keyed by (group, view, params).
// Each group has a generation counter that is part of every key in the group,
// so invalidation is one INCR and stale entries simply age out via TTL.
//
// Key format: "views:{group}:g{generation}:{view}:{params}"
type ViewCache struct {
	client *RedisClient
	ttl    time.Duration
}

// NewViewCache creates a ViewCache whose entries live at most ttl.
func NewViewCache(r *RedisClient, ttl time.Duration) *ViewCache {
	return &ViewCache{client: r, ttl: ttl}
}

// Get decodes the cached value for the view into dst.
// Returns redis.Nil when the entry is missing.
func (c *ViewCache) Get(ctx context.Context, group ViewGroup, view string, params []any, dst any) error {
	key, err := c.key(ctx, group, view, params)
	if err != nil {
		return err
	}
	return c.getKey(ctx, key, dst)
}

// Set stores v for the view under the group's current generation.
func (c *ViewCache) Set(ctx context.Context, group ViewGroup, view string, params []any, v any) error {
	key, err := c.key(ctx, group, view, params)
	if err != nil {
		return err
	}
	return c.setKey(ctx, key, v)
}

func (c *ViewCache) getKey(ctx context.Context, key string, dst any) error {
	data, err := c.client.Client().Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return redis.Nil
		}
		return fmt.Errorf("view cache get: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("view cache decode: %w", err)
	}
	return nil
}

func (c *ViewCache) setKey(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("view cache encode: %w", err)
	}
	if err := c.client.Client().Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("view cache set: %w", err)
	}
	return nil
}

// Invalidate bumps the generation of every group so later reads miss.
func (c *ViewCache) Invalidate(ctx context.Context, groups ...ViewGroup) error {
	if len(groups) == 0 {
		return nil
	}
	pipe := c.client.Client().Pipeline()
	for _, g := range groups {
		pipe.Incr(ctx, c.generationKey(g))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("view cache invalidate: %w", err)
	}
	return nil
}

// Generation returns the current generation of group (0 before the first invalidation).
func (c *ViewCache) Generation(ctx context.Context, group ViewGroup) (int64, error) {
	gen, err := c.client.Client().Get(ctx, c.generationKey(group)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("view cache generation: %w", err)
	}
	return gen, nil
}

func (c *ViewCache) key(ctx context.Context, group ViewGroup, view string, params []any) (string, error) {
	gen, err := c.Generation(ctx, group)
	if err != nil {
		return "", err
	}
	return ViewKey(group, gen, view, params), nil
}

func (c *ViewCache) generationKey(group ViewGroup) string {
	return fmt.Sprintf("%s:%s:gen", viewKeyPrefix, group)
}

// ViewKey renders the storage key of one view. Params are joined in order,
// so callers must pass them in a fixed order for a given view.
func ViewKey(group ViewGroup, gen int64, view string, params []any) string {
	parts := make([]string, len(params))
	for i, p := range params {
		switch v := p.(type) {
		case []string:
			parts[i] = strings.Join(v, ",")
		default:
			parts[i] = fmt.Sprint(v)
		}
	}
	return fmt.Sprintf("%s:%s:g%d:%s:%s", viewKeyPrefix, group, gen, view, strings.Join(parts, "|"))
}

// ReadThrough serves a view from c, falling back to load on a miss or cache
// error and storing the loaded value. Cache failures are logged, never returned.
// A nil cache always calls load.
//
// The key is resolved once, before load runs. A value loaded while the group
// is invalidated lands under the old generation and is never read again.
func ReadThrough[T any](ctx context.Context, c *ViewCache, log logger.Logger, group ViewGroup, view string, params []any, load func(context.Context) (T, error)) (T, error) {
	if c == nil {
		return load(ctx)
	}

	key, err := c.key(ctx, group, view, params)
	if err != nil {
		log.WarnContext(ctx, "view cache read failed", "group", group, "view", view, "error", err)
		return load(ctx)
	}

	var cached T
	err = c.getKey(ctx, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, redis.Nil) {
		log.WarnContext(ctx, "view cache read failed", "group", group, "view", view, "error", err)
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	if err := c.setKey(ctx, key, v); err != nil {
		log.WarnContext(ctx, "view cache write failed", "group", group, "view", view, "error", err)
	}
	return v, nil
}

// InvalidateAsync bumps the given groups without blocking or failing the caller.
// Errors are logged. A nil cache is a no-op.
func InvalidateAsync(ctx context.Context, c *ViewCache, log logger.Logger, groups ...ViewGroup) {
	if c == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := c.Invalidate(ctx, groups...); err != nil {
			log.WarnContext(ctx, "view cache invalidation failed", "groups", groups, "error", err)
		}
	}()
}
