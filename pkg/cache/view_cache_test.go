package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/showcase/pkg/logger"
)

func TestViewKey(t *testing.T) {
	tests := []struct {
		name   string
		group  ViewGroup
		gen    int64
		view   string
		params []any
		want   string
	}{
		{"no params", GroupHome, 0, "featured", nil, "views:home:g0:featured:"},
		{"paged", GroupExplore, 3, "trending", []any{10, 20}, "views:explore:g3:trending:10|20"},
		{"tags joined", GroupAdmin, 1, "products", []any{"pending", "", []string{"ai", "go"}, 20, 0}, "views:admin:g1:products:pending||ai,go|20|0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ViewKey(tt.group, tt.gen, tt.view, tt.params))
		})
	}
}

func TestReadThrough_NilCacheLoads(t *testing.T) {
	calls := 0
	got, err := ReadThrough(context.Background(), nil, logger.Discard(), GroupHome, "featured", nil,
		func(context.Context) ([]string, error) {
			calls++
			return []string{"a"}, nil
		})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got)
	assert.Equal(t, 1, calls)
}

func TestReadThrough_NilCachePropagatesError(t *testing.T) {
	boom := errors.New("boom")
	_, err := ReadThrough(context.Background(), nil, logger.Discard(), GroupHome, "featured", nil,
		func(context.Context) (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
}

func TestInvalidateAsync_NilCacheNoop(t *testing.T) {
	InvalidateAsync(context.Background(), nil, logger.Discard(), AllGroups...)
}

func newIntegrationClient(t *testing.T) *RedisClient {
	t.Helper()
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set; skipping integration tests")
	}
	rc, err := NewRedisClient(context.Background(), newTestConfig(redisURL))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Close() })
	return rc
}

func TestViewCacheIntegration(t *testing.T) {
	rc := newIntegrationClient(t)
	ctx := context.Background()
	vc := NewViewCache(rc, time.Minute)
	log := logger.Discard()

	// isolate from other runs
	view := "test-" + time.Now().Format("150405.000000000")

	calls := 0
	load := func(context.Context) ([]int, error) {
		calls++
		return []int{calls}, nil
	}

	first, err := ReadThrough(ctx, vc, log, GroupExplore, view, []any{6, 0}, load)
	require.NoError(t, err)
	second, err := ReadThrough(ctx, vc, log, GroupExplore, view, []any{6, 0}, load)
	require.NoError(t, err)
	assert.Equal(t, first, second, "second read should be served from cache")
	assert.Equal(t, 1, calls)

	// different params are a different entry
	_, err = ReadThrough(ctx, vc, log, GroupExplore, view, []any{6, 6}, load)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	before, err := vc.Generation(ctx, GroupExplore)
	require.NoError(t, err)
	require.NoError(t, vc.Invalidate(ctx, GroupExplore))
	after, err := vc.Generation(ctx, GroupExplore)
	require.NoError(t, err)
	assert.Equal(t, before+1, after)

	third, err := ReadThrough(ctx, vc, log, GroupExplore, view, []any{6, 0}, load)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, third, "invalidation should force a reload")
}

func TestReadThrough_InvalidatedDuringLoad(t *testing.T) {
	rc := newIntegrationClient(t)
	ctx := context.Background()
	vc := NewViewCache(rc, time.Minute)
	log := logger.Discard()
	view := "race-" + time.Now().Format("150405.000000000")

	calls := 0
	load := func(ctx context.Context) ([]string, error) {
		calls++
		if calls == 1 {
			// a write lands between the database read and the cache write
			require.NoError(t, vc.Invalidate(ctx, GroupHome))
			return []string{"stale"}, nil
		}
		return []string{"fresh"}, nil
	}

	got, err := ReadThrough(ctx, vc, log, GroupHome, view, nil, load)
	require.NoError(t, err)
	assert.Equal(t, []string{"stale"}, got)

	got, err = ReadThrough(ctx, vc, log, GroupHome, view, nil, load)
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, got, "value loaded across an invalidation must not be served")
	assert.Equal(t, 2, calls)

	got, err = ReadThrough(ctx, vc, log, GroupHome, view, nil, load)
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, got)
	assert.Equal(t, 2, calls)
}

func TestProductCacheIntegration(t *testing.T) {
	rc := newIntegrationClient(t)
	ctx := context.Background()
	pc := NewProductCache(rc)

	approved := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	p := &CachedProduct{
		ID:          [16]byte{1, 2, 3},
		Name:        "Widget",
		Slug:        "widget-cache-test",
		Tagline:     "A widget for tests",
		Description: "Used by the product cache integration test.",
		WebURL:      "https://widget.example.com",
		WebImage:    "https://cdn.example.com/products/abc.png",
		Tags:        []string{"tools", "go"},
		VoteCount:   7,
		Status:      "approved",
		SubmittedBy: "dev@example.com",
		UserID:      "user_1",
		CreatedAt:   approved.Add(-time.Hour),
		UpdatedAt:   approved,
		ApprovedAt:  &approved,
	}

	ver, err := pc.Version(ctx, p.Slug)
	require.NoError(t, err)
	require.NoError(t, pc.SetIfVersion(ctx, p, ver))
	t.Cleanup(func() { _ = pc.Delete(ctx, p.Slug) })

	got, err := pc.Get(ctx, p.Slug)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, p.Tags, got.Tags)
	assert.Equal(t, p.VoteCount, got.VoteCount)
	require.NotNil(t, got.ApprovedAt)
	assert.True(t, p.ApprovedAt.Equal(*got.ApprovedAt))

	require.NoError(t, pc.Delete(ctx, p.Slug))
	_, err = pc.Get(ctx, p.Slug)
	assert.Error(t, err)
}

func TestProductCache_EvictedBetweenReadAndWarm(t *testing.T) {
	rc := newIntegrationClient(t)
	ctx := context.Background()
	pc := NewProductCache(rc)

	now := time.Now().UTC()
	p := &CachedProduct{
		ID:        [16]byte{4, 5, 6},
		Name:      "Gadget",
		Slug:      "gadget-" + now.Format("150405.000000000"),
		Tags:      []string{"tools"},
		VoteCount: 1,
		Status:    "approved",
		CreatedAt: now,
		UpdatedAt: now,
	}
	t.Cleanup(func() { _ = pc.Delete(ctx, p.Slug) })

	// reader sees version, loads the row; a vote evicts before the warm
	ver, err := pc.Version(ctx, p.Slug)
	require.NoError(t, err)
	require.NoError(t, pc.Delete(ctx, p.Slug))

	err = pc.SetIfVersion(ctx, p, ver)
	assert.ErrorIs(t, err, ErrStaleEntry)
	_, err = pc.Get(ctx, p.Slug)
	assert.ErrorIs(t, err, redis.Nil, "stale row must not be cached")

	fresh, err := pc.Version(ctx, p.Slug)
	require.NoError(t, err)
	assert.Equal(t, ver+1, fresh)
	p.VoteCount = 2
	require.NoError(t, pc.SetIfVersion(ctx, p, fresh))
	got, err := pc.Get(ctx, p.Slug)
	require.NoError(t, err)
	assert.Equal(t, 2, got.VoteCount)
}
