package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// ProductCacheTTL is the time-to-live for cached product details.
	ProductCacheTTL = time.Hour

	productCacheKeyPrefix = "product"

	// versionTTL outlives any entry so a bumped version is still visible to
	// a writer holding an older one.
	versionTTL = 2 * ProductCacheTTL
)

// ErrStaleEntry is returned by SetIfVersion when the entry was evicted after
// the caller read its version.
var ErrStaleEntry = errors.New("product cache entry is stale")

// CachedProduct is the denormalized product detail stored in Redis as a hash.
type CachedProduct struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Slug           string     `json:"slug"`
	Tagline        string     `json:"tagline"`
	Description    string     `json:"description"`
	WebURL         string     `json:"web_url"`
	WebImage       string     `json:"web_image"`
	Tags           []string   `json:"tags"`
	VoteCount      int        `json:"vote_count"`
	Status         string     `json:"status"`
	SubmittedBy    string     `json:"submitted_by"`
	UserID         string     `json:"user_id"`
	OrganizationID string     `json:"organization_id"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ApprovedAt     *time.Time `json:"approved_at"`
}

// ProductCache provides structured read/write operations for product detail entries.
// Every eviction bumps a per-slug version; writers pass the version they saw
// before reading Postgres and lose to any eviction in between.
//
// Key format: "product:{slug}", version at "product:{slug}:ver"
type ProductCache struct {
	client *RedisClient
}

// NewProductCache creates a new ProductCache backed by the given RedisClient.
func NewProductCache(r *RedisClient) *ProductCache {
	return &ProductCache{client: r}
}

// Get retrieves a cached product by slug.
// Returns redis.Nil error when the key does not exist or has expired.
func (c *ProductCache) Get(ctx context.Context, slug string) (*CachedProduct, error) {
	vals, err := c.client.Client().HGetAll(ctx, c.key(slug)).Result()
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	if len(vals) == 0 {
		return nil, redis.Nil // key not found
	}

	p := &CachedProduct{
		Name:           vals["name"],
		Slug:           vals["slug"],
		Tagline:        vals["tagline"],
		Description:    vals["description"],
		WebURL:         vals["web_url"],
		WebImage:       vals["web_image"],
		Status:         vals["status"],
		SubmittedBy:    vals["submitted_by"],
		UserID:         vals["user_id"],
		OrganizationID: vals["organization_id"],
	}
	if p.ID, err = uuid.Parse(vals["id"]); err != nil {
		return nil, fmt.Errorf("cache parse id: %w", err)
	}
	if p.VoteCount, err = strconv.Atoi(vals["vote_count"]); err != nil {
		return nil, fmt.Errorf("cache parse vote_count: %w", err)
	}
	if err := json.Unmarshal([]byte(vals["tags"]), &p.Tags); err != nil {
		return nil, fmt.Errorf("cache parse tags: %w", err)
	}
	if p.CreatedAt, err = time.Parse(time.RFC3339Nano, vals["created_at"]); err != nil {
		return nil, fmt.Errorf("cache parse created_at: %w", err)
	}
	if p.UpdatedAt, err = time.Parse(time.RFC3339Nano, vals["updated_at"]); err != nil {
		return nil, fmt.Errorf("cache parse updated_at: %w", err)
	}
	if s := vals["approved_at"]; s != "" {
		at, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, fmt.Errorf("cache parse approved_at: %w", err)
		}
		p.ApprovedAt = &at
	}
	return p, nil
}

// Version returns the eviction counter of slug (0 when never evicted).
// Read it before loading the product that will be passed to SetIfVersion.
func (c *ProductCache) Version(ctx context.Context, slug string) (int64, error) {
	ver, err := c.client.Client().Get(ctx, c.versionKey(slug)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("cache version: %w", err)
	}
	return ver, nil
}

// SetIfVersion writes p as a Redis hash with ProductCacheTTL, unless slug was
// evicted since ver was read. The check and the write run under WATCH on the
// version key; losing either returns ErrStaleEntry.
func (c *ProductCache) SetIfVersion(ctx context.Context, p *CachedProduct, ver int64) error {
	fields, err := hashFields(p)
	if err != nil {
		return err
	}
	key, verKey := c.key(p.Slug), c.versionKey(p.Slug)

	err = c.client.Client().Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, verKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != ver {
			return ErrStaleEntry
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.HSet(ctx, key, fields...)
			pipe.Expire(ctx, key, ProductCacheTTL)
			return nil
		})
		return err
	}, verKey)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrStaleEntry), errors.Is(err, redis.TxFailedErr):
		return ErrStaleEntry
	default:
		return fmt.Errorf("cache set: %w", err)
	}
}

// Delete removes a cached product and bumps its version so in-flight
// SetIfVersion calls holding the old version are rejected.
func (c *ProductCache) Delete(ctx context.Context, slug string) error {
	verKey := c.versionKey(slug)
	pipe := c.client.Client().TxPipeline()
	pipe.Incr(ctx, verKey)
	pipe.Expire(ctx, verKey, versionTTL)
	pipe.Del(ctx, c.key(slug))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

func hashFields(p *CachedProduct) ([]any, error) {
	tags, err := json.Marshal(p.Tags)
	if err != nil {
		return nil, fmt.Errorf("cache encode tags: %w", err)
	}
	approvedAt := ""
	if p.ApprovedAt != nil {
		approvedAt = p.ApprovedAt.UTC().Format(time.RFC3339Nano)
	}
	return []any{
		"id", p.ID.String(),
		"name", p.Name,
		"slug", p.Slug,
		"tagline", p.Tagline,
		"description", p.Description,
		"web_url", p.WebURL,
		"web_image", p.WebImage,
		"tags", string(tags),
		"vote_count", strconv.Itoa(p.VoteCount),
		"status", p.Status,
		"submitted_by", p.SubmittedBy,
		"user_id", p.UserID,
		"organization_id", p.OrganizationID,
		"created_at", p.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at", p.UpdatedAt.UTC().Format(time.RFC3339Nano),
		"approved_at", approvedAt,
	}, nil
}

// key builds the Redis key: "product:{slug}"
func (c *ProductCache) key(slug string) string {
	return fmt.Sprintf("%s:%s", productCacheKeyPrefix, slug)
}

func (c *ProductCache) versionKey(slug string) string {
	return fmt.Sprintf("%s:%s:ver", productCacheKeyPrefix, slug)
}
