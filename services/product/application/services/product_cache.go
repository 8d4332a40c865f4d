package services

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	pkgcache "github.com/ghuser/showcase/pkg/cache"
	"github.com/ghuser/showcase/pkg/logger"
	"github.com/ghuser/showcase/services/product/domain/models"
)

// ToCached converts a product into its Redis detail-cache form.
func ToCached(p *models.Product) *pkgcache.CachedProduct {
	org := ""
	if p.OrganizationID != nil {
		org = *p.OrganizationID
	}
	return &pkgcache.CachedProduct{
		ID:             p.ID,
		Name:           p.Name,
		Slug:           p.Slug.String(),
		Tagline:        p.Tagline,
		Description:    p.Description,
		WebURL:         p.WebURL,
		WebImage:       p.WebImage,
		Tags:           p.Tags,
		VoteCount:      p.VoteCount,
		Status:         p.Status.String(),
		SubmittedBy:    p.SubmittedBy,
		UserID:         p.UserID,
		OrganizationID: org,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		ApprovedAt:     p.ApprovedAt,
	}
}

// FromCached is the inverse of ToCached.
func FromCached(c *pkgcache.CachedProduct) *models.Product {
	var org *string
	if c.OrganizationID != "" {
		org = &c.OrganizationID
	}
	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}
	return &models.Product{
		ID:             c.ID,
		Name:           c.Name,
		Slug:           models.Slug(c.Slug),
		Tagline:        c.Tagline,
		Description:    c.Description,
		WebURL:         c.WebURL,
		WebImage:       c.WebImage,
		Tags:           tags,
		VoteCount:      c.VoteCount,
		Status:         models.Status(c.Status),
		SubmittedBy:    c.SubmittedBy,
		UserID:         c.UserID,
		OrganizationID: org,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
		ApprovedAt:     c.ApprovedAt,
	}
}

// detailBackend is the slice of *pkgcache.ProductCache the services use.
type detailBackend interface {
	Get(ctx context.Context, slug string) (*pkgcache.CachedProduct, error)
	Version(ctx context.Context, slug string) (int64, error)
	SetIfVersion(ctx context.Context, p *pkgcache.CachedProduct, ver int64) error
	Delete(ctx context.Context, slug string) error
}

// detailCache wraps the optional product detail cache. Failures are logged
// and otherwise ignored: Postgres stays the source of truth.
type detailCache struct {
	cache detailBackend
	log   logger.Logger
}

func newDetailCache(c *pkgcache.ProductCache, log logger.Logger) detailCache {
	if c == nil {
		return detailCache{log: log}
	}
	return detailCache{cache: c, log: log}
}

func (d detailCache) get(ctx context.Context, slug string) (*models.Product, bool) {
	if d.cache == nil {
		return nil, false
	}
	cached, err := d.cache.Get(ctx, slug)
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			d.log.WarnContext(ctx, "product cache read failed", "slug", slug, "error", err)
		}
		return nil, false
	}
	return FromCached(cached), true
}

// version must be read before the Postgres load whose result is warmed.
// ok is false when the cache is absent or unreadable; callers then skip the warm.
func (d detailCache) version(ctx context.Context, slug string) (ver int64, ok bool) {
	if d.cache == nil {
		return 0, false
	}
	ver, err := d.cache.Version(ctx, slug)
	if err != nil {
		d.log.WarnContext(ctx, "product cache version read failed", "slug", slug, "error", err)
		return 0, false
	}
	return ver, true
}

// warm stores p in the background unless it was evicted after ver was read.
func (d detailCache) warm(ctx context.Context, p *models.Product, ver int64) {
	if d.cache == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		d.store(ctx, p, ver)
	}()
}

func (d detailCache) store(ctx context.Context, p *models.Product, ver int64) {
	err := d.cache.SetIfVersion(ctx, ToCached(p), ver)
	switch {
	case errors.Is(err, pkgcache.ErrStaleEntry):
		d.log.DebugContext(ctx, "product cache warm skipped, entry evicted", "slug", p.Slug)
	case err != nil:
		d.log.WarnContext(ctx, "product cache write failed", "slug", p.Slug, "error", err)
	}
}

func (d detailCache) evict(ctx context.Context, slug models.Slug) {
	if d.cache == nil || slug == "" {
		return
	}
	if err := d.cache.Delete(ctx, slug.String()); err != nil {
		d.log.WarnContext(ctx, "product cache eviction failed", "slug", slug, "error", err)
	}
}
