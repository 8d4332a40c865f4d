package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ghuser/showcase/pkg/auth"
	pkgcache "github.com/ghuser/showcase/pkg/cache"
	"github.com/ghuser/showcase/pkg/httpx"
	"github.com/ghuser/showcase/pkg/logger"
	productdomain "github.com/ghuser/showcase/services/product/domain"
	"github.com/ghuser/showcase/services/product/domain/models"
	"github.com/ghuser/showcase/services/product/domain/repositories"
)

// Listing sizes.
const (
	FeaturedLimit        = 6
	DefaultAllLimit      = 20
	DefaultTrendingLimit = 10
	DefaultRecentLimit   = 10
	ExploreLimit         = 6
	DefaultAdminLimit    = 20
)

// View names a public listing.
type View string

const (
	ViewAll      View = "all"
	ViewTrending View = "trending"
	ViewRecent   View = "recent"
)

// ParseView maps a query parameter to a View. Empty means ViewAll.
func ParseView(s string) (View, error) {
	switch View(s) {
	case "", ViewAll:
		return ViewAll, nil
	case ViewTrending, ViewRecent:
		return View(s), nil
	}
	return "", fmt.Errorf("unknown view %q", s)
}

// DefaultLimit is the page size used when the caller gives none.
func (v View) DefaultLimit() int {
	switch v {
	case ViewTrending:
		return DefaultTrendingLimit
	case ViewRecent:
		return DefaultRecentLimit
	default:
		return DefaultAllLimit
	}
}

func (v View) order() repositories.Order {
	if v == ViewTrending {
		return repositories.OrderTopVoted
	}
	return repositories.OrderNewest
}

// Explore is the first page of every discovery tab.
type Explore struct {
	All      models.Page
	Trending models.Page
	Recent   models.Page
}

// AdminFilter is the raw admin search form. Blank fields do not filter.
type AdminFilter struct {
	Status string
	Search string
	Tags   []string
}

// QueryService serves every read. Results go through the Redis view cache when
// one is configured; the product detail uses the slug-keyed hash cache.
// Visibility of non-approved products is decided here, never in the repository.
type QueryService struct {
	repo     repositories.ProductRepository
	views    *pkgcache.ViewCache
	products detailCache
	log      logger.Logger
}

// NewQueryService returns a QueryService. views and products may be nil.
func NewQueryService(repo repositories.ProductRepository, views *pkgcache.ViewCache, products *pkgcache.ProductCache, log logger.Logger) *QueryService {
	return &QueryService{
		repo:     repo,
		views:    views,
		products: newDetailCache(products, log),
		log:      log,
	}
}

// Featured returns the six most voted approved products.
func (s *QueryService) Featured(ctx context.Context) ([]*models.Product, error) {
	return pkgcache.ReadThrough(ctx, s.views, s.log, pkgcache.GroupHome, "featured", nil,
		func(ctx context.Context) ([]*models.Product, error) {
			items, err := s.repo.ListApproved(ctx, repositories.OrderTopVoted, repositories.QueryOpts{Limit: FeaturedLimit})
			if err != nil {
				return nil, fmt.Errorf("list featured: %w", err)
			}
			if items == nil {
				items = []*models.Product{}
			}
			return items, nil
		})
}

// BySlug returns the product with slug. Products that are not approved are
// visible to admins and to their submitter only; everyone else gets
// ErrProductNotFound, exactly as for a missing slug.
func (s *QueryService) BySlug(ctx context.Context, caller auth.Caller, slug string) (*models.Product, error) {
	p, ok := s.products.get(ctx, slug)
	if !ok {
		ver, cacheable := s.products.version(ctx, slug)
		var err error
		p, err = s.repo.GetBySlug(ctx, slug)
		if err != nil {
			return nil, fmt.Errorf("get product %s: %w", slug, err)
		}
		if cacheable {
			s.products.warm(ctx, p, ver)
		}
	}

	if !p.IsPublic() && !caller.IsAdmin && (caller.UserID == "" || caller.UserID != p.UserID) {
		return nil, productdomain.ErrProductNotFound
	}
	return p, nil
}

// List returns one page of a public listing. Limit is clamped to [1, 100]
// with the view's default for 0; a negative offset becomes 0.
func (s *QueryService) List(ctx context.Context, view View, limit, offset int) (models.Page, error) {
	w := httpx.ClampPage(limit, offset, view.DefaultLimit())
	return pkgcache.ReadThrough(ctx, s.views, s.log, pkgcache.GroupExplore, string(view), []any{w.Limit, w.Offset},
		func(ctx context.Context) (models.Page, error) {
			items, err := s.repo.ListApproved(ctx, view.order(), repositories.QueryOpts{Limit: w.Limit, Offset: w.Offset})
			if err != nil {
				return models.Page{}, fmt.Errorf("list %s: %w", view, err)
			}
			return models.NewPage(items, w.Limit, w.Offset), nil
		})
}

// All lists approved products, newest first.
func (s *QueryService) All(ctx context.Context, limit, offset int) (models.Page, error) {
	return s.List(ctx, ViewAll, limit, offset)
}

// Trending lists approved products by votes, then recency.
func (s *QueryService) Trending(ctx context.Context, limit, offset int) (models.Page, error) {
	return s.List(ctx, ViewTrending, limit, offset)
}

// Recent lists approved products, newest first.
func (s *QueryService) Recent(ctx context.Context, limit, offset int) (models.Page, error) {
	return s.List(ctx, ViewRecent, limit, offset)
}

// Explore loads the first ExploreLimit items of every tab concurrently.
func (s *QueryService) Explore(ctx context.Context) (Explore, error) {
	var out Explore
	g, gctx := errgroup.WithContext(ctx)
	for view, dst := range map[View]*models.Page{
		ViewAll:      &out.All,
		ViewTrending: &out.Trending,
		ViewRecent:   &out.Recent,
	} {
		g.Go(func() error {
			page, err := s.List(gctx, view, ExploreLimit, 0)
			if err != nil {
				return err
			}
			*dst = page
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Explore{}, err
	}
	return out, nil
}

// AdminStats counts products per status.
func (s *QueryService) AdminStats(ctx context.Context) (models.Stats, error) {
	return pkgcache.ReadThrough(ctx, s.views, s.log, pkgcache.GroupAdmin, "stats", nil,
		func(ctx context.Context) (models.Stats, error) {
			stats, err := s.repo.CountByStatus(ctx)
			if err != nil {
				return models.Stats{}, fmt.Errorf("count by status: %w", err)
			}
			return stats, nil
		})
}

// AdminProducts lists products of any status matching f, newest first.
// An unknown status is ErrInvalidStatus.
func (s *QueryService) AdminProducts(ctx context.Context, f AdminFilter, limit, offset int) (models.Page, error) {
	var status models.Status
	if f.Status != "" {
		st, err := models.ParseStatus(f.Status)
		if err != nil {
			return models.Page{}, fmt.Errorf("%w: %w", productdomain.ErrInvalidStatus, err)
		}
		status = st
	}
	filter := repositories.NewFilter(status, f.Search, f.Tags)
	tags := repositories.CleanTags(f.Tags)
	w := httpx.ClampPage(limit, offset, DefaultAdminLimit)

	params := []any{string(status), f.Search, tags, w.Limit, w.Offset}
	return pkgcache.ReadThrough(ctx, s.views, s.log, pkgcache.GroupAdmin, "products", params,
		func(ctx context.Context) (models.Page, error) {
			items, err := s.repo.ListAdmin(ctx, filter, repositories.QueryOpts{Limit: w.Limit, Offset: w.Offset})
			if err != nil {
				return models.Page{}, fmt.Errorf("list admin products: %w", err)
			}
			return models.NewPage(items, w.Limit, w.Offset), nil
		})
}

// PendingCount counts products awaiting moderation.
func (s *QueryService) PendingCount(ctx context.Context) (int, error) {
	return pkgcache.ReadThrough(ctx, s.views, s.log, pkgcache.GroupAdmin, "pending-count", nil,
		func(ctx context.Context) (int, error) {
			n, err := s.repo.CountPending(ctx)
			if err != nil {
				return 0, fmt.Errorf("count pending: %w", err)
			}
			return n, nil
		})
}

// AllTags returns every distinct tag, sorted.
func (s *QueryService) AllTags(ctx context.Context) ([]string, error) {
	return pkgcache.ReadThrough(ctx, s.views, s.log, pkgcache.GroupAdmin, "tags", nil,
		func(ctx context.Context) ([]string, error) {
			tags, err := s.repo.AllTags(ctx)
			if err != nil {
				return nil, fmt.Errorf("all tags: %w", err)
			}
			if tags == nil {
				tags = []string{}
			}
			return tags, nil
		})
}
