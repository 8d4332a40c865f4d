package main

import (
	"context"
	"errors"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/ghuser/showcase/pkg/cache"
	"github.com/ghuser/showcase/pkg/events"
	"github.com/ghuser/showcase/pkg/logger"
	appsvcs "github.com/ghuser/showcase/services/product/application/services"
	productdomain "github.com/ghuser/showcase/services/product/domain"
	domainevents "github.com/ghuser/showcase/services/product/domain/events"
	"github.com/ghuser/showcase/services/product/domain/models"
)

type productReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type detailStore interface {
	Version(ctx context.Context, slug string) (int64, error)
	SetIfVersion(ctx context.Context, p *cache.CachedProduct, ver int64) error
	Delete(ctx context.Context, slug string) error
}

type viewStore interface {
	Invalidate(ctx context.Context, groups ...cache.ViewGroup) error
}

// productHandlers keep the Redis read side in step with committed product
// changes. The api process invalidates right after each mutation; these run
// from the outbox, so a change whose api-side invalidation was lost still
// reaches the cache. Handlers must be idempotent: EventBus retries up to 3x.
type productHandlers struct {
	products productReader
	details  detailStore
	views    viewStore
	log      logger.Logger
}

type route struct {
	topic  string
	handle func(context.Context, *message.Message) error
}

func (h *productHandlers) routes() []route {
	return []route{
		{domainevents.TopicProductSubmitted, h.submitted},
		{domainevents.TopicProductStatusChanged, h.statusChanged},
		{domainevents.TopicProductDeleted, h.deleted},
	}
}

// submitted refreshes the moderation views; new products are never public.
func (h *productHandlers) submitted(ctx context.Context, msg *message.Message) error {
	evt, err := events.DecodeJSON[domainevents.ProductSubmittedEvent](msg)
	if err != nil {
		return err
	}
	h.log.InfoContext(ctx, "product submitted", "product_id", evt.ProductID, "slug", evt.Slug)
	return h.views.Invalidate(ctx, cache.GroupAdmin)
}

// statusChanged re-reads the product and warms its detail entry. A product
// deleted in the meantime is evicted instead.
func (h *productHandlers) statusChanged(ctx context.Context, msg *message.Message) error {
	evt, err := events.DecodeJSON[domainevents.ProductStatusChangedEvent](msg)
	if err != nil {
		return err
	}

	ver, verErr := h.details.Version(ctx, evt.Slug)
	p, err := h.products.GetByID(ctx, evt.ProductID)
	switch {
	case errors.Is(err, productdomain.ErrProductNotFound):
		if err := h.details.Delete(ctx, evt.Slug); err != nil {
			return err
		}
	case err != nil:
		return err
	case verErr != nil:
		h.log.WarnContext(ctx, "cache version read failed for product.status_changed",
			"product_id", evt.ProductID, "error", verErr)
	default:
		// Cache warming is best-effort; log but do not fail the handler.
		err := h.details.SetIfVersion(ctx, appsvcs.ToCached(p), ver)
		switch {
		case errors.Is(err, cache.ErrStaleEntry):
			h.log.DebugContext(ctx, "cache warm skipped, entry evicted", "product_id", evt.ProductID)
		case err != nil:
			h.log.WarnContext(ctx, "cache warm failed for product.status_changed",
				"product_id", evt.ProductID, "error", err)
		}
	}

	h.log.InfoContext(ctx, "product status changed",
		"product_id", evt.ProductID, "slug", evt.Slug, "status", evt.Status)
	return h.views.Invalidate(ctx, cache.AllGroups...)
}

// deleted evicts the detail entry and every view.
func (h *productHandlers) deleted(ctx context.Context, msg *message.Message) error {
	evt, err := events.DecodeJSON[domainevents.ProductDeletedEvent](msg)
	if err != nil {
		return err
	}
	if err := h.details.Delete(ctx, evt.Slug); err != nil {
		return err
	}
	h.log.InfoContext(ctx, "product deleted", "product_id", evt.ProductID, "slug", evt.Slug)
	return h.views.Invalidate(ctx, cache.AllGroups...)
}
