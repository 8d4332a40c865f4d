package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/showcase/services/product/domain/models"
)

// QueryOpts contains pagination parameters for list queries.
type QueryOpts struct {
	Limit  int // Maximum number of records to return
	Offset int // Number of records to skip
}

// Order selects the ranking of a public listing. Every ordering ends with
// id DESC so repeated windows over unchanged data are stable.
type Order int

const (
	// OrderNewest ranks by created_at DESC.
	OrderNewest Order = iota
	// OrderTopVoted ranks by vote_count DESC, then created_at DESC.
	OrderTopVoted
)

// VoteResult is the state of a product right after a vote.
type VoteResult struct {
	ID        uuid.UUID
	Slug      models.Slug
	VoteCount int
}

// ProductRepository is the persistence interface for the Product aggregate.
// The domain layer owns this interface; infrastructure implements it.
// Lookups by id or slug return domain.ErrProductNotFound when nothing matches.
type ProductRepository interface {
	// Create inserts a pending product and publishes ProductSubmittedEvent in
	// the same transaction. Returns domain.ErrSlugTaken on a slug collision.
	Create(ctx context.Context, p *models.Product) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)

	// GetBySlug matches any status; visibility is the caller's decision.
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)

	// ListApproved returns approved products only.
	ListApproved(ctx context.Context, order Order, opts QueryOpts) ([]*models.Product, error)

	// ListAdmin returns products of any status matching filter, newest first.
	ListAdmin(ctx context.Context, filter Filter, opts QueryOpts) ([]*models.Product, error)

	CountByStatus(ctx context.Context) (models.Stats, error)
	CountPending(ctx context.Context) (int, error)

	// AllTags returns the distinct tags across every product, sorted.
	AllTags(ctx context.Context) ([]string, error)

	// AdjustVotes adds delta to the vote count in one statement, floored at zero.
	AdjustVotes(ctx context.Context, id uuid.UUID, delta int) (VoteResult, error)

	// UpdateStatus applies a status transition and publishes
	// ProductStatusChangedEvent in the same transaction.
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.Status, at time.Time) (*models.Product, error)

	// Delete physically removes the product, returning the removed row, and
	// publishes ProductDeletedEvent in the same transaction.
	Delete(ctx context.Context, id uuid.UUID) (*models.Product, error)
}
