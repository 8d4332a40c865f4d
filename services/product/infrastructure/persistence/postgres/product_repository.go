package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ghuser/showcase/pkg/database"
	"github.com/ghuser/showcase/pkg/events"
	productdomain "github.com/ghuser/showcase/services/product/domain"
	domainevents "github.com/ghuser/showcase/services/product/domain/events"
	"github.com/ghuser/showcase/services/product/domain/models"
	"github.com/ghuser/showcase/services/product/domain/repositories"
	"github.com/ghuser/showcase/services/product/infrastructure/persistence/postgres/db"
)

const (
	uniqueViolation = "23505"
	slugConstraint  = "products_slug_unique"
)

// ProductRepository implements repositories.ProductRepository against PostgreSQL.
type ProductRepository struct {
	db  *database.Database
	bus *events.EventBus
}

// NewProductRepository returns a ProductRepository backed by the given connection pool
// and event bus. A nil bus disables event publishing (seed and tests).
func NewProductRepository(database *database.Database, bus *events.EventBus) *ProductRepository {
	return &ProductRepository{db: database, bus: bus}
}

// Create persists a new Product and publishes a ProductSubmittedEvent within the same transaction.
// Returns ErrSlugTaken when the slug unique index rejects the row.
func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	tags := p.Tags
	if tags == nil {
		tags = []string{} // column is NOT NULL
	}
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		q := db.New(tx)
		if err := q.InsertProduct(ctx, db.InsertProductParams{
			ID:             p.ID,
			Name:           p.Name,
			Slug:           p.Slug.String(),
			Tagline:        p.Tagline,
			Description:    p.Description,
			WebUrl:         p.WebURL,
			WebImage:       p.WebImage,
			Tags:           tags,
			VoteCount:      int32(p.VoteCount),
			Status:         p.Status.String(),
			SubmittedBy:    p.SubmittedBy,
			UserID:         p.UserID,
			OrganizationID: nullString(p.OrganizationID),
			CreatedAt:      p.CreatedAt,
			UpdatedAt:      p.UpdatedAt,
		}); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == slugConstraint {
				return productdomain.ErrSlugTaken
			}
			return fmt.Errorf("insert product: %w", err)
		}

		org := ""
		if p.OrganizationID != nil {
			org = *p.OrganizationID
		}
		return r.publish(ctx, tx, domainevents.TopicProductSubmitted, func(id uuid.UUID) any {
			return domainevents.ProductSubmittedEvent{
				EventID:        id,
				Version:        1,
				ProductID:      p.ID,
				Slug:           p.Slug.String(),
				UserID:         p.UserID,
				OrganizationID: org,
				OccurredAt:     p.CreatedAt,
			}
		})
	})
}

// GetByID retrieves a Product by ID. Returns ErrProductNotFound if not found.
func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	row, err := db.New(r.db.DB()).GetProductByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "query product")
	}
	return rowToProduct(row), nil
}

// GetBySlug retrieves a Product of any status by slug. Returns ErrProductNotFound if not found.
func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	row, err := db.New(r.db.DB()).GetProductBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err, "query product by slug")
	}
	return rowToProduct(row), nil
}

// ListApproved retrieves a window of approved products in the given order.
func (r *ProductRepository) ListApproved(ctx context.Context, order repositories.Order, opts repositories.QueryOpts) ([]*models.Product, error) {
	q := db.New(r.db.DB())
	arg := db.ListApprovedParams{Limit: int32(opts.Limit), Offset: int32(opts.Offset)}

	var rows []db.Product
	var err error
	switch order {
	case repositories.OrderTopVoted:
		rows, err = q.ListApprovedTopVoted(ctx, arg)
	default:
		rows, err = q.ListApprovedNewest(ctx, arg)
	}
	if err != nil {
		return nil, fmt.Errorf("query approved products: %w", err)
	}
	return rowsToProducts(rows), nil
}

// ListAdmin retrieves products of any status matching every predicate in filter.
func (r *ProductRepository) ListAdmin(ctx context.Context, filter repositories.Filter, opts repositories.QueryOpts) ([]*models.Product, error) {
	arg := db.ListAdminProductsParams{Limit: int32(opts.Limit), Offset: int32(opts.Offset)}
	for _, pred := range filter {
		switch p := pred.(type) {
		case repositories.ByStatus:
			arg.Status = sql.NullString{String: p.Status.String(), Valid: true}
		case repositories.ByText:
			arg.Search = sql.NullString{String: escapeLike(p.Query), Valid: true}
		case repositories.ByTags:
			arg.Tags = p.Tags
		default:
			return nil, fmt.Errorf("unsupported predicate %T", pred)
		}
	}

	rows, err := db.New(r.db.DB()).ListAdminProducts(ctx, arg)
	if err != nil {
		return nil, fmt.Errorf("query admin products: %w", err)
	}
	return rowsToProducts(rows), nil
}

// CountByStatus returns per-status counts; statuses without rows stay 0.
func (r *ProductRepository) CountByStatus(ctx context.Context) (models.Stats, error) {
	rows, err := db.New(r.db.DB()).CountProductsByStatus(ctx)
	if err != nil {
		return models.Stats{}, fmt.Errorf("count products: %w", err)
	}
	var stats models.Stats
	for _, row := range rows {
		stats.Add(models.Status(row.Status), int(row.Count))
	}
	return stats, nil
}

// CountPending returns the number of products awaiting moderation.
func (r *ProductRepository) CountPending(ctx context.Context) (int, error) {
	n, err := db.New(r.db.DB()).CountPendingProducts(ctx)
	if err != nil {
		return 0, fmt.Errorf("count pending products: %w", err)
	}
	return int(n), nil
}

// AllTags returns the sorted distinct union of all product tags.
func (r *ProductRepository) AllTags(ctx context.Context) ([]string, error) {
	tags, err := db.New(r.db.DB()).ListDistinctTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}

// AdjustVotes applies delta atomically, never letting the count drop below zero.
func (r *ProductRepository) AdjustVotes(ctx context.Context, id uuid.UUID, delta int) (repositories.VoteResult, error) {
	row, err := db.New(r.db.DB()).AdjustProductVotes(ctx, db.AdjustProductVotesParams{ID: id, Delta: int32(delta)})
	if err != nil {
		return repositories.VoteResult{}, notFound(err, "adjust votes")
	}
	return repositories.VoteResult{ID: row.ID, Slug: models.Slug(row.Slug), VoteCount: int(row.VoteCount)}, nil
}

// UpdateStatus applies the transition and publishes a ProductStatusChangedEvent within the same transaction.
func (r *ProductRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.Status, at time.Time) (*models.Product, error) {
	var product *models.Product
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		row, err := db.New(tx).UpdateProductStatus(ctx, db.UpdateProductStatusParams{
			ID:        id,
			Status:    status.String(),
			UpdatedAt: at,
		})
		if err != nil {
			return notFound(err, "update status")
		}
		product = rowToProduct(row)

		return r.publish(ctx, tx, domainevents.TopicProductStatusChanged, func(eventID uuid.UUID) any {
			return domainevents.ProductStatusChangedEvent{
				EventID:    eventID,
				Version:    1,
				ProductID:  product.ID,
				Slug:       product.Slug.String(),
				Status:     product.Status.String(),
				OccurredAt: at,
			}
		})
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// Delete removes the product and publishes a ProductDeletedEvent within the same transaction.
func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product *models.Product
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		row, err := db.New(tx).DeleteProduct(ctx, id)
		if err != nil {
			return notFound(err, "delete product")
		}
		product = rowToProduct(row)

		return r.publish(ctx, tx, domainevents.TopicProductDeleted, func(eventID uuid.UUID) any {
			return domainevents.ProductDeletedEvent{
				EventID:    eventID,
				Version:    1,
				ProductID:  product.ID,
				Slug:       product.Slug.String(),
				OccurredAt: time.Now().UTC(),
			}
		})
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// publish writes one event to the outbox inside tx. build receives the event id.
func (r *ProductRepository) publish(ctx context.Context, tx *sql.Tx, topic string, build func(eventID uuid.UUID) any) error {
	if r.bus == nil {
		return nil
	}
	eventID := uuid.New()
	msg, err := events.NewJSONMessage(ctx, eventID.String(), 1, build(eventID))
	if err != nil {
		return err
	}
	p, err := r.bus.NewTxPublisher(tx)
	if err != nil {
		return fmt.Errorf("create publisher: %w", err)
	}
	if err := p.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

func notFound(err error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return productdomain.ErrProductNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

// escapeLike makes s match literally inside an ILIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func rowsToProducts(rows []db.Product) []*models.Product {
	out := make([]*models.Product, len(rows))
	for i, row := range rows {
		out[i] = rowToProduct(row)
	}
	return out
}

// rowToProduct maps a db.Product to a domain models.Product.
func rowToProduct(row db.Product) *models.Product {
	p := &models.Product{
		ID:          row.ID,
		Name:        row.Name,
		Slug:        models.Slug(row.Slug),
		Tagline:     row.Tagline,
		Description: row.Description,
		WebURL:      row.WebUrl,
		WebImage:    row.WebImage,
		Tags:        row.Tags,
		VoteCount:   int(row.VoteCount),
		Status:      models.Status(row.Status),
		SubmittedBy: row.SubmittedBy,
		UserID:      row.UserID,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if row.OrganizationID.Valid {
		org := row.OrganizationID.String
		p.OrganizationID = &org
	}
	if row.ApprovedAt.Valid {
		at := row.ApprovedAt.Time
		p.ApprovedAt = &at
	}
	return p
}
