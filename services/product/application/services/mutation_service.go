package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ghuser/showcase/pkg/auth"
	pkgcache "github.com/ghuser/showcase/pkg/cache"
	"github.com/ghuser/showcase/pkg/logger"
	"github.com/ghuser/showcase/pkg/telemetry"
	productdomain "github.com/ghuser/showcase/services/product/domain"
	"github.com/ghuser/showcase/services/product/domain/models"
	"github.com/ghuser/showcase/services/product/domain/repositories"
)

// Confirmation messages returned with successful mutations.
const (
	MsgSubmitted     = "Product submitted for review"
	MsgVoted         = "Vote recorded"
	MsgStatusUpdated = "Product status updated"
	MsgBulkUpdated   = "Product statuses updated"
	MsgDeleted       = "Product deleted"
)

// bulkConcurrency bounds the per-id updates of BulkUpdateStatus.
const bulkConcurrency = 8

// MutationDeps are the collaborators of MutationService. Only Repo and Logger
// are required; Images is required for SubmitProduct.
type MutationDeps struct {
	Repo     repositories.ProductRepository
	Images   ImageStore
	Views    *pkgcache.ViewCache
	Products *pkgcache.ProductCache
	Metrics  *telemetry.ProductMetrics
	Logger   logger.Logger
	Now      func() time.Time
}

// MutationService performs every write. Each operation authorizes the caller
// it is given; the caller's profile is resolved per request upstream.
// Event publishing is handled by the repository layer (outbox pattern).
type MutationService struct {
	repo     repositories.ProductRepository
	images   ImageStore
	views    *pkgcache.ViewCache
	products detailCache
	metrics  *telemetry.ProductMetrics
	log      logger.Logger
	now      func() time.Time
}

// NewMutationService returns a MutationService wired with deps.
func NewMutationService(deps MutationDeps) *MutationService {
	now := deps.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &MutationService{
		repo:     deps.Repo,
		images:   deps.Images,
		views:    deps.Views,
		products: newDetailCache(deps.Products, deps.Logger),
		metrics:  deps.Metrics,
		log:      deps.Logger,
		now:      now,
	}
}

// SubmitProduct validates in, uploads the image and stores a pending product
// stamped with the caller. Validation failures are *domain.ValidationError.
// The image is uploaded first; if the insert then fails it is removed again.
func (s *MutationService) SubmitProduct(ctx context.Context, caller auth.Caller, in SubmitInput) (*models.Product, error) {
	if err := requireMember(caller); err != nil {
		return nil, err
	}

	sniffed, verr := validateSubmission(in)
	if verr != nil {
		s.metrics.Submission(ctx, "invalid")
		return nil, verr
	}
	slug, err := models.NewSlug(in.Slug)
	if err != nil {
		return nil, productdomain.NewFieldError("slug", err.Error())
	}

	if s.images == nil {
		return nil, fmt.Errorf("%w: no image store configured", productdomain.ErrImageUpload)
	}
	data := in.Image.Data
	obj, err := s.images.Upload(ctx, bytes.NewReader(data), int64(len(data)), sniffed, imageExt(sniffed))
	if err != nil {
		s.log.ErrorContext(ctx, "image upload failed", "slug", slug, "user_id", caller.UserID, "error", err)
		s.metrics.Submission(ctx, "upload_failed")
		return nil, fmt.Errorf("%w: %w", productdomain.ErrImageUpload, err)
	}

	p := models.NewProduct(models.NewProductParams{
		Name:           in.Name,
		Slug:           slug,
		Tagline:        in.Tagline,
		Description:    in.Description,
		WebURL:         in.WebURL,
		WebImage:       obj.URL,
		Tags:           in.Tags,
		SubmittedBy:    submittedBy(caller.Email),
		UserID:         caller.UserID,
		OrganizationID: caller.OrgID,
	})

	if err := s.repo.Create(ctx, p); err != nil {
		s.discardImage(ctx, obj.Key)
		if errors.Is(err, productdomain.ErrSlugTaken) {
			s.log.WarnContext(ctx, "slug collision on submit", "slug", slug)
			s.metrics.Submission(ctx, "slug_taken")
			return nil, err
		}
		s.log.ErrorContext(ctx, "product insert failed", "slug", slug, "error", err)
		s.metrics.Submission(ctx, "failed")
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.metrics.Submission(ctx, "ok")
	s.log.InfoContext(ctx, "product submitted", "product_id", p.ID, "slug", slug, "user_id", caller.UserID)
	pkgcache.InvalidateAsync(ctx, s.views, s.log, pkgcache.GroupAdmin)
	return p, nil
}

// Upvote adds one vote and returns the new count.
func (s *MutationService) Upvote(ctx context.Context, caller auth.Caller, id uuid.UUID) (int, error) {
	return s.vote(ctx, caller, id, 1)
}

// Downvote removes one vote, never going below zero, and returns the new count.
func (s *MutationService) Downvote(ctx context.Context, caller auth.Caller, id uuid.UUID) (int, error) {
	return s.vote(ctx, caller, id, -1)
}

func (s *MutationService) vote(ctx context.Context, caller auth.Caller, id uuid.UUID, delta int) (int, error) {
	if err := requireMember(caller); err != nil {
		return 0, err
	}

	res, err := s.repo.AdjustVotes(ctx, id, delta)
	if err != nil {
		if !errors.Is(err, productdomain.ErrProductNotFound) {
			s.log.ErrorContext(ctx, "vote failed", "product_id", id, "delta", delta, "error", err)
		}
		return 0, fmt.Errorf("vote: %w", err)
	}

	direction := "up"
	if delta < 0 {
		direction = "down"
	}
	s.metrics.Vote(ctx, direction)
	s.products.evict(ctx, res.Slug)
	pkgcache.InvalidateAsync(ctx, s.views, s.log, pkgcache.PublicGroups...)
	return res.VoteCount, nil
}

// UpdateStatus moves one product to status. Admin only.
func (s *MutationService) UpdateStatus(ctx context.Context, caller auth.Caller, id uuid.UUID, status string) (*models.Product, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	st, err := parseStatus(status)
	if err != nil {
		return nil, err
	}

	p, err := s.applyStatus(ctx, id, st)
	if err != nil {
		return nil, err
	}
	pkgcache.InvalidateAsync(ctx, s.views, s.log, pkgcache.AllGroups...)
	return p, nil
}

// BatchItem is the outcome for one id of a bulk update.
type BatchItem struct {
	ID      uuid.UUID `json:"id"`
	Success bool      `json:"success"`
	Error   string    `json:"error,omitempty"`
}

// BatchResult reports a best-effort bulk update id by id, in request order.
type BatchResult struct {
	Status    models.Status `json:"status"`
	Items     []BatchItem   `json:"items"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
}

// OK reports whether every id was updated.
func (r BatchResult) OK() bool { return r.Failed == 0 }

// BulkUpdateStatus applies status to every id independently, each in its own
// transaction, with bounded concurrency. One failing id never stops the others;
// the result says which ids failed. Duplicate ids are processed once. Admin only.
func (s *MutationService) BulkUpdateStatus(ctx context.Context, caller auth.Caller, ids []uuid.UUID, status string) (BatchResult, error) {
	if err := requireAdmin(caller); err != nil {
		return BatchResult{}, err
	}
	st, err := parseStatus(status)
	if err != nil {
		return BatchResult{}, err
	}

	ids = uniqueIDs(ids)
	res := BatchResult{Status: st, Items: make([]BatchItem, len(ids))}

	g := new(errgroup.Group)
	g.SetLimit(bulkConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			item := BatchItem{ID: id, Success: true}
			if _, err := s.applyStatus(ctx, id, st); err != nil {
				item.Success = false
				item.Error = batchMessage(err)
			}
			res.Items[i] = item
			return nil
		})
	}
	_ = g.Wait()

	for _, item := range res.Items {
		if item.Success {
			res.Succeeded++
		} else {
			res.Failed++
		}
	}
	if res.Failed > 0 {
		s.log.WarnContext(ctx, "bulk status update partially failed",
			"status", st, "succeeded", res.Succeeded, "failed", res.Failed)
	}
	if res.Succeeded > 0 {
		pkgcache.InvalidateAsync(ctx, s.views, s.log, pkgcache.AllGroups...)
	}
	return res, nil
}

func (s *MutationService) applyStatus(ctx context.Context, id uuid.UUID, st models.Status) (*models.Product, error) {
	p, err := s.repo.UpdateStatus(ctx, id, st, s.now())
	if err != nil {
		s.metrics.Transition(ctx, st.String(), false)
		if !errors.Is(err, productdomain.ErrProductNotFound) {
			s.log.ErrorContext(ctx, "status update failed", "product_id", id, "status", st, "error", err)
		}
		return nil, fmt.Errorf("update status: %w", err)
	}
	s.metrics.Transition(ctx, st.String(), true)
	s.products.evict(ctx, p.Slug)
	s.log.InfoContext(ctx, "product status changed", "product_id", id, "status", st)
	return p, nil
}

// DeleteProduct removes a product and its image. Admin only.
func (s *MutationService) DeleteProduct(ctx context.Context, caller auth.Caller, id uuid.UUID) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}

	p, err := s.repo.Delete(ctx, id)
	if err != nil {
		if !errors.Is(err, productdomain.ErrProductNotFound) {
			s.log.ErrorContext(ctx, "delete failed", "product_id", id, "error", err)
		}
		return fmt.Errorf("delete product: %w", err)
	}

	s.products.evict(ctx, p.Slug)
	if s.images != nil {
		if key, ok := s.images.KeyFromURL(p.WebImage); ok {
			s.discardImage(ctx, key)
		}
	}
	s.log.InfoContext(ctx, "product deleted", "product_id", id, "slug", p.Slug, "deleted_by", caller.UserID)
	pkgcache.InvalidateAsync(ctx, s.views, s.log, pkgcache.AllGroups...)
	return nil
}

// discardImage removes an uploaded object. Failures leave an orphan and are logged.
func (s *MutationService) discardImage(ctx context.Context, key string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.images.Delete(ctx, key); err != nil {
		s.log.WarnContext(ctx, "failed to remove uploaded image", "key", key, "error", err)
	}
}

// requireMember admits signed-in callers that belong to an organization.
func requireMember(c auth.Caller) error {
	if !c.Authenticated() {
		return productdomain.ErrUnauthenticated
	}
	if !c.HasOrganization() {
		return productdomain.ErrNoOrganization
	}
	return nil
}

// requireAdmin admits signed-in callers whose profile carries the admin flag.
func requireAdmin(c auth.Caller) error {
	if !c.Authenticated() {
		return productdomain.ErrUnauthenticated
	}
	if !c.IsAdmin {
		return productdomain.ErrForbidden
	}
	return nil
}

func parseStatus(s string) (models.Status, error) {
	st, err := models.ParseStatus(s)
	if err != nil {
		return "", fmt.Errorf("%w: %w", productdomain.ErrInvalidStatus, err)
	}
	return st, nil
}

func batchMessage(err error) string {
	if errors.Is(err, productdomain.ErrProductNotFound) {
		return productdomain.ErrProductNotFound.Error()
	}
	return "Something went wrong"
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
