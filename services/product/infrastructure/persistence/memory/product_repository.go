// Package memory is an in-process ProductRepository with the same predicates,
// orderings and error contract as the Postgres implementation. The service and
// HTTP tests run against it.
package memory

import (
	"bytes"
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	productdomain "github.com/ghuser/showcase/services/product/domain"
	"github.com/ghuser/showcase/services/product/domain/events"
	"github.com/ghuser/showcase/services/product/domain/models"
	"github.com/ghuser/showcase/services/product/domain/repositories"
)

// ProductRepository stores products in a map guarded by a mutex.
// Returned products are copies.
type ProductRepository struct {
	mu       sync.Mutex
	products map[uuid.UUID]*models.Product
	topics   []string

	// CreateErr, when set, fails every Create.
	CreateErr error
	// UpdateErr fails UpdateStatus for specific ids.
	UpdateErr map[uuid.UUID]error
}

var _ repositories.ProductRepository = (*ProductRepository)(nil)

// NewProductRepository returns a repository holding copies of ps.
func NewProductRepository(ps ...*models.Product) *ProductRepository {
	r := &ProductRepository{
		products:  make(map[uuid.UUID]*models.Product, len(ps)),
		UpdateErr: map[uuid.UUID]error{},
	}
	for _, p := range ps {
		r.products[p.ID] = clone(p)
	}
	return r
}

func clone(p *models.Product) *models.Product {
	c := *p
	c.Tags = slices.Clone(p.Tags)
	return &c
}

// Get returns a copy of the stored product, or nil.
func (r *ProductRepository) Get(id uuid.UUID) *models.Product {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[id]; ok {
		return clone(p)
	}
	return nil
}

// Len returns the number of stored products.
func (r *ProductRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.products)
}

// Topics lists the event topics that would have been published, in order.
func (r *ProductRepository) Topics() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.topics)
}

func (r *ProductRepository) Create(_ context.Context, p *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.CreateErr != nil {
		return r.CreateErr
	}
	for _, existing := range r.products {
		if existing.Slug == p.Slug {
			return productdomain.ErrSlugTaken
		}
	}
	r.products[p.ID] = clone(p)
	r.topics = append(r.topics, events.TopicProductSubmitted)
	return nil
}

func (r *ProductRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	if p := r.Get(id); p != nil {
		return p, nil
	}
	return nil, productdomain.ErrProductNotFound
}

func (r *ProductRepository) GetBySlug(_ context.Context, slug string) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.Slug.String() == slug {
			return clone(p), nil
		}
	}
	return nil, productdomain.ErrProductNotFound
}

// newest orders by created_at DESC, id DESC.
func newest(a, b *models.Product) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return bytes.Compare(b.ID[:], a.ID[:])
}

// topVoted orders by vote_count DESC, then newest.
func topVoted(a, b *models.Product) int {
	if c := cmp.Compare(b.VoteCount, a.VoteCount); c != 0 {
		return c
	}
	return newest(a, b)
}

func (r *ProductRepository) list(keep func(*models.Product) bool, order func(a, b *models.Product) int, opts repositories.QueryOpts) []*models.Product {
	r.mu.Lock()
	var all []*models.Product
	for _, p := range r.products {
		if keep(p) {
			all = append(all, clone(p))
		}
	}
	r.mu.Unlock()

	slices.SortFunc(all, order)
	if opts.Offset >= len(all) {
		return []*models.Product{}
	}
	return all[opts.Offset:min(len(all), opts.Offset+opts.Limit)]
}

func (r *ProductRepository) ListApproved(_ context.Context, order repositories.Order, opts repositories.QueryOpts) ([]*models.Product, error) {
	cmpFn := newest
	if order == repositories.OrderTopVoted {
		cmpFn = topVoted
	}
	return r.list(func(p *models.Product) bool { return p.Status == models.StatusApproved }, cmpFn, opts), nil
}

func (r *ProductRepository) ListAdmin(_ context.Context, f repositories.Filter, opts repositories.QueryOpts) ([]*models.Product, error) {
	return r.list(f.Matches, newest, opts), nil
}

func (r *ProductRepository) CountByStatus(context.Context) (models.Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var s models.Stats
	for _, p := range r.products {
		s.Add(p.Status, 1)
	}
	return s, nil
}

func (r *ProductRepository) CountPending(ctx context.Context) (int, error) {
	s, err := r.CountByStatus(ctx)
	return s.Pending, err
}

func (r *ProductRepository) AllTags(context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tags := []string{}
	for _, p := range r.products {
		for _, t := range p.Tags {
			if !slices.Contains(tags, t) {
				tags = append(tags, t)
			}
		}
	}
	slices.Sort(tags)
	return tags, nil
}

func (r *ProductRepository) AdjustVotes(_ context.Context, id uuid.UUID, delta int) (repositories.VoteResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return repositories.VoteResult{}, productdomain.ErrProductNotFound
	}
	n := p.AdjustVotes(delta)
	return repositories.VoteResult{ID: id, Slug: p.Slug, VoteCount: n}, nil
}

func (r *ProductRepository) UpdateStatus(_ context.Context, id uuid.UUID, status models.Status, at time.Time) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.UpdateErr[id]; err != nil {
		return nil, err
	}
	p, ok := r.products[id]
	if !ok {
		return nil, productdomain.ErrProductNotFound
	}
	p.ApplyStatus(status, at)
	r.topics = append(r.topics, events.TopicProductStatusChanged)
	return clone(p), nil
}

func (r *ProductRepository) Delete(_ context.Context, id uuid.UUID) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, productdomain.ErrProductNotFound
	}
	delete(r.products, id)
	r.topics = append(r.topics, events.TopicProductDeleted)
	return p, nil
}
