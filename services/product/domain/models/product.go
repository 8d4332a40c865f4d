package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is the core aggregate for this bounded context.
type Product struct {
	ID             uuid.UUID
	Name           string
	Slug           Slug
	Tagline        string
	Description    string
	WebURL         string
	WebImage       string
	Tags           []string // insertion order is kept
	VoteCount      int
	Status         Status
	SubmittedBy    string
	UserID         string
	OrganizationID *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ApprovedAt     *time.Time
}

// NewProductParams are the caller-supplied fields of a submission.
type NewProductParams struct {
	Name           string
	Slug           Slug
	Tagline        string
	Description    string
	WebURL         string
	WebImage       string
	Tags           []string
	SubmittedBy    string
	UserID         string
	OrganizationID string
}

// NewProduct constructs a pending Product with zero votes, a generated ID and current timestamps.
func NewProduct(p NewProductParams) *Product {
	now := time.Now().UTC()
	var org *string
	if p.OrganizationID != "" {
		org = &p.OrganizationID
	}
	return &Product{
		ID:             uuid.New(),
		Name:           p.Name,
		Slug:           p.Slug,
		Tagline:        p.Tagline,
		Description:    p.Description,
		WebURL:         p.WebURL,
		WebImage:       p.WebImage,
		Tags:           append([]string(nil), p.Tags...),
		Status:         StatusPending,
		SubmittedBy:    p.SubmittedBy,
		UserID:         p.UserID,
		OrganizationID: org,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// ApplyStatus moves the product to status at now. Approval stamps ApprovedAt;
// leaving approved keeps the stamp of the most recent approval.
func (p *Product) ApplyStatus(status Status, now time.Time) {
	p.Status = status
	p.UpdatedAt = now
	if status == StatusApproved {
		p.ApprovedAt = &now
	}
}

// AdjustVotes adds delta to the vote count, floored at zero.
func (p *Product) AdjustVotes(delta int) int {
	p.VoteCount = max(0, p.VoteCount+delta)
	return p.VoteCount
}

// IsPublic reports whether anonymous visitors may see the product.
func (p *Product) IsPublic() bool {
	return p.Status == StatusApproved
}
