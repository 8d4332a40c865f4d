package handlers

import (
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/showcase/pkg/httpx"
	"github.com/ghuser/showcase/services/product/domain/models"
)

// ProductResponse is the JSON form of a product.
type ProductResponse struct {
	ID             uuid.UUID  `json:"id"              example:"123e4567-e89b-12d3-a456-426614174000"`
	Name           string     `json:"name"            example:"Showcase Widget"`
	Slug           string     `json:"slug"            example:"showcase-widget"`
	Tagline        string     `json:"tagline"         example:"Widgets for everyone"`
	Description    string     `json:"description"     example:"A widget that showcases other widgets."`
	WebURL         string     `json:"web_url"         example:"https://widget.example.com"`
	WebImage       string     `json:"web_image"       example:"http://localhost:9000/showcase-images/products/V1StGXR8_Z5jdHi6B-myT.png"`
	Tags           []string   `json:"tags"            example:"tools,widgets"`
	VoteCount      int        `json:"vote_count"      example:"42"`
	Status         string     `json:"status"          example:"approved"`
	SubmittedBy    string     `json:"submitted_by"    example:"maker@example.com"`
	UserID         string     `json:"user_id"         example:"user_2x8f"`
	OrganizationID *string    `json:"organization_id" example:"org_91ab"`
	CreatedAt      time.Time  `json:"created_at"      example:"2024-01-15T10:30:00Z"`
	UpdatedAt      time.Time  `json:"updated_at"      example:"2024-01-16T08:00:00Z"`
	ApprovedAt     *time.Time `json:"approved_at"     example:"2024-01-16T08:00:00Z"`
} // @name ProductResponse

// PageResponse is one window of a listing.
type PageResponse struct {
	Items      []ProductResponse `json:"items"`
	Limit      int               `json:"limit"       example:"20"`
	Offset     int               `json:"offset"      example:"0"`
	HasMore    bool              `json:"has_more"    example:"true"`
	NextOffset int               `json:"next_offset" example:"20"`
} // @name PageResponse

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	httpx.ActionResult
} // @name ErrorResponse

func toProductResponse(p *models.Product) ProductResponse {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return ProductResponse{
		ID:             p.ID,
		Name:           p.Name,
		Slug:           p.Slug.String(),
		Tagline:        p.Tagline,
		Description:    p.Description,
		WebURL:         p.WebURL,
		WebImage:       p.WebImage,
		Tags:           tags,
		VoteCount:      p.VoteCount,
		Status:         p.Status.String(),
		SubmittedBy:    p.SubmittedBy,
		UserID:         p.UserID,
		OrganizationID: p.OrganizationID,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		ApprovedAt:     p.ApprovedAt,
	}
}

func toProductResponses(ps []*models.Product) []ProductResponse {
	out := make([]ProductResponse, len(ps))
	for i, p := range ps {
		out[i] = toProductResponse(p)
	}
	return out
}

func toPageResponse(p models.Page) PageResponse {
	return PageResponse{
		Items:      toProductResponses(p.Items),
		Limit:      p.Limit,
		Offset:     p.Offset,
		HasMore:    p.HasMore,
		NextOffset: p.NextOffset,
	}
}
