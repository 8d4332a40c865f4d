package services

import (
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/showcase/pkg/storage/storagetest"
	"github.com/ghuser/showcase/services/product/domain/models"
)

var baseTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// product builds a stored product; n orders creation time.
func product(slug string, status models.Status, votes int, n int, tags ...string) *models.Product {
	if tags == nil {
		tags = []string{"tools"}
	}
	created := baseTime.Add(time.Duration(n) * time.Hour)
	p := &models.Product{
		ID:          uuid.New(),
		Name:        "Product " + slug,
		Slug:        models.Slug(slug),
		Tagline:     "Tagline for " + slug,
		Description: "Description of the product " + slug,
		WebURL:      "https://" + slug + ".example.com",
		WebImage:    storagetest.BaseURL + "/products/" + slug + ".png",
		Tags:        tags,
		VoteCount:   votes,
		Status:      status,
		SubmittedBy: "owner@example.com",
		UserID:      "user_owner",
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	if status == models.StatusApproved {
		p.ApprovedAt = &created
	}
	return p
}

func slugs(ps []*models.Product) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Slug.String()
	}
	return out
}
