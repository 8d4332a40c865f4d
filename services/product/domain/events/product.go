package events

import (
	"time"

	"github.com/google/uuid"
)

// Watermill topics published by the product repository through the outbox.
const (
	TopicProductSubmitted     = "product.submitted"
	TopicProductStatusChanged = "product.status_changed"
	TopicProductDeleted       = "product.deleted"
)

// ProductSubmittedEvent is published after a new pending Product is persisted.
type ProductSubmittedEvent struct {
	EventID        uuid.UUID `json:"event_id"` // Unique publish-time identifier for deduplication
	Version        int       `json:"version"`  // Schema version; increment on breaking changes
	ProductID      uuid.UUID `json:"product_id"`
	Slug           string    `json:"slug"`
	UserID         string    `json:"user_id"`
	OrganizationID string    `json:"organization_id,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// ProductStatusChangedEvent is published after a moderation transition.
type ProductStatusChangedEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	Version    int       `json:"version"`
	ProductID  uuid.UUID `json:"product_id"`
	Slug       string    `json:"slug"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ProductDeletedEvent is published after a product row is removed.
type ProductDeletedEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	Version    int       `json:"version"`
	ProductID  uuid.UUID `json:"product_id"`
	Slug       string    `json:"slug"`
	OccurredAt time.Time `json:"occurred_at"`
}
