package db

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID             uuid.UUID
	Name           string
	Slug           string
	Tagline        string
	Description    string
	WebUrl         string
	WebImage       string
	Tags           []string
	VoteCount      int32
	Status         string
	SubmittedBy    string
	UserID         string
	OrganizationID sql.NullString
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ApprovedAt     sql.NullTime
}
