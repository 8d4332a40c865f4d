package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func newParams() NewProductParams {
	return NewProductParams{
		Name:           "Launchpad",
		Slug:           Slug("launchpad"),
		Tagline:        "Ship faster",
		Description:    "A tool for shipping things faster.",
		WebURL:         "https://launchpad.example.com",
		WebImage:       "https://cdn.example.com/products/abc.png",
		Tags:           []string{"devtools", "ci"},
		SubmittedBy:    "ada@example.com",
		UserID:         "user_1",
		OrganizationID: "org_1",
	}
}

func TestNewProduct(t *testing.T) {
	t.Run("starts pending with zero votes", func(t *testing.T) {
		p := NewProduct(newParams())
		if p.Status != StatusPending {
			t.Fatalf("expected pending, got %s", p.Status)
		}
		if p.VoteCount != 0 {
			t.Fatalf("expected 0 votes, got %d", p.VoteCount)
		}
		if p.ApprovedAt != nil {
			t.Fatal("expected nil ApprovedAt")
		}
	})

	t.Run("generates unique IDs", func(t *testing.T) {
		a, b := NewProduct(newParams()), NewProduct(newParams())
		if a.ID == uuid.Nil || a.ID == b.ID {
			t.Fatalf("expected distinct non-nil IDs, got %v and %v", a.ID, b.ID)
		}
	})

	t.Run("stamps organization", func(t *testing.T) {
		p := NewProduct(newParams())
		if p.OrganizationID == nil || *p.OrganizationID != "org_1" {
			t.Fatalf("unexpected OrganizationID: %v", p.OrganizationID)
		}
		params := newParams()
		params.OrganizationID = ""
		if NewProduct(params).OrganizationID != nil {
			t.Fatal("expected nil OrganizationID when empty")
		}
	})

	t.Run("copies tags", func(t *testing.T) {
		params := newParams()
		p := NewProduct(params)
		params.Tags[0] = "mutated"
		if p.Tags[0] != "devtools" {
			t.Fatalf("tags alias caller slice: %v", p.Tags)
		}
	})
}

func TestApplyStatus(t *testing.T) {
	p := NewProduct(newParams())
	t1 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	p.ApplyStatus(StatusApproved, t1)
	if p.ApprovedAt == nil || !p.ApprovedAt.Equal(t1) {
		t.Fatalf("expected ApprovedAt %v, got %v", t1, p.ApprovedAt)
	}
	if !p.IsPublic() {
		t.Fatal("approved product should be public")
	}

	t2 := t1.Add(time.Hour)
	p.ApplyStatus(StatusRejected, t2)
	if p.ApprovedAt == nil || !p.ApprovedAt.Equal(t1) {
		t.Fatalf("rejecting must keep ApprovedAt %v, got %v", t1, p.ApprovedAt)
	}
	if !p.UpdatedAt.Equal(t2) {
		t.Fatalf("expected UpdatedAt %v, got %v", t2, p.UpdatedAt)
	}
	if p.IsPublic() {
		t.Fatal("rejected product should not be public")
	}
}

func TestAdjustVotes_FloorsAtZero(t *testing.T) {
	p := NewProduct(newParams())
	if got := p.AdjustVotes(-1); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	p.AdjustVotes(1)
	p.AdjustVotes(1)
	if got := p.AdjustVotes(-1); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range Statuses {
		got, err := ParseStatus(s.String())
		if err != nil || got != s {
			t.Fatalf("ParseStatus(%q) = %v, %v", s, got, err)
		}
	}
	if _, err := ParseStatus("archived"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestNewPage(t *testing.T) {
	items := []*Product{NewProduct(newParams()), NewProduct(newParams())}

	full := NewPage(items, 2, 4)
	if !full.HasMore || full.NextOffset != 6 {
		t.Fatalf("full page: %+v", full)
	}
	short := NewPage(items[:1], 2, 4)
	if short.HasMore || short.NextOffset != 5 {
		t.Fatalf("short page: %+v", short)
	}
	empty := NewPage(nil, 6, 0)
	if empty.Items == nil || empty.HasMore {
		t.Fatalf("empty page: %+v", empty)
	}
}

func TestStats_Add(t *testing.T) {
	var s Stats
	s.Add(StatusPending, 2)
	s.Add(StatusApproved, 3)
	if s != (Stats{Total: 5, Pending: 2, Approved: 3}) {
		t.Fatalf("unexpected stats: %+v", s)
	}
}
