package repositories

import (
	"slices"
	"strings"

	"github.com/ghuser/showcase/services/product/domain/models"
)

// Predicate is one optional condition of an admin listing. Implementations are
// the tagged variants ByStatus, ByText and ByTags; storage adapters switch on
// the concrete type to build their query, and Matches gives the same answer in memory.
type Predicate interface {
	Matches(p *models.Product) bool
	isPredicate()
}

// ByStatus keeps products in exactly this status.
type ByStatus struct {
	Status models.Status
}

// ByText keeps products whose name, tagline or description contains Query,
// compared case-insensitively.
type ByText struct {
	Query string
}

// ByTags keeps products carrying at least one of Tags.
type ByTags struct {
	Tags []string
}

func (ByStatus) isPredicate() {}
func (ByText) isPredicate()   {}
func (ByTags) isPredicate()   {}

func (f ByStatus) Matches(p *models.Product) bool { return p.Status == f.Status }

func (f ByText) Matches(p *models.Product) bool {
	q := strings.ToLower(f.Query)
	return strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.Tagline), q) ||
		strings.Contains(strings.ToLower(p.Description), q)
}

func (f ByTags) Matches(p *models.Product) bool {
	for _, t := range f.Tags {
		if slices.Contains(p.Tags, t) {
			return true
		}
	}
	return false
}

// Filter is the AND of its predicates. The zero Filter matches everything.
// Built through NewFilter it holds at most one predicate of each variant.
type Filter []Predicate

// NewFilter assembles a Filter from optional inputs. An empty status, a blank
// search and a tag set without non-blank entries each contribute no predicate.
func NewFilter(status models.Status, search string, tags []string) Filter {
	var f Filter
	if status != "" {
		f = append(f, ByStatus{Status: status})
	}
	if q := strings.TrimSpace(search); q != "" {
		f = append(f, ByText{Query: q})
	}
	if t := CleanTags(tags); len(t) > 0 {
		f = append(f, ByTags{Tags: t})
	}
	return f
}

// Matches reports whether p satisfies every predicate.
func (f Filter) Matches(p *models.Product) bool {
	for _, pred := range f {
		if !pred.Matches(p) {
			return false
		}
	}
	return true
}

// CleanTags trims tags and drops blanks and duplicates, keeping first-seen order.
func CleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// SplitTags parses a comma-separated tag list as sent by the admin search form.
func SplitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	return CleanTags(strings.Split(raw, ","))
}
