package view

import (
	"strings"

	"github.com/kapu/member-directory-go/internal/domain"
	"github.com/kapu/member-directory-go/internal/util"
)

// Query holds the two independent search slots. A record passes only if it
// matches every non-empty slot; each slot already spans multiple fields, so
// there is no OR combination across slots.
type Query struct {
	// Person is matched against name and role.
	Person string `json:"person"`
	// Details is matched against the rich-text body and the external links.
	Details string `json:"details"`
}

func (q Query) Empty() bool {
	return strings.TrimSpace(q.Person) == "" && strings.TrimSpace(q.Details) == ""
}

// Filter applies case-insensitive substring matching. Pure and deterministic;
// it is recomputed on every input change rather than memoized, so a stale
// result can never outlive a data change. An empty query returns the input
// unchanged, in original order.
func Filter(items []domain.Profile, q Query) []domain.Profile {
	person := util.Normalize(q.Person)
	details := util.Normalize(q.Details)
	if person == "" && details == "" {
		return items
	}

	out := make([]domain.Profile, 0, len(items))
	for _, item := range items {
		if person != "" && !matchesPerson(item, person) {
			continue
		}
		if details != "" && !matchesDetails(item, details) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// Page caps the collection to a prefix of limit items in original order.
// Zero or negative means unbounded. There is no page-number concept.
func Page(items []domain.Profile, limit int) []domain.Profile {
	if limit <= 0 {
		return items
	}
	return items[:util.Min(limit, len(items))]
}

// Visible is the full pipeline: filter, then cap.
func Visible(items []domain.Profile, q Query, limit int) []domain.Profile {
	return Page(Filter(items, q), limit)
}

func matchesPerson(p domain.Profile, needle string) bool {
	return util.ContainsFold(p.Name, needle) || util.ContainsFold(p.Role, needle)
}

func matchesDetails(p domain.Profile, needle string) bool {
	return util.ContainsFold(p.DetailsHTML, needle) ||
		util.ContainsFold(p.CompanyURL, needle) ||
		util.ContainsFold(p.LinkedInURL, needle)
}
