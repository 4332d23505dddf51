package view

import (
	"testing"

	"github.com/kapu/member-directory-go/internal/domain"
)

func sampleProfiles() []domain.Profile {
	return []domain.Profile{
		{ID: "1", Name: "Ann Lee", Role: "Engineer"},
		{ID: "2", Name: "Bo Kim", Role: "Designer"},
	}
}

func TestFilterEmptyQueryReturnsInputUnchanged(t *testing.T) {
	items := sampleProfiles()

	out := Filter(items, Query{})

	if len(out) != len(items) {
		t.Fatalf("length changed: %d != %d", len(out), len(items))
	}
	for i := range items {
		if out[i].ID != items[i].ID {
			t.Errorf("order changed at %d", i)
		}
	}
}

func TestFilterPersonSlotSpansNameAndRole(t *testing.T) {
	items := sampleProfiles()

	out := Filter(items, Query{Person: "eng"})
	if len(out) != 1 || out[0].ID != "1" {
		t.Errorf("query eng should match only the engineer, got %+v", out)
	}

	out = Filter(items, Query{Person: "bo"})
	if len(out) != 1 || out[0].ID != "2" {
		t.Errorf("query bo should match by name, got %+v", out)
	}

	out = Filter(items, Query{Person: "ENG"})
	if len(out) != 1 {
		t.Errorf("matching must be case-insensitive, got %+v", out)
	}
}

func TestFilterSlotsAreANDed(t *testing.T) {
	items := []domain.Profile{
		{ID: "1", Name: "Ann Lee", Role: "Engineer", DetailsHTML: "loves hiking"},
		{ID: "2", Name: "Ann Park", Role: "Engineer", DetailsHTML: "loves chess"},
	}

	out := Filter(items, Query{Person: "ann", Details: "chess"})

	if len(out) != 1 || out[0].ID != "2" {
		t.Errorf("AND semantics violated: %+v", out)
	}
}

func TestFilterDetailsSlotSpansLinks(t *testing.T) {
	items := []domain.Profile{
		{ID: "1", Name: "Ann Lee", LinkedInURL: "https://linkedin.example/ann"},
		{ID: "2", Name: "Bo Kim"},
	}

	out := Filter(items, Query{Details: "linkedin"})

	if len(out) != 1 || out[0].ID != "1" {
		t.Errorf("details slot should span link fields: %+v", out)
	}
}

func TestPageCapSemantics(t *testing.T) {
	items := sampleProfiles()

	if got := Page(items, 0); len(got) != 2 {
		t.Errorf("cap 0 must be unbounded, got %d", len(got))
	}
	if got := Page(items, -1); len(got) != 2 {
		t.Errorf("negative cap must be unbounded, got %d", len(got))
	}
	if got := Page(items, 1); len(got) != 1 || got[0].ID != "1" {
		t.Errorf("cap 1 must return the first item, got %+v", got)
	}
	if got := Page(items, 10); len(got) != 2 {
		t.Errorf("cap beyond length must return everything, got %d", len(got))
	}
}

func TestVisiblePipeline(t *testing.T) {
	items := sampleProfiles()

	out := Visible(items, Query{Person: "eng"}, 1)

	if len(out) != 1 || out[0].ID != "1" {
		t.Errorf("filter+cap pipeline, got %+v", out)
	}
}
