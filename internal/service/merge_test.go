package service

import (
	"testing"

	"github.com/kapu/member-directory-go/internal/domain"
)

func TestMergeProfilesBackfill(t *testing.T) {
	profiles := []domain.Profile{
		{ID: "1", Name: "Ann Lee", Role: "Engineer"},
		{ID: "2", Name: "Bo Kim", Role: "Designer"},
	}
	rows := []map[string]any{
		{FieldFileName: "ann-lee.jpg", FieldFileRef: "/photos/ann-lee.jpg"},
	}
	index := BuildImageIndex(rows, testSite)

	merged := MergeProfiles(profiles, index)

	if len(merged) != 2 {
		t.Fatalf("merged length = %d, want 2", len(merged))
	}
	if merged[0].PhotoURL != "https://example.org/photos/ann-lee.jpg" {
		t.Errorf("record 1 PhotoURL = %q, want resolved library URL", merged[0].PhotoURL)
	}
	if merged[1].PhotoURL != "" {
		t.Errorf("record 2 PhotoURL = %q, want empty", merged[1].PhotoURL)
	}
}

func TestMergeProfilesKeepsExistingPhoto(t *testing.T) {
	profiles := []domain.Profile{
		{ID: "1", Name: "Ann Lee", PhotoURL: "https://example.org/direct.jpg"},
	}
	index := map[string]string{"annlee": "https://example.org/library.jpg"}

	merged := MergeProfiles(profiles, index)

	if merged[0].PhotoURL != "https://example.org/direct.jpg" {
		t.Errorf("existing photo overwritten: %q", merged[0].PhotoURL)
	}
}

func TestMergeProfilesDoesNotMutateInput(t *testing.T) {
	profiles := []domain.Profile{
		{ID: "1", Name: "Ann Lee"},
		{ID: "2", Name: "Bo Kim"},
	}
	index := map[string]string{
		"annlee": "https://example.org/a.jpg",
		"bokim":  "https://example.org/b.jpg",
	}

	merged := MergeProfiles(profiles, index)

	for i, p := range profiles {
		if p.PhotoURL != "" {
			t.Errorf("input record %d mutated: PhotoURL = %q", i, p.PhotoURL)
		}
	}
	for i, p := range merged {
		if p.PhotoURL == "" {
			t.Errorf("merged record %d missing backfilled photo", i)
		}
	}
}

func TestMergeProfilesNilIndex(t *testing.T) {
	profiles := []domain.Profile{{ID: "1", Name: "Ann Lee"}}

	merged := MergeProfiles(profiles, nil)

	if len(merged) != 1 || merged[0].PhotoURL != "" {
		t.Errorf("unexpected merge with nil index: %+v", merged)
	}
}
