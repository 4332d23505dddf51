package view

import (
	"fmt"
	"strings"
	"testing"

	"github.com/kapu/member-directory-go/internal/domain"
	"go.uber.org/zap"
)

func newTestSession() *Session {
	return NewSession(Options{SiteBase: "https://example.org"}, zap.NewNop())
}

func loadedSession(t *testing.T, items []domain.Profile) *Session {
	t.Helper()
	s := newTestSession()
	gen := s.BeginLoad()
	if !s.CompleteLoad(gen, items, nil) {
		t.Fatal("load unexpectedly discarded")
	}
	return s
}

func TestSessionSelectAndDismiss(t *testing.T) {
	s := loadedSession(t, sampleProfiles())

	if !s.Select("2") {
		t.Fatal("select failed")
	}
	state := s.Snapshot()
	if state.Detail == nil || state.Detail.ID != "2" {
		t.Fatalf("detail not open for record 2: %+v", state.Detail)
	}
	if !state.ScrollLocked {
		t.Error("scroll must be locked while the overlay is open")
	}

	s.Dismiss()
	state = s.Snapshot()
	if state.Detail != nil {
		t.Error("detail still open after dismiss")
	}
	if state.ScrollLocked {
		t.Error("scroll lock not released")
	}
}

func TestSessionDismissReleasesScrollExactlyOnce(t *testing.T) {
	s := loadedSession(t, sampleProfiles())

	s.Select("1")
	s.Dismiss()
	// A second dismiss of an already-closed overlay must not re-release
	// (or re-acquire) anything.
	s.Dismiss()

	state := s.Snapshot()
	if state.ScrollLocked {
		t.Error("scroll locked after double dismiss")
	}

	s.Select("1")
	if !s.Snapshot().ScrollLocked {
		t.Error("scroll not locked after re-select")
	}
}

func TestSessionSelectUnknownID(t *testing.T) {
	s := loadedSession(t, sampleProfiles())

	if s.Select("nope") {
		t.Error("selecting an unknown record must fail")
	}
	if s.Snapshot().ScrollLocked {
		t.Error("failed select must not lock scroll")
	}
}

func TestSessionStaleLoadDiscarded(t *testing.T) {
	s := newTestSession()

	stale := s.BeginLoad()
	current := s.BeginLoad()

	if s.CompleteLoad(stale, sampleProfiles(), nil) {
		t.Error("stale load applied")
	}
	if !s.CompleteLoad(current, sampleProfiles()[:1], nil) {
		t.Error("current load discarded")
	}

	state := s.Snapshot()
	if len(state.Cards) != 1 {
		t.Errorf("cards = %d, want 1 (stale result must not win)", len(state.Cards))
	}
}

func TestSessionLoadErrorSurfaces(t *testing.T) {
	s := newTestSession()

	gen := s.BeginLoad()
	s.CompleteLoad(gen, nil, fmt.Errorf("primary source unavailable"))

	state := s.Snapshot()
	if state.Error == "" {
		t.Error("load failure must surface as a visible error")
	}
	if len(state.Cards) != 0 {
		t.Error("no partial rendering on whole-view failure")
	}
}

func TestSessionReloadClearsVanishedSelection(t *testing.T) {
	s := loadedSession(t, sampleProfiles())
	s.Select("2")

	gen := s.BeginLoad()
	s.CompleteLoad(gen, sampleProfiles()[:1], nil)

	state := s.Snapshot()
	if state.Detail != nil {
		t.Error("selection should clear when the record disappears")
	}
	if state.ScrollLocked {
		t.Error("scroll lock should release with the vanished selection")
	}
}

func TestSessionQueryAndLimitRecompute(t *testing.T) {
	s := loadedSession(t, sampleProfiles())

	s.SetQuery(Query{Person: "eng"})
	state := s.Snapshot()
	if len(state.Cards) != 1 || state.Cards[0].ID != "1" {
		t.Fatalf("query snapshot wrong: %+v", state.Cards)
	}

	s.SetQuery(Query{})
	s.SetLimit(1)
	state = s.Snapshot()
	if len(state.Cards) != 1 {
		t.Errorf("limit snapshot wrong: %d cards", len(state.Cards))
	}

	s.SetLimit(0)
	state = s.Snapshot()
	if len(state.Cards) != 2 {
		t.Errorf("unbounded snapshot wrong: %d cards", len(state.Cards))
	}
}

func TestSessionCardCascadeAdvancesIndependently(t *testing.T) {
	items := []domain.Profile{
		{ID: "1", Name: "Ann Lee", PhotoURL: "https://example.org/a.jpg", IdentityKey: "ann@example.org"},
		{ID: "2", Name: "Bo Kim", PhotoURL: "https://example.org/b.jpg", IdentityKey: "bo@example.org"},
	}
	s := loadedSession(t, items)

	// Resolvers exist only after the first snapshot materializes cards.
	before := s.Snapshot()
	firstSrc := before.Cards[0].Photo.Src

	s.CardImageFailed("1")

	after := s.Snapshot()
	if after.Cards[0].Photo.Src == firstSrc {
		t.Error("card 1 cascade did not advance")
	}
	if after.Cards[1].Photo.Src != before.Cards[1].Photo.Src {
		t.Error("card 2 cascade advanced without a failure")
	}
}

func TestSessionExhaustedCardRendersPlaceholder(t *testing.T) {
	items := []domain.Profile{{ID: "1", Name: "Ann Lee"}}
	s := loadedSession(t, items)

	state := s.Snapshot()
	if !state.Cards[0].Placeholder {
		t.Error("record without any photo source must render the placeholder")
	}
	if state.Cards[0].Initials != "AL" {
		t.Errorf("initials = %q, want AL", state.Cards[0].Initials)
	}
}

func TestSessionDetailSanitizesRichText(t *testing.T) {
	items := []domain.Profile{{
		ID:          "1",
		Name:        "Ann Lee",
		DetailsHTML: `<p>hi</p><script>alert(1)</script><a href="x" onclick="evil()">link</a>`,
	}}
	s := loadedSession(t, items)
	s.Select("1")

	state := s.Snapshot()
	if state.Detail == nil {
		t.Fatal("detail missing")
	}
	html := state.Detail.DetailsHTML
	if strings.Contains(html, "<script") || strings.Contains(html, "onclick") {
		t.Errorf("unsanitized markup leaked: %q", html)
	}
	if !strings.Contains(html, "<p>hi</p>") {
		t.Errorf("benign markup lost: %q", html)
	}
}
