package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/kapu/member-directory-go/internal/domain"
	"go.uber.org/zap"
)

type fakeSource struct {
	mu    sync.Mutex
	lists []domain.ListInfo
	items map[string][]map[string]any
	errs  map[string]error

	listsErr  error
	itemCalls []string
}

func (f *fakeSource) Lists(_ context.Context) ([]domain.ListInfo, error) {
	if f.listsErr != nil {
		return nil, f.listsErr
	}
	return f.lists, nil
}

func (f *fakeSource) Items(_ context.Context, listID string, _ []string, _ int) ([]map[string]any, error) {
	f.mu.Lock()
	f.itemCalls = append(f.itemCalls, listID)
	f.mu.Unlock()

	if err := f.errs[listID]; err != nil {
		return nil, err
	}
	return f.items[listID], nil
}

type fakeCache struct {
	mu    sync.Mutex
	store map[string]any
	sets  int
	hits  int
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string]any)}
}

func (f *fakeCache) Get(_ context.Context, key string, dest any) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	value, ok := f.store[key]
	if !ok {
		return false, nil
	}
	f.hits++
	if rows, ok := value.([]map[string]any); ok {
		if target, ok := dest.(*[]map[string]any); ok {
			*target = rows
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.store[key] = value
	f.sets++
	return nil
}

func newTestDirectory(src *fakeSource, cache Cache) *Directory {
	return NewDirectory(src, NewMapper(testSite), cache, testSite, zap.NewNop())
}

func TestDirectoryLoadMergesBothSources(t *testing.T) {
	src := &fakeSource{
		items: map[string][]map[string]any{
			"people": {
				{FieldID: float64(1), FieldTitle: "Ann Lee", FieldRole: "Engineer"},
				{FieldID: float64(2), FieldTitle: "Bo Kim", FieldRole: "Designer"},
			},
			"photos": {
				{FieldFileName: "ann-lee.jpg", FieldFileRef: "/photos/ann-lee.jpg"},
			},
		},
	}
	d := newTestDirectory(src, nil)

	profiles, err := d.Load(context.Background(), "people", "photos")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(profiles) != 2 {
		t.Fatalf("profiles = %d, want 2", len(profiles))
	}
	if profiles[0].PhotoURL != "https://example.org/photos/ann-lee.jpg" {
		t.Errorf("record 1 PhotoURL = %q", profiles[0].PhotoURL)
	}
	if profiles[1].PhotoURL != "" {
		t.Errorf("record 2 PhotoURL = %q, want empty", profiles[1].PhotoURL)
	}
}

func TestDirectoryLoadPrimaryFailureFailsWholeView(t *testing.T) {
	src := &fakeSource{
		errs: map[string]error{"people": fmt.Errorf("boom")},
		items: map[string][]map[string]any{
			"photos": {{FieldFileName: "a.jpg", FieldFileRef: "/a.jpg"}},
		},
	}
	d := newTestDirectory(src, nil)

	if _, err := d.Load(context.Background(), "people", "photos"); err == nil {
		t.Fatal("expected error when primary source fails")
	}
}

func TestDirectoryLoadSecondaryFailureDegrades(t *testing.T) {
	src := &fakeSource{
		items: map[string][]map[string]any{
			"people": {{FieldID: float64(1), FieldTitle: "Ann Lee"}},
		},
		errs: map[string]error{"photos": fmt.Errorf("library down")},
	}
	d := newTestDirectory(src, nil)

	profiles, err := d.Load(context.Background(), "people", "photos")
	if err != nil {
		t.Fatalf("secondary failure must not fail the load: %v", err)
	}
	if len(profiles) != 1 || profiles[0].PhotoURL != "" {
		t.Errorf("unexpected profiles: %+v", profiles)
	}
}

func TestDirectoryLoadEmptyListID(t *testing.T) {
	d := newTestDirectory(&fakeSource{}, nil)

	profiles, err := d.Load(context.Background(), "", "whatever")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(profiles) != 0 {
		t.Errorf("expected no profiles, got %d", len(profiles))
	}
}

func TestDirectoryLoadUsesCache(t *testing.T) {
	src := &fakeSource{
		items: map[string][]map[string]any{
			"people": {{FieldID: float64(1), FieldTitle: "Ann Lee"}},
		},
	}
	cache := newFakeCache()
	d := newTestDirectory(src, cache)

	if _, err := d.Load(context.Background(), "people", ""); err != nil {
		t.Fatalf("first load failed: %v", err)
	}
	if _, err := d.Load(context.Background(), "people", ""); err != nil {
		t.Fatalf("second load failed: %v", err)
	}

	if cache.hits != 1 {
		t.Errorf("cache hits = %d, want 1", cache.hits)
	}
	src.mu.Lock()
	calls := len(src.itemCalls)
	src.mu.Unlock()
	if calls != 1 {
		t.Errorf("source item calls = %d, want 1 (second read served from cache)", calls)
	}
}

func TestDirectoryListOptionsDegradesToSentinel(t *testing.T) {
	src := &fakeSource{listsErr: fmt.Errorf("catalog down")}
	d := newTestDirectory(src, nil)

	options := d.ListOptions(context.Background())

	if len(options) != 1 || options[0].Key != "" || options[0].Text != "Failed to load lists" {
		t.Errorf("expected sentinel option, got %+v", options)
	}
}

func TestDirectoryListOptions(t *testing.T) {
	src := &fakeSource{
		lists: []domain.ListInfo{
			{ID: "a", Title: "People"},
			{ID: "b", Title: "Photos"},
		},
	}
	d := newTestDirectory(src, nil)

	options := d.ListOptions(context.Background())

	if len(options) != 2 || options[0].Key != "a" || options[1].Text != "Photos" {
		t.Errorf("unexpected options: %+v", options)
	}
}
