package services

import (
	"context"
	"reflect"
	"testing"

	"killrvideo-backend/internal/models"
)

type fakeTagStore struct {
	videos  []*models.Video
	tagRows [][]string
	calls   int
}

func (f *fakeTagStore) ByTag(ctx context.Context, tag string, limit int) ([]*models.Video, error) {
	f.calls++
	return f.videos, nil
}

func (f *fakeTagStore) TagRows(ctx context.Context, scanCap int) ([][]string, error) {
	f.calls++
	return f.tagRows, nil
}

func TestSuggestMatchesFragment(t *testing.T) {
	store := &fakeTagStore{tagRows: [][]string{
		{"video", "guide"},
		{"vide-tips", "Video"},
		{"music"},
	}}
	index := NewTagIndex(store)

	got, err := index.Suggest(context.Background(), "vid", 10)
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}

	// Case-insensitive containment, first-encounter order, exact-string dedupe
	want := []string{"video", "vide-tips", "Video"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Suggest = %v, want %v", got, want)
	}
}

func TestSuggestStopsAtLimit(t *testing.T) {
	store := &fakeTagStore{tagRows: [][]string{
		{"go", "golang", "gopher", "google"},
	}}
	index := NewTagIndex(store)

	got, err := index.Suggest(context.Background(), "go", 2)
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Suggest returned %d tags, want 2", len(got))
	}
}

func TestSuggestEmptyFragmentShortCircuits(t *testing.T) {
	store := &fakeTagStore{}
	index := NewTagIndex(store)

	for _, fragment := range []string{"", "   "} {
		got, err := index.Suggest(context.Background(), fragment, 10)
		if err != nil {
			t.Fatalf("Suggest(%q): %v", fragment, err)
		}
		if len(got) != 0 {
			t.Errorf("Suggest(%q) = %v, want empty", fragment, got)
		}
	}
	if store.calls != 0 {
		t.Errorf("empty fragment hit the store %d times", store.calls)
	}
}

func TestByTagEmptyTag(t *testing.T) {
	store := &fakeTagStore{}
	index := NewTagIndex(store)

	got, err := index.ByTag(context.Background(), "  ", 10)
	if err != nil {
		t.Fatalf("ByTag: %v", err)
	}
	if len(got) != 0 || got == nil {
		t.Errorf("ByTag = %v, want empty non-nil slice", got)
	}
	if store.calls != 0 {
		t.Errorf("empty tag hit the store %d times", store.calls)
	}
}
