package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"killrvideo-backend/internal/models"
)

type fakeTrendingStore struct {
	viewed    []*models.Video
	latest    []*models.Video
	viewedErr error
	since     time.Time
	offset    int
}

func (f *fakeTrendingStore) ViewedSince(ctx context.Context, since time.Time, limit int) ([]*models.Video, error) {
	f.since = since
	if f.viewedErr != nil {
		return nil, f.viewedErr
	}
	if limit < len(f.viewed) {
		return f.viewed[:limit], nil
	}
	return f.viewed, nil
}

func (f *fakeTrendingStore) Latest(ctx context.Context, limit, offset int) ([]*models.Video, error) {
	f.offset = offset
	if limit < len(f.latest) {
		return f.latest[:limit], nil
	}
	return f.latest, nil
}

func TestTrendingWindowFillsLimit(t *testing.T) {
	viewed := []*models.Video{
		{VideoID: uuid.New()},
		{VideoID: uuid.New()},
	}
	store := &fakeTrendingStore{viewed: viewed, latest: []*models.Video{{VideoID: uuid.New()}}}
	ranker := NewTrendingRanker(store)

	got, err := ranker.Trending(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("Trending: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d videos, want 2", len(got))
	}
	// Window satisfied the limit, backfill must not displace it
	if got[0].VideoID != viewed[0].VideoID || got[1].VideoID != viewed[1].VideoID {
		t.Error("windowed videos not first in trending order")
	}
}

func TestTrendingBackfillsFromLatest(t *testing.T) {
	windowed := &models.Video{VideoID: uuid.New()}
	fresh := &models.Video{VideoID: uuid.New()}

	store := &fakeTrendingStore{
		viewed: []*models.Video{windowed},
		// Backfill includes an already-windowed video; dedupe is by id
		latest: []*models.Video{windowed, fresh},
	}
	ranker := NewTrendingRanker(store)

	got, err := ranker.Trending(context.Background(), 7, 3)
	if err != nil {
		t.Fatalf("Trending: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d videos, want 2", len(got))
	}
	if got[0].VideoID != windowed.VideoID {
		t.Error("windowed video not first")
	}
	if got[1].VideoID != fresh.VideoID {
		t.Error("backfill video missing or duplicated")
	}
}

func TestTrendingEmptyWindowEqualsLatest(t *testing.T) {
	latest := []*models.Video{
		{VideoID: uuid.New()},
		{VideoID: uuid.New()},
	}
	store := &fakeTrendingStore{latest: latest}
	ranker := NewTrendingRanker(store)

	got, err := ranker.Trending(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("Trending: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d videos, want 2", len(got))
	}
	for i := range latest {
		if got[i].VideoID != latest[i].VideoID {
			t.Errorf("position %d = %s, want %s", i, got[i].VideoID, latest[i].VideoID)
		}
	}
}

func TestTrendingWindowBoundary(t *testing.T) {
	fixed := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := &fakeTrendingStore{}
	ranker := NewTrendingRanker(store)
	ranker.now = func() time.Time { return fixed }

	if _, err := ranker.Trending(context.Background(), 7, 5); err != nil {
		t.Fatalf("Trending: %v", err)
	}

	want := fixed.AddDate(0, 0, -7)
	if !store.since.Equal(want) {
		t.Errorf("window start = %v, want %v", store.since, want)
	}
}

func TestTrendingStoreFailureIsRetryable(t *testing.T) {
	store := &fakeTrendingStore{viewedErr: errors.New("connection reset")}
	ranker := NewTrendingRanker(store)

	_, err := ranker.Trending(context.Background(), 1, 10)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
}

func TestLatestNeverNil(t *testing.T) {
	ranker := NewTrendingRanker(&fakeTrendingStore{})

	got, err := ranker.Latest(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if got == nil {
		t.Error("Latest returned nil slice")
	}
}

func TestLatestPageOffset(t *testing.T) {
	store := &fakeTrendingStore{}
	ranker := NewTrendingRanker(store)

	if _, err := ranker.Latest(context.Background(), 3, 10); err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if store.offset != 20 {
		t.Errorf("offset for page 3 = %d, want 20", store.offset)
	}

	// Page numbers below 1 clamp to the first page
	if _, err := ranker.Latest(context.Background(), 0, 10); err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if store.offset != 0 {
		t.Errorf("offset for page 0 = %d, want 0", store.offset)
	}
}
