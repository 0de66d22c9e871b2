package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"killrvideo-backend/internal/models"
)

type trendingStore interface {
	ViewedSince(ctx context.Context, since time.Time, limit int) ([]*models.Video, error)
	Latest(ctx context.Context, limit, offset int) ([]*models.Video, error)
}

// TrendingRanker serves time-windowed popularity with a recency backfill:
// when the activity window can't fill the requested limit, the remainder
// comes from the newest uploads. Consistent, non-empty results are worth
// more than strict trending purity here.
type TrendingRanker struct {
	store trendingStore
	now   func() time.Time
}

func NewTrendingRanker(store trendingStore) *TrendingRanker {
	return &TrendingRanker{store: store, now: time.Now}
}

// Latest returns a page of videos by added date descending. Page numbers
// start at 1; anything lower is treated as the first page.
func (t *TrendingRanker) Latest(ctx context.Context, page, pageSize int) ([]*models.Video, error) {
	if page < 1 {
		page = 1
	}
	videos, err := t.store.Latest(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest videos (%v): %w", err, ErrUnavailable)
	}
	if videos == nil {
		videos = []*models.Video{}
	}
	return videos, nil
}

// Trending returns videos viewed inside the window, most recently viewed
// first. If the window yields fewer than limit, it backfills from
// Latest(limit*2), appending only videos not already present, after the
// windowed segment. Deduplication is by video id only; the two reads are
// independent snapshots and a small staleness window is acceptable.
func (t *TrendingRanker) Trending(ctx context.Context, windowDays, limit int) ([]*models.Video, error) {
	since := t.now().AddDate(0, 0, -windowDays)

	windowed, err := t.store.ViewedSince(ctx, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load trending window (%v): %w", err, ErrUnavailable)
	}

	results := make([]*models.Video, 0, limit)
	seen := make(map[uuid.UUID]struct{})
	for _, v := range windowed {
		if _, dup := seen[v.VideoID]; dup {
			continue
		}
		seen[v.VideoID] = struct{}{}
		results = append(results, v)
	}

	if len(results) >= limit {
		return results[:limit], nil
	}

	backfill, err := t.store.Latest(ctx, limit*2, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load backfill videos (%v): %w", err, ErrUnavailable)
	}

	for _, v := range backfill {
		if len(results) >= limit {
			break
		}
		if _, dup := seen[v.VideoID]; dup {
			continue
		}
		seen[v.VideoID] = struct{}{}
		results = append(results, v)
	}

	return results, nil
}
