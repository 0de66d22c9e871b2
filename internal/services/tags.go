package services

import (
	"context"
	"fmt"
	"strings"

	"killrvideo-backend/internal/models"
)

type tagStore interface {
	ByTag(ctx context.Context, tag string, limit int) ([]*models.Video, error)
	TagRows(ctx context.Context, scanCap int) ([][]string, error)
}

// TagIndex resolves tag queries against the catalog. Suggest walks the tag
// sets of every video (newest first) — O(catalog size) per call, which is
// fine at moderate scale; an incrementally maintained inverted index is the
// upgrade path if the catalog outgrows tagScanCap.
type TagIndex struct {
	store   tagStore
	scanCap int
}

const tagScanCap = 5000

func NewTagIndex(store tagStore) *TagIndex {
	return &TagIndex{store: store, scanCap: tagScanCap}
}

// ByTag returns videos carrying the tag as an exact member of their tag
// set, newest first.
func (t *TagIndex) ByTag(ctx context.Context, tag string, limit int) ([]*models.Video, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return []*models.Video{}, nil
	}

	videos, err := t.store.ByTag(ctx, tag, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load videos by tag (%v): %w", err, ErrUnavailable)
	}
	if videos == nil {
		videos = []*models.Video{}
	}
	return videos, nil
}

// Suggest returns distinct tags containing the fragment, case-insensitive,
// in the order the scan first encounters them (stable, not alphabetic).
// An empty fragment short-circuits without touching the store.
func (t *TagIndex) Suggest(ctx context.Context, fragment string, limit int) ([]string, error) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return []string{}, nil
	}
	needle := strings.ToLower(fragment)

	rows, err := t.store.TagRows(ctx, t.scanCap)
	if err != nil {
		return nil, fmt.Errorf("failed to scan tags (%v): %w", err, ErrUnavailable)
	}

	seen := make(map[string]struct{})
	suggestions := []string{}
	for _, tags := range rows {
		for _, tag := range tags {
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			if strings.Contains(strings.ToLower(tag), needle) {
				suggestions = append(suggestions, tag)
				if len(suggestions) >= limit {
					return suggestions, nil
				}
			}
		}
	}

	return suggestions, nil
}
