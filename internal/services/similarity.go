package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"killrvideo-backend/internal/models"
)

type similarityStore interface {
	GetByVideoID(ctx context.Context, id uuid.UUID, includeVector bool) (*models.Video, error)
	VectorSearch(ctx context.Context, vector []float32, limit int) ([]*models.Video, error)
}

// SimilaritySearch finds a video's nearest neighbors in embedding space.
// Only READY videos ever come back; ordering is whatever the vector index
// reports, ties included.
type SimilaritySearch struct {
	store similarityStore
}

func NewSimilaritySearch(store similarityStore) *SimilaritySearch {
	return &SimilaritySearch{store: store}
}

// RelatedTo looks up the source video's vector and runs a KNN query for
// limit+1 neighbors, since the source tends to be its own nearest match.
// The source is filtered out by identity before truncating to limit.
func (s *SimilaritySearch) RelatedTo(ctx context.Context, videoID uuid.UUID, limit int) ([]*models.Video, error) {
	source, err := s.store.GetByVideoID(ctx, videoID, true)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("video %s: %w", videoID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load source video (%v): %w", err, ErrUnavailable)
	}
	if len(source.Embedding) == 0 {
		return nil, fmt.Errorf("video %s has no embedding: %w", videoID, ErrNotFound)
	}

	neighbors, err := s.store.VectorSearch(ctx, source.Embedding, limit+1)
	if err != nil {
		return nil, fmt.Errorf("vector search failed (%v): %w", err, ErrUnavailable)
	}

	related := make([]*models.Video, 0, limit)
	for _, v := range neighbors {
		if v.VideoID == videoID {
			continue
		}
		related = append(related, v)
		if len(related) >= limit {
			break
		}
	}

	return related, nil
}
