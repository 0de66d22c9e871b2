package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"killrvideo-backend/internal/models"
)

type ratingStore interface {
	Upsert(ctx context.Context, rating *models.Rating) error
	ByVideo(ctx context.Context, videoID uuid.UUID) ([]*models.Rating, error)
	ByVideoAndUser(ctx context.Context, videoID, userID uuid.UUID) (*models.Rating, error)
	DeleteByID(ctx context.Context, ratingID uuid.UUID) error
}

// RatingAggregator computes per-video rating summaries from raw rating
// records. Read-only apart from Rate; holds no state of its own.
type RatingAggregator struct {
	ratings ratingStore
}

func NewRatingAggregator(ratings ratingStore) *RatingAggregator {
	return &RatingAggregator{ratings: ratings}
}

// Rate stores or replaces the requester's rating for a video. One live
// rating per (video, user); re-rating updates in place.
func (a *RatingAggregator) Rate(ctx context.Context, videoID, userID uuid.UUID, value int) (*models.Rating, error) {
	if value < 1 || value > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5: %w", ErrInvalidInput)
	}

	rating := &models.Rating{
		VideoID: videoID,
		UserID:  userID,
		Rating:  strconv.Itoa(value),
	}
	if err := a.ratings.Upsert(ctx, rating); err != nil {
		return nil, fmt.Errorf("failed to store rating: %w", err)
	}
	return rating, nil
}

// Unrate removes the requester's rating for a video. Absence of a rating
// is NotFound, so callers can tell a no-op from a removal.
func (a *RatingAggregator) Unrate(ctx context.Context, videoID, userID uuid.UUID) error {
	rating, err := a.ratings.ByVideoAndUser(ctx, videoID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("no rating for video %s: %w", videoID, ErrNotFound)
		}
		return fmt.Errorf("failed to load rating: %w", err)
	}

	if err := a.ratings.DeleteByID(ctx, rating.RatingID); err != nil {
		return fmt.Errorf("failed to delete rating: %w", err)
	}
	return nil
}

// Summarize returns the arithmetic mean over all live ratings for a video.
// Zero ratings yields exactly 0.0, never NaN. Garbage rating strings count
// toward the denominator as zero; InvalidCount reports how many there were.
func (a *RatingAggregator) Summarize(ctx context.Context, videoID uuid.UUID) (*models.RatingSummary, error) {
	ratings, err := a.ratings.ByVideo(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ratings (%v): %w", err, ErrUnavailable)
	}

	summary := &models.RatingSummary{VideoID: videoID, RatingCount: len(ratings)}
	if len(ratings) == 0 {
		return summary, nil
	}

	var total float64
	for _, r := range ratings {
		value, ok := ParseLenientRating(r.Rating)
		if !ok {
			summary.InvalidCount++
		}
		total += value
	}
	summary.AverageRating = total / float64(len(ratings))

	return summary, nil
}

// SummarizeForUser reports a single user's rating for a video, with count
// 1 when present and 0 otherwise.
func (a *RatingAggregator) SummarizeForUser(ctx context.Context, videoID, userID uuid.UUID) (*models.RatingSummary, error) {
	summary := &models.RatingSummary{VideoID: videoID}

	rating, err := a.ratings.ByVideoAndUser(ctx, videoID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return summary, nil
		}
		return nil, fmt.Errorf("failed to load user rating (%v): %w", err, ErrUnavailable)
	}

	value, _ := ParseLenientRating(rating.Rating)
	summary.RatingCount = 1
	summary.AverageRating = value
	summary.CurrentUserRating = int(value)
	return summary, nil
}

// ParseLenientRating coerces a stored rating string to a number. Historic
// records contain values like "3abc" or "five": a direct parse is tried
// first, then the maximal first run of digits (with an optional decimal
// point). No digits at all parses as 0 with ok=false.
func ParseLenientRating(s string) (float64, bool) {
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, true
	}

	start := -1
	end := -1
	sawDot := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= '0' && c <= '9' {
			if start < 0 {
				start = i
			}
			end = i + 1
			continue
		}
		if c == '.' && start >= 0 && !sawDot {
			sawDot = true
			continue
		}
		if start >= 0 {
			break
		}
	}

	if start < 0 {
		return 0, false
	}

	v, err := strconv.ParseFloat(s[start:end], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
