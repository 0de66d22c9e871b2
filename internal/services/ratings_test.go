package services

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"killrvideo-backend/internal/models"
)

type fakeRatingStore struct {
	ratings   []*models.Rating
	upserted  []*models.Rating
	byUser    *models.Rating
	deletedID uuid.UUID
}

func (f *fakeRatingStore) Upsert(ctx context.Context, rating *models.Rating) error {
	f.upserted = append(f.upserted, rating)
	return nil
}

func (f *fakeRatingStore) ByVideo(ctx context.Context, videoID uuid.UUID) ([]*models.Rating, error) {
	return f.ratings, nil
}

func (f *fakeRatingStore) ByVideoAndUser(ctx context.Context, videoID, userID uuid.UUID) (*models.Rating, error) {
	if f.byUser == nil {
		return nil, pgx.ErrNoRows
	}
	return f.byUser, nil
}

func (f *fakeRatingStore) DeleteByID(ctx context.Context, ratingID uuid.UUID) error {
	f.deletedID = ratingID
	return nil
}

func TestParseLenientRating(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"4", 4, true},
		{"4.5", 4.5, true},
		{"3abc", 3, true},
		{"abc3", 3, true},
		{"1.2.3", 1.2, true},
		{" 5", 5, true},
		{"five", 0, false},
		{"", 0, false},
		{"...", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseLenientRating(tt.input)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseLenientRating(%q) = (%v, %v), want (%v, %v)", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestRateRejectsOutOfRange(t *testing.T) {
	store := &fakeRatingStore{}
	agg := NewRatingAggregator(store)

	for _, value := range []int{0, -1, 6, 100} {
		_, err := agg.Rate(context.Background(), uuid.New(), uuid.New(), value)
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Rate(%d) error = %v, want ErrInvalidInput", value, err)
		}
	}
	if len(store.upserted) != 0 {
		t.Errorf("invalid ratings reached the store: %d", len(store.upserted))
	}
}

func TestRateStoresValue(t *testing.T) {
	store := &fakeRatingStore{}
	agg := NewRatingAggregator(store)

	rating, err := agg.Rate(context.Background(), uuid.New(), uuid.New(), 4)
	if err != nil {
		t.Fatalf("Rate: %v", err)
	}
	if rating.Rating != "4" {
		t.Errorf("stored rating = %q, want %q", rating.Rating, "4")
	}
	if len(store.upserted) != 1 {
		t.Fatalf("upserted %d ratings, want 1", len(store.upserted))
	}
}

func TestUnrate(t *testing.T) {
	ratingID := uuid.New()
	store := &fakeRatingStore{byUser: &models.Rating{RatingID: ratingID, Rating: "3"}}
	agg := NewRatingAggregator(store)

	if err := agg.Unrate(context.Background(), uuid.New(), uuid.New()); err != nil {
		t.Fatalf("Unrate: %v", err)
	}
	if store.deletedID != ratingID {
		t.Errorf("deleted rating %s, want %s", store.deletedID, ratingID)
	}
}

func TestUnrateMissingRating(t *testing.T) {
	agg := NewRatingAggregator(&fakeRatingStore{})

	err := agg.Unrate(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestSummarizeCountsGarbageAsZero(t *testing.T) {
	videoID := uuid.New()
	store := &fakeRatingStore{ratings: []*models.Rating{
		{Rating: "5"},
		{Rating: "3abc"},
		{Rating: "bad"},
	}}
	agg := NewRatingAggregator(store)

	summary, err := agg.Summarize(context.Background(), videoID)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	if summary.RatingCount != 3 {
		t.Errorf("RatingCount = %d, want 3", summary.RatingCount)
	}
	if summary.InvalidCount != 1 {
		t.Errorf("InvalidCount = %d, want 1", summary.InvalidCount)
	}
	// (5 + 3 + 0) / 3
	want := 8.0 / 3.0
	if math.Abs(summary.AverageRating-want) > 1e-9 {
		t.Errorf("AverageRating = %v, want %v", summary.AverageRating, want)
	}
}

func TestSummarizeEmptyIsZeroNotNaN(t *testing.T) {
	agg := NewRatingAggregator(&fakeRatingStore{})

	summary, err := agg.Summarize(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if summary.AverageRating != 0 || summary.RatingCount != 0 {
		t.Errorf("empty summary = %+v, want zero average and count", summary)
	}
	if math.IsNaN(summary.AverageRating) {
		t.Error("AverageRating is NaN")
	}
}

func TestSummarizeForUserMissingRating(t *testing.T) {
	agg := NewRatingAggregator(&fakeRatingStore{})

	summary, err := agg.SummarizeForUser(context.Background(), uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("SummarizeForUser: %v", err)
	}
	if summary.RatingCount != 0 || summary.CurrentUserRating != 0 {
		t.Errorf("summary = %+v, want empty", summary)
	}
}

func TestSummarizeForUserExisting(t *testing.T) {
	agg := NewRatingAggregator(&fakeRatingStore{byUser: &models.Rating{Rating: "4"}})

	summary, err := agg.SummarizeForUser(context.Background(), uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("SummarizeForUser: %v", err)
	}
	if summary.CurrentUserRating != 4 || summary.RatingCount != 1 {
		t.Errorf("summary = %+v, want rating 4 with count 1", summary)
	}
}
