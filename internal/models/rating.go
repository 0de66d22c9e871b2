package models

import (
	"time"

	"github.com/google/uuid"
)

// Rating stores the raw value as text. Historic data contains garbage
// strings ("3abc", "five"), so parsing is lenient at read time — see
// services.ParseLenientRating.
type Rating struct {
	RatingID  uuid.UUID `json:"rating_id"`
	VideoID   uuid.UUID `json:"video_id"`
	UserID    uuid.UUID `json:"user_id"`
	Rating    string    `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SubmitRatingRequest struct {
	Rating int `json:"rating"`
}

type RatingSummary struct {
	VideoID           uuid.UUID `json:"video_id"`
	AverageRating     float64   `json:"average_rating"`
	RatingCount       int       `json:"rating_count"`
	InvalidCount      int       `json:"invalid_count,omitempty"`
	CurrentUserRating int       `json:"current_user_rating,omitempty"`
}
