package models

import (
	"time"

	"github.com/google/uuid"
)

// Processing status values for a video. READY and FAILED are terminal:
// resubmission creates a new video, it never transitions back to PENDING.
const (
	StatusPending = "PENDING"
	StatusReady   = "READY"
	StatusFailed  = "FAILED"
)

type Video struct {
	VideoID              uuid.UUID  `json:"video_id"`
	UserID               uuid.UUID  `json:"user_id"`
	Name                 string     `json:"name"`
	Description          string     `json:"description"`
	Tags                 []string   `json:"tags"`
	Location             string     `json:"location"`
	PreviewImageLocation string     `json:"preview_image_location"`
	YouTubeID            *string    `json:"youtube_video_id,omitempty"`
	Embedding            []float32  `json:"-"`
	ProcessingStatus     string     `json:"processing_status"`
	ViewCount            int64      `json:"view_count"`
	AddedDate            time.Time  `json:"added_date"`
	LastViewedAt         *time.Time `json:"last_viewed_at,omitempty"`
	Deleted              bool       `json:"-"`
	DeletedAt            *time.Time `json:"-"`
}

type SubmitVideoRequest struct {
	YouTubeURL  string   `json:"youtube_url"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// UpdateVideoRequest carries a partial patch: nil fields are left untouched.
type UpdateVideoRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Tags        []string `json:"tags"`
}

type VideoStatusResponse struct {
	VideoID uuid.UUID `json:"video_id"`
	Status  string    `json:"status"`
}

// VideoWithRating is the shape returned by listing endpoints that attach
// the aggregate rating to each video.
type VideoWithRating struct {
	*Video
	Rating float64 `json:"rating"`
}

// YouTubeMetadata is what the external lookup yields. Any field may be
// empty; submission falls back to user-supplied values.
type YouTubeMetadata struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	ThumbnailURL string   `json:"thumbnail_url"`
	Tags         []string `json:"tags"`
}
