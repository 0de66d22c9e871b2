package services

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	yt "github.com/kkdai/youtube/v2"

	"killrvideo-backend/internal/models"
)

// MetadataLookup resolves an external video identifier to hosting-platform
// metadata. Lookup failure is never fatal to a submission.
type MetadataLookup interface {
	Fetch(ctx context.Context, youtubeID string) (*models.YouTubeMetadata, error)
}

type YouTubeService struct {
	ytClient *yt.Client
}

func NewYouTubeService() *YouTubeService {
	return &YouTubeService{
		ytClient: &yt.Client{
			HTTPClient: &http.Client{Timeout: 30 * time.Second},
		},
	}
}

// Fetch pulls title, description and thumbnail for a YouTube video.
// Any field may come back empty; the caller falls back to user input.
func (s *YouTubeService) Fetch(ctx context.Context, youtubeID string) (*models.YouTubeMetadata, error) {
	video, err := s.ytClient.GetVideoContext(ctx, youtubeID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch YouTube metadata for %s: %w", youtubeID, err)
	}

	meta := &models.YouTubeMetadata{
		Title:       video.Title,
		Description: video.Description,
	}

	// Prefer the largest thumbnail the platform reports
	var best yt.Thumbnail
	for _, t := range video.Thumbnails {
		if t.Width >= best.Width {
			best = t
		}
	}
	meta.ThumbnailURL = best.URL
	if meta.ThumbnailURL == "" {
		meta.ThumbnailURL = fmt.Sprintf("https://img.youtube.com/vi/%s/maxresdefault.jpg", youtubeID)
	}

	log.Printf("Fetched YouTube metadata for %s: %q", youtubeID, meta.Title)
	return meta, nil
}
