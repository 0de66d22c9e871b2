package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"killrvideo-backend/internal/models"
)

// youtubePatterns match the accepted YouTube URL shapes and capture the
// 11-character video identifier.
var youtubePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtu\.be/(?P<id>[A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/watch\?v=(?P<id>[A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/embed/(?P<id>[A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/v/(?P<id>[A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/shorts/(?P<id>[A-Za-z0-9_-]{11})`),
}

// ExtractYouTubeID pulls the video identifier out of any supported URL
// shape. No match yields the empty string, never an error.
func ExtractYouTubeID(youtubeURL string) string {
	for _, pattern := range youtubePatterns {
		if match := pattern.FindStringSubmatch(youtubeURL); match != nil {
			return match[pattern.SubexpIndex("id")]
		}
	}
	return ""
}

type videoStore interface {
	Create(ctx context.Context, v *models.Video) error
	GetByVideoID(ctx context.Context, id uuid.UUID, includeVector bool) (*models.Video, error)
	ByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Video, error)
	Update(ctx context.Context, v *models.Video) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	IncrementViewCount(ctx context.Context, id uuid.UUID) (*models.Video, error)
	VectorSearch(ctx context.Context, vector []float32, limit int) ([]*models.Video, error)
}

// backfillQueue receives videos whose embedding step failed at submission
// time so the worker pool can retry them.
type backfillQueue interface {
	Enqueue(ctx context.Context, videoID uuid.UUID) error
}

// DiscoveryEngine is the primary contract surface: it orchestrates the
// catalog store, the embedding provider, the metadata lookup and the
// rankers into the public retrieval and mutation operations. It holds no
// persistent state beyond per-request buffers.
type DiscoveryEngine struct {
	videos     videoStore
	embedder   EmbeddingProvider
	metadata   MetadataLookup
	similarity *SimilaritySearch
	trending   *TrendingRanker
	tags       *TagIndex
	queue      backfillQueue
}

func NewDiscoveryEngine(
	videos videoStore,
	embedder EmbeddingProvider,
	metadata MetadataLookup,
	similarity *SimilaritySearch,
	trending *TrendingRanker,
	tags *TagIndex,
	queue backfillQueue,
) *DiscoveryEngine {
	return &DiscoveryEngine{
		videos:     videos,
		embedder:   embedder,
		metadata:   metadata,
		similarity: similarity,
		trending:   trending,
		tags:       tags,
		queue:      queue,
	}
}

// Submit validates and persists a new video. The external metadata lookup
// and the embedding step both degrade gracefully: lookup failure keeps the
// user-supplied fields, embedding failure stores the video PENDING without
// a vector and queues a backfill retry. Embedding success goes straight
// to READY.
func (e *DiscoveryEngine) Submit(ctx context.Context, userID uuid.UUID, req *models.SubmitVideoRequest) (*models.Video, error) {
	location := strings.TrimSpace(req.YouTubeURL)
	if location == "" {
		return nil, fmt.Errorf("youtube_url is required: %w", ErrInvalidInput)
	}

	video := &models.Video{
		VideoID:          uuid.New(),
		UserID:           userID,
		Name:             strings.TrimSpace(req.Name),
		Description:      req.Description,
		Tags:             dedupeTags(req.Tags),
		Location:         location,
		ProcessingStatus: models.StatusPending,
	}

	if id := ExtractYouTubeID(location); id != "" {
		video.YouTubeID = &id
	}

	e.enrichFromMetadata(ctx, video)

	if video.Name == "" {
		return nil, fmt.Errorf("video name is required when metadata lookup yields none: %w", ErrInvalidInput)
	}

	vector, err := e.embedder.Embed(ctx, EmbeddingText(video))
	if err != nil {
		// Deliberate partial-failure tolerance: the video is stored
		// without a vector and stays out of similarity search until
		// the backfill worker reprocesses it.
		log.Printf("embedding failed for video %s, storing PENDING: %v", video.VideoID, err)
	} else {
		video.Embedding = vector
		video.ProcessingStatus = models.StatusReady
	}

	if err := e.videos.Create(ctx, video); err != nil {
		return nil, fmt.Errorf("failed to store video: %w", err)
	}

	if video.ProcessingStatus == models.StatusPending && e.queue != nil {
		if err := e.queue.Enqueue(ctx, video.VideoID); err != nil {
			log.Printf("failed to enqueue embedding backfill for %s: %v", video.VideoID, err)
		}
	}

	log.Printf("Video submitted. ID: %s, status: %s", video.VideoID, video.ProcessingStatus)
	return video, nil
}

func (e *DiscoveryEngine) enrichFromMetadata(ctx context.Context, video *models.Video) {
	if e.metadata == nil || video.YouTubeID == nil {
		return
	}

	meta, err := e.metadata.Fetch(ctx, *video.YouTubeID)
	if err != nil {
		log.Printf("metadata lookup failed for %s, keeping user-supplied fields: %v", *video.YouTubeID, err)
		return
	}

	// Only fill fields the submitter left empty
	if video.Name == "" {
		video.Name = meta.Title
	}
	if video.Description == "" {
		video.Description = meta.Description
	}
	if len(video.Tags) == 0 {
		video.Tags = dedupeTags(meta.Tags)
	}
	if video.PreviewImageLocation == "" {
		video.PreviewImageLocation = meta.ThumbnailURL
	}
}

func (e *DiscoveryEngine) GetByID(ctx context.Context, videoID uuid.UUID) (*models.Video, error) {
	video, err := e.videos.GetByVideoID(ctx, videoID, false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("video %s: %w", videoID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load video (%v): %w", err, ErrUnavailable)
	}
	return video, nil
}

// RecordView bumps the view counter and last-viewed timestamp. The store
// performs the increment atomically, so concurrent viewers never lose
// updates. Videos that are absent, deleted or not yet READY are NotFound.
func (e *DiscoveryEngine) RecordView(ctx context.Context, videoID uuid.UUID) (*models.Video, error) {
	video, err := e.videos.IncrementViewCount(ctx, videoID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("video %s not viewable: %w", videoID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to record view: %w", err)
	}
	return video, nil
}

// Update applies a partial patch. Only the owner may update; nil patch
// fields leave the stored values untouched, so an empty patch is a no-op
// write.
func (e *DiscoveryEngine) Update(ctx context.Context, videoID uuid.UUID, patch *models.UpdateVideoRequest, requesterID uuid.UUID) (*models.Video, error) {
	video, err := e.GetByID(ctx, videoID)
	if err != nil {
		return nil, err
	}

	if video.UserID != requesterID {
		return nil, fmt.Errorf("video %s is not owned by requester: %w", videoID, ErrForbidden)
	}

	if patch.Name != nil {
		video.Name = *patch.Name
	}
	if patch.Description != nil {
		video.Description = *patch.Description
	}
	if patch.Tags != nil {
		video.Tags = dedupeTags(patch.Tags)
	}

	if err := e.videos.Update(ctx, video); err != nil {
		return nil, fmt.Errorf("failed to update video: %w", err)
	}
	return video, nil
}

// Delete soft-deletes a video. Owners may delete their own; ADMINs may
// delete anyone's (moderation flow).
func (e *DiscoveryEngine) Delete(ctx context.Context, videoID, requesterID uuid.UUID, admin bool) error {
	video, err := e.GetByID(ctx, videoID)
	if err != nil {
		return err
	}

	if video.UserID != requesterID && !admin {
		return fmt.Errorf("video %s is not owned by requester: %w", videoID, ErrForbidden)
	}

	if err := e.videos.SoftDelete(ctx, videoID); err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}
	return nil
}

// Search embeds the query text and resolves it against the catalog-wide
// vector index. Empty or whitespace-only queries return an empty result
// without touching the embedder or the store.
func (e *DiscoveryEngine) Search(ctx context.Context, queryText string, limit int) ([]*models.Video, error) {
	queryText = strings.TrimSpace(queryText)
	if queryText == "" {
		return []*models.Video{}, nil
	}

	vector, err := e.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("query embedding failed: %w", ErrUnavailable)
	}

	videos, err := e.videos.VectorSearch(ctx, vector, limit)
	if err != nil {
		return nil, fmt.Errorf("vector search failed (%v): %w", err, ErrUnavailable)
	}
	if videos == nil {
		videos = []*models.Video{}
	}
	return videos, nil
}

func (e *DiscoveryEngine) Related(ctx context.Context, videoID uuid.UUID, limit int) ([]*models.Video, error) {
	return e.similarity.RelatedTo(ctx, videoID, limit)
}

func (e *DiscoveryEngine) ByTag(ctx context.Context, tag string, limit int) ([]*models.Video, error) {
	return e.tags.ByTag(ctx, tag, limit)
}

func (e *DiscoveryEngine) SuggestTags(ctx context.Context, fragment string, limit int) ([]string, error) {
	return e.tags.Suggest(ctx, fragment, limit)
}

func (e *DiscoveryEngine) ByUploader(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Video, error) {
	videos, err := e.videos.ByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load uploader videos (%v): %w", err, ErrUnavailable)
	}
	if videos == nil {
		videos = []*models.Video{}
	}
	return videos, nil
}

func (e *DiscoveryEngine) Latest(ctx context.Context, page, pageSize int) ([]*models.Video, error) {
	return e.trending.Latest(ctx, page, pageSize)
}

func (e *DiscoveryEngine) Trending(ctx context.Context, windowDays, limit int) ([]*models.Video, error) {
	return e.trending.Trending(ctx, windowDays, limit)
}

// EmbeddingText is the text the catalog embeds for a video: title plus
// description, the same shape used for query embeddings.
func EmbeddingText(v *models.Video) string {
	if v.Description == "" {
		return v.Name
	}
	return v.Name + "\n" + v.Description
}

// dedupeTags trims and deduplicates while preserving order; tags are a set.
func dedupeTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
