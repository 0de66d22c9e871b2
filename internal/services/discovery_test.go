package services

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"killrvideo-backend/internal/models"
)

type fakeVideoStore struct {
	videos    map[uuid.UUID]*models.Video
	created   []*models.Video
	updated   []*models.Video
	deleted   []uuid.UUID
	results   []*models.Video
	searchErr error
}

func newFakeVideoStore() *fakeVideoStore {
	return &fakeVideoStore{videos: make(map[uuid.UUID]*models.Video)}
}

func (f *fakeVideoStore) Create(ctx context.Context, v *models.Video) error {
	f.created = append(f.created, v)
	f.videos[v.VideoID] = v
	return nil
}

func (f *fakeVideoStore) GetByVideoID(ctx context.Context, id uuid.UUID, includeVector bool) (*models.Video, error) {
	v, ok := f.videos[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return v, nil
}

func (f *fakeVideoStore) ByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Video, error) {
	return f.results, nil
}

func (f *fakeVideoStore) Update(ctx context.Context, v *models.Video) error {
	f.updated = append(f.updated, v)
	return nil
}

func (f *fakeVideoStore) SoftDelete(ctx context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeVideoStore) IncrementViewCount(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	v, ok := f.videos[id]
	if !ok || v.ProcessingStatus != models.StatusReady {
		return nil, pgx.ErrNoRows
	}
	v.ViewCount++
	return v, nil
}

func (f *fakeVideoStore) VectorSearch(ctx context.Context, vector []float32, limit int) ([]*models.Video, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.results, nil
}

type fakeEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

func (f *fakeEmbedder) Dimension() int { return len(f.vector) }

type fakeMetadata struct {
	meta *models.YouTubeMetadata
	err  error
}

func (f *fakeMetadata) Fetch(ctx context.Context, youtubeID string) (*models.YouTubeMetadata, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.meta, nil
}

type fakeQueue struct {
	enqueued []uuid.UUID
}

func (f *fakeQueue) Enqueue(ctx context.Context, videoID uuid.UUID) error {
	f.enqueued = append(f.enqueued, videoID)
	return nil
}

func newTestEngine(store *fakeVideoStore, embedder *fakeEmbedder, metadata MetadataLookup, queue *fakeQueue) *DiscoveryEngine {
	return NewDiscoveryEngine(
		store,
		embedder,
		metadata,
		NewSimilaritySearch(&fakeSimilarityStore{}),
		NewTrendingRanker(&fakeTrendingStore{}),
		NewTagIndex(&fakeTagStore{}),
		queue,
	)
}

func TestExtractYouTubeID(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"http://youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"www.youtube.com/v/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?v=short", ""},
		{"https://vimeo.com/123456", ""},
		{"not a url", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := ExtractYouTubeID(tt.url); got != tt.want {
			t.Errorf("ExtractYouTubeID(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestSubmitEmbeddingSuccessIsReady(t *testing.T) {
	store := newFakeVideoStore()
	embedder := &fakeEmbedder{vector: []float32{0.1, 0.2}}
	queue := &fakeQueue{}
	engine := newTestEngine(store, embedder, nil, queue)

	video, err := engine.Submit(context.Background(), uuid.New(), &models.SubmitVideoRequest{
		YouTubeURL: "https://youtu.be/dQw4w9WgXcQ",
		Name:       "Test video",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if video.ProcessingStatus != models.StatusReady {
		t.Errorf("status = %s, want READY", video.ProcessingStatus)
	}
	if len(video.Embedding) == 0 {
		t.Error("embedding not stored")
	}
	if video.YouTubeID == nil || *video.YouTubeID != "dQw4w9WgXcQ" {
		t.Errorf("youtube id = %v, want dQw4w9WgXcQ", video.YouTubeID)
	}
	if len(queue.enqueued) != 0 {
		t.Error("READY video was queued for backfill")
	}
}

func TestSubmitToleratesEmbeddingFailure(t *testing.T) {
	store := newFakeVideoStore()
	embedder := &fakeEmbedder{err: errors.New("model cold")}
	queue := &fakeQueue{}
	engine := newTestEngine(store, embedder, nil, queue)

	video, err := engine.Submit(context.Background(), uuid.New(), &models.SubmitVideoRequest{
		YouTubeURL: "https://youtu.be/dQw4w9WgXcQ",
		Name:       "Test video",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if video.ProcessingStatus != models.StatusPending {
		t.Errorf("status = %s, want PENDING", video.ProcessingStatus)
	}
	if len(store.created) != 1 {
		t.Fatalf("video not stored despite embedding failure")
	}
	if len(queue.enqueued) != 1 || queue.enqueued[0] != video.VideoID {
		t.Errorf("backfill queue = %v, want [%s]", queue.enqueued, video.VideoID)
	}
}

func TestSubmitRequiresURL(t *testing.T) {
	engine := newTestEngine(newFakeVideoStore(), &fakeEmbedder{vector: []float32{0.1}}, nil, &fakeQueue{})

	_, err := engine.Submit(context.Background(), uuid.New(), &models.SubmitVideoRequest{
		YouTubeURL: "   ",
		Name:       "Test",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}

func TestSubmitRequiresNameWithoutMetadata(t *testing.T) {
	engine := newTestEngine(newFakeVideoStore(), &fakeEmbedder{vector: []float32{0.1}}, nil, &fakeQueue{})

	_, err := engine.Submit(context.Background(), uuid.New(), &models.SubmitVideoRequest{
		YouTubeURL: "https://youtu.be/dQw4w9WgXcQ",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}

func TestSubmitMetadataFillsOnlyEmptyFields(t *testing.T) {
	metadata := &fakeMetadata{meta: &models.YouTubeMetadata{
		Title:        "Fetched title",
		Description:  "Fetched description",
		ThumbnailURL: "https://img.example/thumb.jpg",
		Tags:         []string{"fetched"},
	}}
	engine := newTestEngine(newFakeVideoStore(), &fakeEmbedder{vector: []float32{0.1}}, metadata, &fakeQueue{})

	video, err := engine.Submit(context.Background(), uuid.New(), &models.SubmitVideoRequest{
		YouTubeURL:  "https://youtu.be/dQw4w9WgXcQ",
		Name:        "My own title",
		Description: "",
		Tags:        []string{"mine"},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// Submitter-supplied values win; lookup only fills the gaps
	if video.Name != "My own title" {
		t.Errorf("name = %q, overwritten by metadata", video.Name)
	}
	if video.Description != "Fetched description" {
		t.Errorf("description = %q, want fetched value", video.Description)
	}
	if !reflect.DeepEqual(video.Tags, []string{"mine"}) {
		t.Errorf("tags = %v, want user tags", video.Tags)
	}
	if video.PreviewImageLocation != "https://img.example/thumb.jpg" {
		t.Errorf("preview = %q, want fetched thumbnail", video.PreviewImageLocation)
	}
}

func TestSubmitMetadataFillsTagsWhenAbsent(t *testing.T) {
	metadata := &fakeMetadata{meta: &models.YouTubeMetadata{
		Title: "Fetched title",
		Tags:  []string{"cats", "funny"},
	}}
	engine := newTestEngine(newFakeVideoStore(), &fakeEmbedder{vector: []float32{0.1}}, metadata, &fakeQueue{})

	video, err := engine.Submit(context.Background(), uuid.New(), &models.SubmitVideoRequest{
		YouTubeURL: "https://youtu.be/dQw4w9WgXcQ",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !reflect.DeepEqual(video.Tags, []string{"cats", "funny"}) {
		t.Errorf("tags = %v, want platform keywords", video.Tags)
	}
}

func TestSubmitSurvivesMetadataFailure(t *testing.T) {
	metadata := &fakeMetadata{err: errors.New("upstream down")}
	engine := newTestEngine(newFakeVideoStore(), &fakeEmbedder{vector: []float32{0.1}}, metadata, &fakeQueue{})

	video, err := engine.Submit(context.Background(), uuid.New(), &models.SubmitVideoRequest{
		YouTubeURL: "https://youtu.be/dQw4w9WgXcQ",
		Name:       "Kept title",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if video.Name != "Kept title" {
		t.Errorf("name = %q, want user value", video.Name)
	}
}

func TestSubmitDeduplicatesTags(t *testing.T) {
	engine := newTestEngine(newFakeVideoStore(), &fakeEmbedder{vector: []float32{0.1}}, nil, &fakeQueue{})

	video, err := engine.Submit(context.Background(), uuid.New(), &models.SubmitVideoRequest{
		YouTubeURL: "https://youtu.be/dQw4w9WgXcQ",
		Name:       "Test",
		Tags:       []string{"go", " go ", "", "redis", "go"},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !reflect.DeepEqual(video.Tags, []string{"go", "redis"}) {
		t.Errorf("tags = %v, want [go redis]", video.Tags)
	}
}

func TestSearchEmptyQuerySkipsEmbedder(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{0.1}}
	engine := newTestEngine(newFakeVideoStore(), embedder, nil, &fakeQueue{})

	for _, query := range []string{"", "   "} {
		videos, err := engine.Search(context.Background(), query, 10)
		if err != nil {
			t.Fatalf("Search(%q): %v", query, err)
		}
		if len(videos) != 0 {
			t.Errorf("Search(%q) = %d videos, want 0", query, len(videos))
		}
	}
	if embedder.calls != 0 {
		t.Errorf("embedder called %d times for empty queries", embedder.calls)
	}
}

func TestSearchEmbedderFailureIsUnavailable(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("model cold")}
	engine := newTestEngine(newFakeVideoStore(), embedder, nil, &fakeQueue{})

	_, err := engine.Search(context.Background(), "cat videos", 10)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
}

func TestSearchStoreFailureIsRetryable(t *testing.T) {
	store := newFakeVideoStore()
	store.searchErr = errors.New("connection reset")
	engine := newTestEngine(store, &fakeEmbedder{vector: []float32{0.1}}, nil, &fakeQueue{})

	_, err := engine.Search(context.Background(), "cat videos", 10)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
}

func TestUpdateOwnerOnly(t *testing.T) {
	store := newFakeVideoStore()
	owner := uuid.New()
	video := &models.Video{VideoID: uuid.New(), UserID: owner, Name: "Before"}
	store.videos[video.VideoID] = video

	engine := newTestEngine(store, &fakeEmbedder{vector: []float32{0.1}}, nil, &fakeQueue{})

	name := "After"
	_, err := engine.Update(context.Background(), video.VideoID, &models.UpdateVideoRequest{Name: &name}, uuid.New())
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("stranger update error = %v, want ErrForbidden", err)
	}

	updated, err := engine.Update(context.Background(), video.VideoID, &models.UpdateVideoRequest{Name: &name}, owner)
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Name != "After" {
		t.Errorf("name = %q, want After", updated.Name)
	}
}

func TestUpdateNilFieldsUntouched(t *testing.T) {
	store := newFakeVideoStore()
	owner := uuid.New()
	video := &models.Video{
		VideoID:     uuid.New(),
		UserID:      owner,
		Name:        "Original",
		Description: "Original description",
		Tags:        []string{"a"},
	}
	store.videos[video.VideoID] = video

	engine := newTestEngine(store, &fakeEmbedder{vector: []float32{0.1}}, nil, &fakeQueue{})

	desc := "New description"
	updated, err := engine.Update(context.Background(), video.VideoID, &models.UpdateVideoRequest{Description: &desc}, owner)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Original" {
		t.Errorf("name changed by nil patch field: %q", updated.Name)
	}
	if updated.Description != "New description" {
		t.Errorf("description = %q, want patched value", updated.Description)
	}
	if !reflect.DeepEqual(updated.Tags, []string{"a"}) {
		t.Errorf("tags changed by nil patch field: %v", updated.Tags)
	}
}

func TestUpdateMissingVideo(t *testing.T) {
	engine := newTestEngine(newFakeVideoStore(), &fakeEmbedder{vector: []float32{0.1}}, nil, &fakeQueue{})

	name := "X"
	_, err := engine.Update(context.Background(), uuid.New(), &models.UpdateVideoRequest{Name: &name}, uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestDeleteAdminOverride(t *testing.T) {
	store := newFakeVideoStore()
	video := &models.Video{VideoID: uuid.New(), UserID: uuid.New()}
	store.videos[video.VideoID] = video

	engine := newTestEngine(store, &fakeEmbedder{vector: []float32{0.1}}, nil, &fakeQueue{})

	stranger := uuid.New()
	if err := engine.Delete(context.Background(), video.VideoID, stranger, false); !errors.Is(err, ErrForbidden) {
		t.Errorf("stranger delete error = %v, want ErrForbidden", err)
	}

	if err := engine.Delete(context.Background(), video.VideoID, stranger, true); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if len(store.deleted) != 1 {
		t.Errorf("deleted %d videos, want 1", len(store.deleted))
	}
}

func TestRecordViewNotReady(t *testing.T) {
	store := newFakeVideoStore()
	video := &models.Video{VideoID: uuid.New(), ProcessingStatus: models.StatusPending}
	store.videos[video.VideoID] = video

	engine := newTestEngine(store, &fakeEmbedder{vector: []float32{0.1}}, nil, &fakeQueue{})

	if _, err := engine.RecordView(context.Background(), video.VideoID); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestRecordViewIncrements(t *testing.T) {
	store := newFakeVideoStore()
	video := &models.Video{VideoID: uuid.New(), ProcessingStatus: models.StatusReady, ViewCount: 41}
	store.videos[video.VideoID] = video

	engine := newTestEngine(store, &fakeEmbedder{vector: []float32{0.1}}, nil, &fakeQueue{})

	got, err := engine.RecordView(context.Background(), video.VideoID)
	if err != nil {
		t.Fatalf("RecordView: %v", err)
	}
	if got.ViewCount != 42 {
		t.Errorf("view count = %d, want 42", got.ViewCount)
	}
}

func TestEmbeddingText(t *testing.T) {
	v := &models.Video{Name: "Title"}
	if got := EmbeddingText(v); got != "Title" {
		t.Errorf("EmbeddingText = %q, want Title", got)
	}

	v.Description = "Body"
	if got := EmbeddingText(v); got != "Title\nBody" {
		t.Errorf("EmbeddingText = %q, want title and description", got)
	}
}
