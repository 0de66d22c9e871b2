package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"killrvideo-backend/internal/models"
)

const videoColumns = `video_id, user_id, name, description, tags, location,
	preview_image_location, youtube_id, processing_status, view_count,
	added_date, last_viewed_at, deleted, deleted_at`

type VideoRepo struct {
	pool *pgxpool.Pool
}

func NewVideoRepo(pool *pgxpool.Pool) *VideoRepo {
	return &VideoRepo{pool: pool}
}

func (r *VideoRepo) Create(ctx context.Context, v *models.Video) error {
	if v.VideoID == uuid.Nil {
		v.VideoID = uuid.New()
	}

	var emb any
	if len(v.Embedding) > 0 {
		emb = pgvector.NewVector(v.Embedding)
	}

	query := `INSERT INTO videos (video_id, user_id, name, description, tags, location,
		preview_image_location, youtube_id, embedding, processing_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING added_date`

	return r.pool.QueryRow(ctx, query,
		v.VideoID, v.UserID, v.Name, v.Description, v.Tags, v.Location,
		v.PreviewImageLocation, v.YouTubeID, emb, v.ProcessingStatus,
	).Scan(&v.AddedDate)
}

func (r *VideoRepo) GetByVideoID(ctx context.Context, id uuid.UUID, includeVector bool) (*models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE video_id = $1 AND NOT deleted`
	if includeVector {
		query = `SELECT ` + videoColumns + `, embedding FROM videos WHERE video_id = $1 AND NOT deleted`
	}

	row := r.pool.QueryRow(ctx, query, id)

	v := &models.Video{}
	dests := []any{
		&v.VideoID, &v.UserID, &v.Name, &v.Description, &v.Tags, &v.Location,
		&v.PreviewImageLocation, &v.YouTubeID, &v.ProcessingStatus, &v.ViewCount,
		&v.AddedDate, &v.LastViewedAt, &v.Deleted, &v.DeletedAt,
	}

	if includeVector {
		var emb *pgvector.Vector
		if err := row.Scan(append(dests, &emb)...); err != nil {
			return nil, err
		}
		if emb != nil {
			v.Embedding = emb.Slice()
		}
		return v, nil
	}

	if err := row.Scan(dests...); err != nil {
		return nil, err
	}
	return v, nil
}

func (r *VideoRepo) Latest(ctx context.Context, limit, offset int) ([]*models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE NOT deleted
		ORDER BY added_date DESC LIMIT $1 OFFSET $2`
	return r.queryVideos(ctx, query, limit, offset)
}

func (r *VideoRepo) ByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE user_id = $1 AND NOT deleted
		ORDER BY added_date DESC LIMIT $2`
	return r.queryVideos(ctx, query, userID, limit)
}

// ByTag matches videos whose tag set contains the tag as an exact member.
func (r *VideoRepo) ByTag(ctx context.Context, tag string, limit int) ([]*models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE $1 = ANY(tags) AND NOT deleted
		ORDER BY added_date DESC LIMIT $2`
	return r.queryVideos(ctx, query, tag, limit)
}

// ViewedSince returns READY videos whose last view falls inside the window,
// most recently viewed first.
func (r *VideoRepo) ViewedSince(ctx context.Context, since time.Time, limit int) ([]*models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos
		WHERE last_viewed_at >= $1 AND processing_status = 'READY' AND NOT deleted
		ORDER BY last_viewed_at DESC LIMIT $2`
	return r.queryVideos(ctx, query, since, limit)
}

// VectorSearch runs a k-nearest-neighbor query over READY videos. Ordering
// comes from the index (cosine distance ascending); no re-ranking happens
// on top of it.
func (r *VideoRepo) VectorSearch(ctx context.Context, vector []float32, limit int) ([]*models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos
		WHERE embedding IS NOT NULL AND processing_status = 'READY' AND NOT deleted
		ORDER BY embedding <=> $1 LIMIT $2`
	return r.queryVideos(ctx, query, pgvector.NewVector(vector), limit)
}

func (r *VideoRepo) Update(ctx context.Context, v *models.Video) error {
	query := `UPDATE videos SET name = $2, description = $3, tags = $4,
		preview_image_location = $5 WHERE video_id = $1 AND NOT deleted`
	_, err := r.pool.Exec(ctx, query, v.VideoID, v.Name, v.Description, v.Tags, v.PreviewImageLocation)
	return err
}

// SetEmbedding stores a computed vector and moves the video to the given
// status in one statement (backfill worker path).
func (r *VideoRepo) SetEmbedding(ctx context.Context, id uuid.UUID, vector []float32, status string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE videos SET embedding = $2, processing_status = $3 WHERE video_id = $1`,
		id, pgvector.NewVector(vector), status)
	return err
}

func (r *VideoRepo) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE videos SET processing_status = $2 WHERE video_id = $1`, id, status)
	return err
}

func (r *VideoRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE videos SET deleted = TRUE, deleted_at = NOW() WHERE video_id = $1 AND NOT deleted`, id)
	return err
}

// IncrementViewCount bumps view_count and last_viewed_at in a single atomic
// statement so concurrent viewers never lose updates. Returns pgx.ErrNoRows
// when the video is absent, deleted, or not yet READY.
func (r *VideoRepo) IncrementViewCount(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	query := `UPDATE videos SET view_count = view_count + 1, last_viewed_at = NOW()
		WHERE video_id = $1 AND processing_status = 'READY' AND NOT deleted
		RETURNING ` + videoColumns

	v := &models.Video{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&v.VideoID, &v.UserID, &v.Name, &v.Description, &v.Tags, &v.Location,
		&v.PreviewImageLocation, &v.YouTubeID, &v.ProcessingStatus, &v.ViewCount,
		&v.AddedDate, &v.LastViewedAt, &v.Deleted, &v.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// TagRows streams the tag arrays of the newest scanCap videos for the tag
// suggestion scan. The scan is O(catalog size); scanCap bounds it.
func (r *VideoRepo) TagRows(ctx context.Context, scanCap int) ([][]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT tags FROM videos WHERE NOT deleted ORDER BY added_date DESC LIMIT $1`, scanCap)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		var tags []string
		if err := rows.Scan(&tags); err != nil {
			return nil, err
		}
		out = append(out, tags)
	}
	return out, rows.Err()
}

func (r *VideoRepo) queryVideos(ctx context.Context, query string, args ...any) ([]*models.Video, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []*models.Video
	for rows.Next() {
		v := &models.Video{}
		err := rows.Scan(
			&v.VideoID, &v.UserID, &v.Name, &v.Description, &v.Tags, &v.Location,
			&v.PreviewImageLocation, &v.YouTubeID, &v.ProcessingStatus, &v.ViewCount,
			&v.AddedDate, &v.LastViewedAt, &v.Deleted, &v.DeletedAt,
		)
		if err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}
