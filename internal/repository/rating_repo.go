package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"killrvideo-backend/internal/models"
)

type RatingRepo struct {
	pool *pgxpool.Pool
}

func NewRatingRepo(pool *pgxpool.Pool) *RatingRepo {
	return &RatingRepo{pool: pool}
}

// Upsert stores a rating, replacing any existing rating by the same user
// for the same video. The unique index on (video_id, user_id) makes the
// check-then-act race impossible: concurrent first-time raters resolve to
// a single row at the store level.
func (r *RatingRepo) Upsert(ctx context.Context, rating *models.Rating) error {
	if rating.RatingID == uuid.Nil {
		rating.RatingID = uuid.New()
	}

	query := `INSERT INTO ratings (rating_id, video_id, user_id, rating)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (video_id, user_id)
		DO UPDATE SET rating = EXCLUDED.rating, updated_at = NOW()
		RETURNING rating_id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		rating.RatingID, rating.VideoID, rating.UserID, rating.Rating,
	).Scan(&rating.RatingID, &rating.CreatedAt, &rating.UpdatedAt)
}

func (r *RatingRepo) ByVideo(ctx context.Context, videoID uuid.UUID) ([]*models.Rating, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT rating_id, video_id, user_id, rating, created_at, updated_at
		 FROM ratings WHERE video_id = $1`, videoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ratings []*models.Rating
	for rows.Next() {
		rt := &models.Rating{}
		if err := rows.Scan(&rt.RatingID, &rt.VideoID, &rt.UserID, &rt.Rating, &rt.CreatedAt, &rt.UpdatedAt); err != nil {
			return nil, err
		}
		ratings = append(ratings, rt)
	}
	return ratings, rows.Err()
}

func (r *RatingRepo) ByVideoAndUser(ctx context.Context, videoID, userID uuid.UUID) (*models.Rating, error) {
	rt := &models.Rating{}
	err := r.pool.QueryRow(ctx,
		`SELECT rating_id, video_id, user_id, rating, created_at, updated_at
		 FROM ratings WHERE video_id = $1 AND user_id = $2`, videoID, userID,
	).Scan(&rt.RatingID, &rt.VideoID, &rt.UserID, &rt.Rating, &rt.CreatedAt, &rt.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return rt, nil
}

func (r *RatingRepo) DeleteByID(ctx context.Context, ratingID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM ratings WHERE rating_id = $1`, ratingID)
	return err
}
