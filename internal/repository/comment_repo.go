package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"killrvideo-backend/internal/models"
)

type CommentRepo struct {
	pool *pgxpool.Pool
}

func NewCommentRepo(pool *pgxpool.Pool) *CommentRepo {
	return &CommentRepo{pool: pool}
}

func (r *CommentRepo) Create(ctx context.Context, c *models.Comment) error {
	if c.CommentID == uuid.Nil {
		c.CommentID = uuid.New()
	}

	query := `INSERT INTO comments (comment_id, video_id, user_id, comment)
		VALUES ($1, $2, $3, $4) RETURNING timestamp`

	return r.pool.QueryRow(ctx, query, c.CommentID, c.VideoID, c.UserID, c.Comment).Scan(&c.Timestamp)
}

// ByVideo returns a video's comments, newest first.
func (r *CommentRepo) ByVideo(ctx context.Context, videoID uuid.UUID, limit int) ([]*models.Comment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT comment_id, video_id, user_id, comment, timestamp
		 FROM comments WHERE video_id = $1 ORDER BY timestamp DESC LIMIT $2`, videoID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		c := &models.Comment{}
		if err := rows.Scan(&c.CommentID, &c.VideoID, &c.UserID, &c.Comment, &c.Timestamp); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *CommentRepo) ByCommentID(ctx context.Context, commentID uuid.UUID) (*models.Comment, error) {
	c := &models.Comment{}
	err := r.pool.QueryRow(ctx,
		`SELECT comment_id, video_id, user_id, comment, timestamp
		 FROM comments WHERE comment_id = $1`, commentID,
	).Scan(&c.CommentID, &c.VideoID, &c.UserID, &c.Comment, &c.Timestamp)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CommentRepo) DeleteByCommentID(ctx context.Context, commentID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE comment_id = $1`, commentID)
	return err
}
