package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"killrvideo-backend/internal/models"
)

type FlagRepo struct {
	pool *pgxpool.Pool
}

func NewFlagRepo(pool *pgxpool.Pool) *FlagRepo {
	return &FlagRepo{pool: pool}
}

func (r *FlagRepo) Create(ctx context.Context, f *models.Flag) error {
	if f.FlagID == uuid.Nil {
		f.FlagID = uuid.New()
	}

	query := `INSERT INTO flags (flag_id, content_type, content_id, reporter_id, reason_code, reason_text, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		f.FlagID, f.ContentType, f.ContentID, f.ReporterID, f.ReasonCode, f.ReasonText, f.Status,
	).Scan(&f.CreatedAt, &f.UpdatedAt)
}

func (r *FlagRepo) ByFlagID(ctx context.Context, flagID uuid.UUID) (*models.Flag, error) {
	f := &models.Flag{}
	err := r.pool.QueryRow(ctx,
		`SELECT flag_id, content_type, content_id, reporter_id, reason_code, reason_text, status, moderator_notes, created_at, updated_at
		 FROM flags WHERE flag_id = $1`, flagID,
	).Scan(&f.FlagID, &f.ContentType, &f.ContentID, &f.ReporterID, &f.ReasonCode,
		&f.ReasonText, &f.Status, &f.ModeratorNotes, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// List returns flags newest first, optionally filtered by status.
func (r *FlagRepo) List(ctx context.Context, status string, limit int) ([]*models.Flag, error) {
	query := `SELECT flag_id, content_type, content_id, reporter_id, reason_code, reason_text, status, moderator_notes, created_at, updated_at
		FROM flags ORDER BY created_at DESC LIMIT $1`
	args := []any{limit}

	if status != "" {
		query = `SELECT flag_id, content_type, content_id, reporter_id, reason_code, reason_text, status, moderator_notes, created_at, updated_at
			FROM flags WHERE status = $1 ORDER BY created_at DESC LIMIT $2`
		args = []any{status, limit}
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flags []*models.Flag
	for rows.Next() {
		f := &models.Flag{}
		err := rows.Scan(&f.FlagID, &f.ContentType, &f.ContentID, &f.ReporterID, &f.ReasonCode,
			&f.ReasonText, &f.Status, &f.ModeratorNotes, &f.CreatedAt, &f.UpdatedAt)
		if err != nil {
			return nil, err
		}
		flags = append(flags, f)
	}
	return flags, rows.Err()
}

func (r *FlagRepo) Update(ctx context.Context, f *models.Flag) error {
	query := `UPDATE flags SET status = $2, moderator_notes = $3, updated_at = NOW()
		WHERE flag_id = $1 RETURNING updated_at`
	return r.pool.QueryRow(ctx, query, f.FlagID, f.Status, f.ModeratorNotes).Scan(&f.UpdatedAt)
}
