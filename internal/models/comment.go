package models

import (
	"time"

	"github.com/google/uuid"
)

// Comments are immutable once created; they can only be deleted, by the
// author or by an ADMIN.
type Comment struct {
	CommentID uuid.UUID `json:"comment_id"`
	VideoID   uuid.UUID `json:"video_id"`
	UserID    uuid.UUID `json:"user_id"`
	Comment   string    `json:"comment"`
	Timestamp time.Time `json:"timestamp"`
}

type SubmitCommentRequest struct {
	CommentText string `json:"comment_text"`
}
