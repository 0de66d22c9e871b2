package models

import (
	"time"

	"github.com/google/uuid"
)

// Flag lifecycle. OPEN flags move to UNDER_REVIEW when a moderator picks
// them up and end in one of the resolved states.
const (
	FlagOpen        = "OPEN"
	FlagUnderReview = "UNDER_REVIEW"
	FlagApproved    = "APPROVED"
	FlagRejected    = "REJECTED"
)

type Flag struct {
	FlagID         uuid.UUID  `json:"flag_id"`
	ContentType    string     `json:"content_type"` // "video" | "comment"
	ContentID      uuid.UUID  `json:"content_id"`
	ReporterID     *uuid.UUID `json:"reporter_id,omitempty"`
	ReasonCode     string     `json:"reason_code"`
	ReasonText     string     `json:"reason_text"`
	Status         string     `json:"status"`
	ModeratorNotes *string    `json:"moderator_notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type CreateFlagRequest struct {
	ContentType string    `json:"content_type"`
	ContentID   uuid.UUID `json:"content_id"`
	ReasonCode  string    `json:"reason_code"`
	ReasonText  string    `json:"reason_text"`
}

type FlagActionRequest struct {
	Status         string  `json:"status"`
	ModeratorNotes *string `json:"moderator_notes"`
}
