package models

import "github.com/google/uuid"

// EmbeddingJob is queued when the embedding step fails during submission.
// The worker pool retries it until the video becomes READY or the attempt
// budget is exhausted (then FAILED).
type EmbeddingJob struct {
	VideoID  uuid.UUID `json:"video_id"`
	Attempts int       `json:"attempts"`
}

type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
