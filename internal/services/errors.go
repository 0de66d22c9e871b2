package services

import "errors"

// Error taxonomy surfaced by the discovery engine. Handlers map these to
// HTTP status codes; NotFound and Forbidden are deliberately distinct so
// callers can tell "doesn't exist" from "exists but not yours".
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnavailable  = errors.New("dependency unavailable")
	ErrConflict     = errors.New("conflict")
)
