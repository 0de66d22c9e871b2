package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"killrvideo-backend/internal/middleware"
	"killrvideo-backend/internal/models"
	"killrvideo-backend/internal/repository"
)

type ModerationHandler struct {
	flagRepo *repository.FlagRepo
}

func NewModerationHandler(flagRepo *repository.FlagRepo) *ModerationHandler {
	return &ModerationHandler{flagRepo: flagRepo}
}

// CreateFlag opens a moderation flag against a video or a comment. Any
// authenticated user can report; the flag starts OPEN.
func (h *ModerationHandler) CreateFlag(w http.ResponseWriter, r *http.Request) {
	var req models.CreateFlagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if req.ContentType != "video" && req.ContentType != "comment" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "content_type must be video or comment", r))
		return
	}
	if req.ContentID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "content_id is required", r))
		return
	}
	if strings.TrimSpace(req.ReasonCode) == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "reason_code is required", r))
		return
	}

	reporterID := middleware.GetUserID(r.Context())
	flag := &models.Flag{
		ContentType: req.ContentType,
		ContentID:   req.ContentID,
		ReporterID:  &reporterID,
		ReasonCode:  req.ReasonCode,
		ReasonText:  req.ReasonText,
		Status:      models.FlagOpen,
	}

	if err := h.flagRepo.Create(r.Context(), flag); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, flag)
}

func (h *ModerationHandler) ListFlags(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	limit := clampLimit(r, "limit", 20, 100)

	flags, err := h.flagRepo.List(r.Context(), status, limit)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if flags == nil {
		flags = []*models.Flag{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"flags": flags})
}

func (h *ModerationHandler) GetFlag(w http.ResponseWriter, r *http.Request) {
	flagID, err := uuid.Parse(chi.URLParam(r, "flagID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid flag ID", r))
		return
	}

	flag, err := h.flagRepo.ByFlagID(r.Context(), flagID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Flag not found", r))
			return
		}
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, flag)
}

// validFlagTransitions: OPEN flags get picked up for review, reviewed
// flags get resolved. APPROVED and REJECTED are terminal.
var validFlagTransitions = map[string][]string{
	models.FlagOpen:        {models.FlagUnderReview, models.FlagRejected},
	models.FlagUnderReview: {models.FlagApproved, models.FlagRejected},
}

// ActOnFlag advances a flag through its lifecycle.
func (h *ModerationHandler) ActOnFlag(w http.ResponseWriter, r *http.Request) {
	flagID, err := uuid.Parse(chi.URLParam(r, "flagID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid flag ID", r))
		return
	}

	var req models.FlagActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	flag, err := h.flagRepo.ByFlagID(r.Context(), flagID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Flag not found", r))
			return
		}
		handleServiceError(w, r, err)
		return
	}

	allowed := false
	for _, next := range validFlagTransitions[flag.Status] {
		if next == req.Status {
			allowed = true
			break
		}
	}
	if !allowed {
		writeJSON(w, http.StatusConflict, errorResp("CONFLICT", "Invalid status transition from "+flag.Status+" to "+req.Status, r))
		return
	}

	flag.Status = req.Status
	if req.ModeratorNotes != nil {
		flag.ModeratorNotes = req.ModeratorNotes
	}

	if err := h.flagRepo.Update(r.Context(), flag); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, flag)
}
