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
	"killrvideo-backend/internal/services"
)

type CommentHandler struct {
	commentRepo *repository.CommentRepo
	engine      *services.DiscoveryEngine
}

func NewCommentHandler(commentRepo *repository.CommentRepo, engine *services.DiscoveryEngine) *CommentHandler {
	return &CommentHandler{commentRepo: commentRepo, engine: engine}
}

func (h *CommentHandler) Submit(w http.ResponseWriter, r *http.Request) {
	videoID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid video ID", r))
		return
	}

	var req models.SubmitCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	text := strings.TrimSpace(req.CommentText)
	if text == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "comment_text is required", r))
		return
	}

	if _, err := h.engine.GetByID(r.Context(), videoID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	comment := &models.Comment{
		VideoID: videoID,
		UserID:  middleware.GetUserID(r.Context()),
		Comment: text,
	}
	if err := h.commentRepo.Create(r.Context(), comment); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}

func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	videoID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid video ID", r))
		return
	}

	limit := clampLimit(r, "page_size", 20, 100)

	comments, err := h.commentRepo.ByVideo(r.Context(), videoID, limit)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if comments == nil {
		comments = []*models.Comment{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"comments": comments})
}

// Delete removes a comment. The author may delete their own; ADMINs may
// delete anyone's.
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	commentID, err := uuid.Parse(chi.URLParam(r, "commentID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid comment ID", r))
		return
	}

	comment, err := h.commentRepo.ByCommentID(r.Context(), commentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Comment not found", r))
			return
		}
		handleServiceError(w, r, err)
		return
	}

	ctx := r.Context()
	if comment.UserID != middleware.GetUserID(ctx) && !middleware.IsAdmin(ctx) {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Not the comment author", r))
		return
	}

	if err := h.commentRepo.DeleteByCommentID(ctx, commentID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Comment deleted"})
}
