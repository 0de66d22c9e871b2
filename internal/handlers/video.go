package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"killrvideo-backend/internal/middleware"
	"killrvideo-backend/internal/models"
	"killrvideo-backend/internal/services"
)

type VideoHandler struct {
	engine *services.DiscoveryEngine
}

func NewVideoHandler(engine *services.DiscoveryEngine) *VideoHandler {
	return &VideoHandler{engine: engine}
}

func (h *VideoHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	userID := middleware.GetUserID(r.Context())
	video, err := h.engine.Submit(r.Context(), userID, &req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, video)
}

func (h *VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	videoID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid video ID", r))
		return
	}

	video, err := h.engine.GetByID(r.Context(), videoID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, video)
}

// Status exposes only the processing state, so clients can poll cheaply
// while a submission waits for its embedding.
func (h *VideoHandler) Status(w http.ResponseWriter, r *http.Request) {
	videoID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid video ID", r))
		return
	}

	video, err := h.engine.GetByID(r.Context(), videoID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.VideoStatusResponse{
		VideoID: video.VideoID,
		Status:  video.ProcessingStatus,
	})
}

func (h *VideoHandler) RecordView(w http.ResponseWriter, r *http.Request) {
	videoID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid video ID", r))
		return
	}

	video, err := h.engine.RecordView(r.Context(), videoID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"video_id":   video.VideoID,
		"view_count": video.ViewCount,
	})
}

func (h *VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	videoID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid video ID", r))
		return
	}

	var patch models.UpdateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	video, err := h.engine.Update(r.Context(), videoID, &patch, middleware.GetUserID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, video)
}

func (h *VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	videoID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid video ID", r))
		return
	}

	ctx := r.Context()
	if err := h.engine.Delete(ctx, videoID, middleware.GetUserID(ctx), middleware.IsAdmin(ctx)); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Video deleted"})
}

func (h *VideoHandler) Latest(w http.ResponseWriter, r *http.Request) {
	page := clampLimit(r, "page", 1, 10000)
	pageSize := clampLimit(r, "page_size", 10, 100)

	videos, err := h.engine.Latest(r.Context(), page, pageSize)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"videos": videos})
}

func (h *VideoHandler) Trending(w http.ResponseWriter, r *http.Request) {
	limit := clampLimit(r, "limit", 10, 100)
	days := clampLimit(r, "days", 1, 30)

	videos, err := h.engine.Trending(r.Context(), days, limit)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"videos": videos})
}

func (h *VideoHandler) Related(w http.ResponseWriter, r *http.Request) {
	videoID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid video ID", r))
		return
	}

	limit := clampLimit(r, "limit", 5, 20)

	videos, err := h.engine.Related(r.Context(), videoID, limit)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"videos": videos})
}

func (h *VideoHandler) ByUploader(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid user ID", r))
		return
	}

	limit := clampLimit(r, "limit", 10, 100)

	videos, err := h.engine.ByUploader(r.Context(), userID, limit)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"videos": videos})
}

func (h *VideoHandler) ByTag(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	limit := clampLimit(r, "limit", 10, 50)

	videos, err := h.engine.ByTag(r.Context(), tag, limit)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"videos": videos})
}
