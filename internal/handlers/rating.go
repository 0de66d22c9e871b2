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

type RatingHandler struct {
	aggregator *services.RatingAggregator
	engine     *services.DiscoveryEngine
}

func NewRatingHandler(aggregator *services.RatingAggregator, engine *services.DiscoveryEngine) *RatingHandler {
	return &RatingHandler{aggregator: aggregator, engine: engine}
}

// Submit stores the requester's rating. Re-rating the same video replaces
// the previous value instead of adding a second row.
func (h *RatingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	videoID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid video ID", r))
		return
	}

	var req models.SubmitRatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	// Rating a missing video must 404, not silently insert
	if _, err := h.engine.GetByID(r.Context(), videoID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	rating, err := h.aggregator.Rate(r.Context(), videoID, middleware.GetUserID(r.Context()), req.Rating)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, rating)
}

func (h *RatingHandler) Remove(w http.ResponseWriter, r *http.Request) {
	videoID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid video ID", r))
		return
	}

	if err := h.aggregator.Unrate(r.Context(), videoID, middleware.GetUserID(r.Context())); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Rating removed"})
}

func (h *RatingHandler) Summary(w http.ResponseWriter, r *http.Request) {
	videoID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid video ID", r))
		return
	}

	summary, err := h.aggregator.Summarize(r.Context(), videoID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func (h *RatingHandler) Mine(w http.ResponseWriter, r *http.Request) {
	videoID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid video ID", r))
		return
	}

	summary, err := h.aggregator.SummarizeForUser(r.Context(), videoID, middleware.GetUserID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
