package handlers

import (
	"net/http"

	"killrvideo-backend/internal/services"
)

type SearchHandler struct {
	engine *services.DiscoveryEngine
}

func NewSearchHandler(engine *services.DiscoveryEngine) *SearchHandler {
	return &SearchHandler{engine: engine}
}

// Videos resolves a free-text query against the vector index. An empty
// query is not an error, it just matches nothing.
func (h *SearchHandler) Videos(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	limit := clampLimit(r, "limit", 20, 100)

	videos, err := h.engine.Search(r.Context(), query, limit)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"query":  query,
		"videos": videos,
	})
}

func (h *SearchHandler) TagSuggestions(w http.ResponseWriter, r *http.Request) {
	fragment := r.URL.Query().Get("query")
	limit := clampLimit(r, "limit", 10, 50)

	tags, err := h.engine.SuggestTags(r.Context(), fragment, limit)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"query": fragment,
		"tags":  tags,
	})
}
