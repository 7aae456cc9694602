package handler

import (
	"log/slog"
	"net/http"

	"github.com/pamelaahill/inspiration-server/internal/service"
)

// TagHandler serves the tag vocabulary endpoints.
type TagHandler struct {
	tags   *service.TagService
	logger *slog.Logger
}

// NewTagHandler creates a TagHandler.
func NewTagHandler(tags *service.TagService, logger *slog.Logger) *TagHandler {
	return &TagHandler{
		tags:   tags,
		logger: logger,
	}
}

// HandleList returns the tag vocabulary, filtered by substring when a title
// query parameter is present.
//
// HTTP: GET /api/tags
// HTTP: GET /api/tags?title=fun
func (h *TagHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	tags, err := h.tags.Search(r.Context(), r.URL.Query().Get("title"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tags)
}
