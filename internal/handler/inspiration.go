// Package handler contains the HTTP layer: request parsing, response
// encoding, and nothing else. All business rules live in the service layer.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/pamelaahill/inspiration-server/internal/service"
)

// InspirationHandler serves the per-user inspiration endpoints.
type InspirationHandler struct {
	inspirations *service.InspirationService
	logger       *slog.Logger
}

// NewInspirationHandler creates an InspirationHandler.
func NewInspirationHandler(inspirations *service.InspirationService, logger *slog.Logger) *InspirationHandler {
	return &InspirationHandler{
		inspirations: inspirations,
		logger:       logger,
	}
}

// pathID parses a numeric path parameter. Malformed ids are the API layer's
// validation failure: the core is only ever called with syntactically valid
// ids.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// HandleGenerate creates a new inspiration for the user.
//
// HTTP: POST /api/users/{userID}/inspirations
func (h *InspirationHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "userID")
	if !ok {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "userID must be numeric",
		})
		return
	}

	insp, err := h.inspirations.Generate(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, insp)
}

// HandleGet returns one inspiration with its tag set.
//
// HTTP: GET /api/users/{userID}/inspirations/{inspirationID}
func (h *InspirationHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "inspirationID")
	if !ok {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "inspirationID must be numeric",
		})
		return
	}

	insp, err := h.inspirations.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, insp)
}

// HandleReplaceTags replaces an inspiration's tag set with the submitted
// titles.
//
// HTTP: PUT /api/users/{userID}/inspirations/{inspirationID}
// REQUEST BODY: ["funny", "motivational"]
func (h *InspirationHandler) HandleReplaceTags(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "inspirationID")
	if !ok {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "inspirationID must be numeric",
		})
		return
	}

	var titles []string
	if err := json.NewDecoder(r.Body).Decode(&titles); err != nil {
		h.logger.Warn("invalid tag payload", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "request body must be a JSON array of tag titles",
		})
		return
	}

	insp, err := h.inspirations.ReplaceTags(r.Context(), id, titles)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, insp)
}

// HandleImage serves the stored image bytes for an inspiration.
//
// HTTP: GET /api/users/{userID}/inspirations/{inspirationID}/image
//
// http.ServeFile handles Content-Type sniffing and ranged requests; the
// service guarantees the path points inside the image store.
func (h *InspirationHandler) HandleImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "inspirationID")
	if !ok {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "inspirationID must be numeric",
		})
		return
	}

	path, err := h.inspirations.ImagePath(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	http.ServeFile(w, r, path)
}

// HandleList returns a user's inspirations, optionally filtered to one tag.
//
// HTTP: GET /api/users/{userID}/inspirations
// HTTP: GET /api/users/{userID}/inspirations?tagId=3
func (h *InspirationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "userID")
	if !ok {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "userID must be numeric",
		})
		return
	}

	if raw := r.URL.Query().Get("tagId"); raw != "" {
		tagID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:   "validation_error",
				Message: "tagId must be numeric",
			})
			return
		}

		inspirations, err := h.inspirations.ListByTag(r.Context(), tagID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, inspirations)
		return
	}

	inspirations, err := h.inspirations.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inspirations)
}
