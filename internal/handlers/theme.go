package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/chepyr/task-dashboard/internal/models"
	"github.com/chepyr/task-dashboard/internal/theme"
)

type themeResponse struct {
	Theme models.Theme `json:"theme"`
}

/*
handles routes:
- GET /theme
- PUT /theme {"theme": "dark"|"light"}
*/
func (h *Handler) HandleTheme(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		sendJSON(w, http.StatusOK, themeResponse{Theme: h.Theme.Current()})
	case http.MethodPut:
		if !isJSONContentType(r) {
			sendError(w, "Content-Type must be application/json", http.StatusBadRequest)
			return
		}
		var input themeResponse
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10)).Decode(&input); err != nil {
			sendError(w, "Invalid JSON body", http.StatusBadRequest)
			return
		}
		err := h.Theme.Set(r.Context(), input.Theme)
		if errors.Is(err, theme.ErrUnknownTheme) {
			sendError(w, theme.ErrUnknownTheme.Error(), http.StatusBadRequest)
			return
		}
		if err != nil {
			log.WithError(err).Error("save theme")
			sendError(w, "Failed to save theme", http.StatusInternalServerError)
			return
		}
		sendJSON(w, http.StatusOK, themeResponse{Theme: input.Theme})
	default:
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// POST /theme/toggle
func (h *Handler) HandleThemeToggle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	t, err := h.Theme.Toggle(r.Context())
	if err != nil {
		log.WithError(err).Error("toggle theme")
		sendError(w, "Failed to save theme", http.StatusInternalServerError)
		return
	}
	sendJSON(w, http.StatusOK, themeResponse{Theme: t})
}
