package handler

import (
	"log/slog"
	"net/http"

	"github.com/arefin/flowboard/internal/service"
)

// ActivityHandler serves the per-board activity feed.
type ActivityHandler struct {
	activity *service.ActivityService
	logger   *slog.Logger
}

func NewActivityHandler(activity *service.ActivityService, logger *slog.Logger) *ActivityHandler {
	return &ActivityHandler{activity: activity, logger: logger}
}

// HandleListForBoard returns the board's activity entries, newest first.
//
// HTTP: GET /api/boards/{id}/activity
func (h *ActivityHandler) HandleListForBoard(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}

	entries, err := h.activity.ListForBoard(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}
