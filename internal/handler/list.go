package handler

import (
	"log/slog"
	"net/http"

	"github.com/arefin/flowboard/internal/service"
)

// ListHandler exposes list CRUD under boards.
type ListHandler struct {
	lists  *service.ListService
	logger *slog.Logger
}

func NewListHandler(lists *service.ListService, logger *slog.Logger) *ListHandler {
	return &ListHandler{lists: lists, logger: logger}
}

type createListRequest struct {
	Title    string `json:"title"`
	Position int    `json:"position"`
}

type updateListRequest struct {
	Title    string `json:"title"`
	Position *int   `json:"position"`
}

// HandleListForBoard returns the board's lists in display order.
//
// HTTP: GET /api/boards/{id}/lists
func (h *ListHandler) HandleListForBoard(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}

	lists, err := h.lists.ListForBoard(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, lists)
}

// HandleCreate adds a list to a board.
//
// HTTP: POST /api/boards/{id}/lists
func (h *ListHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}

	var req createListRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	list, err := h.lists.Create(r.Context(), userID, r.PathValue("id"), req.Title, req.Position)
	if err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("list created",
		slog.String("listID", list.ID),
		slog.String("boardID", list.BoardID),
	)

	writeJSON(w, http.StatusCreated, list)
}

// HandleUpdate renames a list or changes its position. Omitted fields keep
// their current value.
//
// HTTP: PATCH /api/lists/{id}
func (h *ListHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}

	var req updateListRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	list, err := h.lists.Update(r.Context(), userID, r.PathValue("id"), req.Title, req.Position)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// HandleDelete removes a list and its tasks.
//
// HTTP: DELETE /api/lists/{id}
func (h *ListHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}

	if err := h.lists.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
