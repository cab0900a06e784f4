package handler

import (
	"log/slog"
	"net/http"

	"github.com/arefin/flowboard/internal/apperror"
	"github.com/arefin/flowboard/internal/auth"
	"github.com/arefin/flowboard/internal/service"
)

// BoardHandler exposes the board aggregate: CRUD plus membership changes.
type BoardHandler struct {
	boards *service.BoardService
	logger *slog.Logger
}

func NewBoardHandler(boards *service.BoardService, logger *slog.Logger) *BoardHandler {
	return &BoardHandler{boards: boards, logger: logger}
}

type createBoardRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// updateBoardRequest distinguishes "description absent" from "description
// empty": a nil pointer keeps the current value, an empty string clears it.
type updateBoardRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

type addMemberRequest struct {
	Email string `json:"email"`
}

// actorID reads the authenticated user set by the auth middleware. Routes
// using it are always behind RequireAuth, so a miss means a wiring bug.
func actorID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return "", false
	}
	return userID, true
}

// HandleList returns the boards the user owns or belongs to.
//
// HTTP: GET /api/boards
func (h *BoardHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}

	boards, err := h.boards.ListForUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, boards)
}

// HandleCreate creates a board with the caller as owner and first member.
//
// HTTP: POST /api/boards
func (h *BoardHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}

	var req createBoardRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	board, err := h.boards.Create(r.Context(), userID, req.Title, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("board created",
		slog.String("boardID", board.ID),
		slog.String("ownerID", userID),
	)

	writeJSON(w, http.StatusCreated, board)
}

// HandleGet returns one board with its members.
//
// HTTP: GET /api/boards/{id}
func (h *BoardHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}

	board, err := h.boards.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, board)
}

// HandleUpdate renames the board or edits its description.
//
// HTTP: PATCH /api/boards/{id}
func (h *BoardHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}

	var req updateBoardRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	board, err := h.boards.Update(r.Context(), userID, r.PathValue("id"), req.Title, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, board)
}

// HandleDelete removes the board and everything under it. Owner only.
//
// HTTP: DELETE /api/boards/{id}
func (h *BoardHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}

	if err := h.boards.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleAddMember adds a registered user to the board by email. Owner only.
//
// HTTP: POST /api/boards/{id}/members
func (h *BoardHandler) HandleAddMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}

	var req addMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	board, err := h.boards.AddMember(r.Context(), userID, r.PathValue("id"), req.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, board)
}

// HandleRemoveMember removes a member. The owner can remove anyone but
// themselves; other members can only remove themselves.
//
// HTTP: DELETE /api/boards/{id}/members/{userID}
func (h *BoardHandler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}

	board, err := h.boards.RemoveMember(r.Context(), userID, r.PathValue("id"), r.PathValue("userID"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, board)
}
