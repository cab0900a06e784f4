package handler

import (
	"log/slog"
	"net/http"

	"github.com/arefin/flowboard/internal/service"
)

// TaskHandler exposes task CRUD, cross-list moves, and assignment.
type TaskHandler struct {
	tasks  *service.TaskService
	logger *slog.Logger
}

func NewTaskHandler(tasks *service.TaskService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, logger: logger}
}

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Position    int    `json:"position"`
}

type updateTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Position    *int    `json:"position"`
}

type moveTaskRequest struct {
	TargetListID string `json:"targetListId"`
	Position     int    `json:"position"`
}

type assignTaskRequest struct {
	UserID string `json:"userId"`
}

// HandleListForList returns the list's tasks in display order.
//
// HTTP: GET /api/lists/{id}/tasks
func (h *TaskHandler) HandleListForList(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}

	tasks, err := h.tasks.ListForList(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tasks)
}

// HandleCreate adds a task to a list. The creator ends up in the assignee
// set.
//
// HTTP: POST /api/lists/{id}/tasks
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}

	var req createTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	task, err := h.tasks.Create(r.Context(), userID, r.PathValue("id"), req.Title, req.Description, req.Position)
	if err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("task created",
		slog.String("taskID", task.ID),
		slog.String("listID", task.ListID),
	)

	writeJSON(w, http.StatusCreated, task)
}

// HandleUpdate edits a task in place. Omitted fields keep their current
// value; an explicit empty description clears it.
//
// HTTP: PATCH /api/tasks/{id}
func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	task, err := h.tasks.Update(r.Context(), userID, r.PathValue("id"), req.Title, req.Description, req.Position)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// HandleMove re-parents a task onto another list of the same board.
//
// HTTP: POST /api/tasks/{id}/move
func (h *TaskHandler) HandleMove(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}

	var req moveTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	task, err := h.tasks.Move(r.Context(), userID, r.PathValue("id"), req.TargetListID, req.Position)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// HandleAssign adds a user to the task's assignee set. Re-assigning an
// already assigned user succeeds without side effects.
//
// HTTP: POST /api/tasks/{id}/assign
func (h *TaskHandler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}

	var req assignTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	task, err := h.tasks.Assign(r.Context(), userID, r.PathValue("id"), req.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// HandleDelete removes a task.
//
// HTTP: DELETE /api/tasks/{id}
func (h *TaskHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}

	if err := h.tasks.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
