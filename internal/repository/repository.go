// Package repository defines the storage interfaces the service layer
// depends on. The sqlite subpackage implements them; tests substitute
// in-memory mocks.
package repository

import (
	"context"

	"github.com/arefin/flowboard/internal/model"
)

// UserRepository persists user accounts.
type UserRepository interface {
	// Create inserts a new user. Returns apperror.ErrConflict if the email
	// is already registered.
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	// GetByEmail looks a user up by their lowercased email login key.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// BoardRepository persists boards and their membership sets.
type BoardRepository interface {
	// Create inserts the board and the owner's membership row in one
	// transaction, establishing the owner-is-member invariant.
	Create(ctx context.Context, board *model.Board) error
	// GetByID returns the board with its member profiles loaded.
	GetByID(ctx context.Context, id string) (*model.Board, error)
	// ListForUser returns every board the user is a member of.
	ListForUser(ctx context.Context, userID string) ([]model.Board, error)
	Update(ctx context.Context, board *model.Board) error
	// Delete removes the board and everything under it (lists, tasks,
	// assignee rows, members, activity) in a single transaction.
	Delete(ctx context.Context, id string) error
	// AddMember adds userID to the board's member set. Returns
	// apperror.ErrConflict if already a member.
	AddMember(ctx context.Context, boardID, userID string) error
	// RemoveMember removes userID from the member set. Returns
	// apperror.ErrNotFound if they were not a member. The caller is
	// responsible for never passing the owner.
	RemoveMember(ctx context.Context, boardID, userID string) error
}

// ListRepository persists the ordered lists of a board.
type ListRepository interface {
	Create(ctx context.Context, list *model.List) error
	GetByID(ctx context.Context, id string) (*model.List, error)
	// ListForBoard returns the board's lists ordered by
	// (position, created_at, id).
	ListForBoard(ctx context.Context, boardID string) ([]model.List, error)
	Update(ctx context.Context, list *model.List) error
	// Delete removes the list and its tasks in one transaction.
	Delete(ctx context.Context, id string) error
}

// TaskRepository persists tasks, their ordering, and their assignee sets.
type TaskRepository interface {
	// Create inserts the task and its initial assignees (the creator) in
	// one transaction.
	Create(ctx context.Context, task *model.Task, assigneeIDs ...string) error
	// GetByID returns the task with its assignees loaded.
	GetByID(ctx context.Context, id string) (*model.Task, error)
	// ListForList returns the list's tasks ordered by
	// (position, created_at, id), assignees included.
	ListForList(ctx context.Context, listID string) ([]model.Task, error)
	Update(ctx context.Context, task *model.Task) error
	// Move atomically re-parents the task to targetListID at position.
	// The target list must belong to the same board as the current list;
	// cross-board moves return apperror.ErrValidation. No intermediate
	// state is ever observable.
	Move(ctx context.Context, taskID, targetListID string, position int) error
	Delete(ctx context.Context, id string) error
	// AddAssignee adds userID to the task's assignee set. Returns
	// added=false when the user was already assigned (a no-op, not an error).
	AddAssignee(ctx context.Context, taskID, userID string) (added bool, err error)
}

// ActivityRepository persists the append-only activity log.
type ActivityRepository interface {
	Create(ctx context.Context, entry *model.ActivityEntry) error
	// ListForBoard returns entries most recent first, with actor name and
	// email denormalized onto each entry.
	ListForBoard(ctx context.Context, boardID string) ([]model.ActivityEntry, error)
}
