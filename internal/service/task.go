package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/arefin/flowboard/internal/apperror"
	"github.com/arefin/flowboard/internal/model"
	"github.com/arefin/flowboard/internal/policy"
	"github.com/arefin/flowboard/internal/repository"
)

const (
	MaxTaskTitleLength       = 100
	MaxTaskDescriptionLength = 5000
)

// TaskService handles tasks: creation, ordering, cross-list moves,
// assignment, and deletion.
type TaskService struct {
	tasks    repository.TaskRepository
	lists    repository.ListRepository
	boards   repository.BoardRepository
	users    repository.UserRepository
	notifier Notifier
	rec      recorder
	logger   *slog.Logger
}

func NewTaskService(
	tasks repository.TaskRepository,
	lists repository.ListRepository,
	boards repository.BoardRepository,
	users repository.UserRepository,
	activity repository.ActivityRepository,
	notifier Notifier,
	logger *slog.Logger,
) *TaskService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &TaskService{
		tasks:    tasks,
		lists:    lists,
		boards:   boards,
		users:    users,
		notifier: notifier,
		rec:      recorder{activity: activity, notifier: notifier, logger: logger},
		logger:   logger,
	}
}

// boardForList resolves the board a list belongs to, checking existence of
// both along the way.
func (s *TaskService) boardForList(ctx context.Context, listID string) (*model.List, *model.Board, error) {
	list, err := s.lists.GetByID(ctx, listID)
	if err != nil {
		return nil, nil, err
	}
	board, err := s.boards.GetByID(ctx, list.BoardID)
	if err != nil {
		return nil, nil, err
	}
	return list, board, nil
}

// boardForTask resolves the board a task belongs to via its list.
func (s *TaskService) boardForTask(ctx context.Context, taskID string) (*model.Task, *model.Board, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	list, err := s.lists.GetByID(ctx, task.ListID)
	if err != nil {
		return nil, nil, err
	}
	board, err := s.boards.GetByID(ctx, list.BoardID)
	if err != nil {
		return nil, nil, err
	}
	return task, board, nil
}

// Create adds a task to a list at the given position. Members only. The
// creator is auto-assigned in the same repository transaction that creates
// the task.
//
// The taskCreated event goes to the board channel only, never globally,
// and the activity entry is written before its
// activityAdded event.
func (s *TaskService) Create(ctx context.Context, actorID, listID, title, description string, position int) (*model.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "task title is required")
	}
	if len(title) > MaxTaskTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("task title must be %d characters or less", MaxTaskTitleLength))
	}
	if len(description) > MaxTaskDescriptionLength {
		return nil, apperror.ValidationFailed("description",
			fmt.Sprintf("description must be %d characters or less", MaxTaskDescriptionLength))
	}

	_, board, err := s.boardForList(ctx, listID)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireEdit(actorID, board); err != nil {
		return nil, err
	}

	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("resolving actor: %w", err)
	}

	task := &model.Task{
		ListID:      listID,
		Title:       title,
		Description: strings.TrimSpace(description),
		Position:    position,
	}

	if err := s.tasks.Create(ctx, task, actorID); err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}

	// Reload so Assignees includes the auto-assigned creator.
	task, err = s.tasks.GetByID(ctx, task.ID)
	if err != nil {
		return nil, fmt.Errorf("reloading task: %w", err)
	}

	s.notifier.TaskCreated(board.ID, task)

	s.rec.record(ctx, &model.ActivityEntry{
		BoardID: board.ID,
		ActorID: actorID,
		Action:  fmt.Sprintf("%s created the task %q", actor.Name, title),
		TaskID:  task.ID,
	})

	return task, nil
}

// ListForList returns the list's tasks in display order. Members only.
func (s *TaskService) ListForList(ctx context.Context, actorID, listID string) ([]model.Task, error) {
	_, board, err := s.boardForList(ctx, listID)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireView(actorID, board); err != nil {
		return nil, err
	}

	tasks, err := s.tasks.ListForList(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}

// Update edits title, description, and/or position within the current list.
// Nil pointers mean "keep the current value"; an empty description pointer
// clears the description. Members only.
func (s *TaskService) Update(ctx context.Context, actorID, taskID string, title string, description *string, position *int) (*model.Task, error) {
	task, board, err := s.boardForTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireEdit(actorID, board); err != nil {
		return nil, err
	}

	oldTitle := task.Title
	if title = strings.TrimSpace(title); title != "" {
		if len(title) > MaxTaskTitleLength {
			return nil, apperror.ValidationFailed("title",
				fmt.Sprintf("task title must be %d characters or less", MaxTaskTitleLength))
		}
		task.Title = title
	}
	if description != nil {
		if len(*description) > MaxTaskDescriptionLength {
			return nil, apperror.ValidationFailed("description",
				fmt.Sprintf("description must be %d characters or less", MaxTaskDescriptionLength))
		}
		task.Description = strings.TrimSpace(*description)
	}
	if position != nil {
		task.Position = *position
	}

	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("resolving actor: %w", err)
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("updating task: %w", err)
	}

	action := fmt.Sprintf("%s updated the task %q", actor.Name, task.Title)
	if task.Title != oldTitle {
		action = fmt.Sprintf("%s renamed task %q to %q", actor.Name, oldTitle, task.Title)
	}
	s.rec.record(ctx, &model.ActivityEntry{
		BoardID: board.ID,
		ActorID: actorID,
		Action:  action,
		TaskID:  task.ID,
	})

	return task, nil
}

// Move re-parents the task to the target list at the given position.
// Members only. The repository performs the re-parenting atomically and
// rejects cross-board targets; no caller ever observes the task in neither
// or both lists.
func (s *TaskService) Move(ctx context.Context, actorID, taskID, targetListID string, position int) (*model.Task, error) {
	task, board, err := s.boardForTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireEdit(actorID, board); err != nil {
		return nil, err
	}

	target, err := s.lists.GetByID(ctx, targetListID)
	if err != nil {
		return nil, err
	}

	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("resolving actor: %w", err)
	}

	if err := s.tasks.Move(ctx, taskID, targetListID, position); err != nil {
		return nil, err
	}

	moved, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("reloading task: %w", err)
	}

	s.rec.record(ctx, &model.ActivityEntry{
		BoardID: board.ID,
		ActorID: actorID,
		Action:  fmt.Sprintf("%s moved task %q to %q", actor.Name, task.Title, target.Title),
		TaskID:  taskID,
		ListID:  targetListID,
	})

	return moved, nil
}

// Delete removes the task. Members only.
func (s *TaskService) Delete(ctx context.Context, actorID, taskID string) error {
	task, board, err := s.boardForTask(ctx, taskID)
	if err != nil {
		return err
	}
	if err := policy.RequireEdit(actorID, board); err != nil {
		return err
	}

	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return fmt.Errorf("resolving actor: %w", err)
	}

	if err := s.tasks.Delete(ctx, taskID); err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}

	s.rec.record(ctx, &model.ActivityEntry{
		BoardID: board.ID,
		ActorID: actorID,
		Action:  fmt.Sprintf("%s deleted the task %q", actor.Name, task.Title),
	})

	return nil
}

// Assign adds a user to the task's assignee set. Members only; the target
// user must exist. Assignment is idempotent: re-assigning an already
// assigned user is a no-op with no activity entry and no event.
func (s *TaskService) Assign(ctx context.Context, actorID, taskID, userID string) (*model.Task, error) {
	task, board, err := s.boardForTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireEdit(actorID, board); err != nil {
		return nil, err
	}

	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("resolving actor: %w", err)
	}

	added, err := s.tasks.AddAssignee(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}

	if added {
		s.rec.record(ctx, &model.ActivityEntry{
			BoardID: board.ID,
			ActorID: actorID,
			Action:  fmt.Sprintf("%s assigned %q to task %q", actor.Name, target.Name, task.Title),
			TaskID:  taskID,
		})
	}

	return s.tasks.GetByID(ctx, taskID)
}
