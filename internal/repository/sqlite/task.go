package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/arefin/flowboard/internal/apperror"
	"github.com/arefin/flowboard/internal/model"
	"github.com/arefin/flowboard/internal/repository"
)

// TaskStore implements repository.TaskRepository.
type TaskStore struct {
	db *DB
}

var _ repository.TaskRepository = (*TaskStore)(nil)

// Create inserts the task and its initial assignees in one transaction, so a
// freshly created task is never observable without its creator assigned.
func (s *TaskStore) Create(ctx context.Context, task *model.Task, assigneeIDs ...string) error {
	task.ID = xid.New().String()

	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	err := s.db.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO tasks (id, list_id, title, description, position, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			task.ID,
			task.ListID,
			task.Title,
			task.Description,
			task.Position,
			task.CreatedAt,
			task.UpdatedAt,
		); err != nil {
			return fmt.Errorf("inserting task: %w", err)
		}

		for _, userID := range assigneeIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO task_assignees (task_id, user_id) VALUES (?, ?)`,
				task.ID, userID,
			); err != nil {
				return fmt.Errorf("inserting assignee %s: %w", userID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("sqlite: creating task: %w", err)
	}

	return nil
}

// GetByID returns the task with its assignees loaded.
func (s *TaskStore) GetByID(ctx context.Context, id string) (*model.Task, error) {
	var t model.Task

	err := s.db.conn.QueryRowContext(ctx,
		`SELECT id, list_id, title, description, position, created_at, updated_at
		 FROM tasks WHERE id = ?`,
		id,
	).Scan(&t.ID, &t.ListID, &t.Title, &t.Description, &t.Position, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("task", id)
		}
		return nil, fmt.Errorf("sqlite: getting task %s: %w", id, err)
	}

	assignees, err := s.assignees(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Assignees = assignees

	return &t, nil
}

func (s *TaskStore) assignees(ctx context.Context, taskID string) ([]model.User, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT u.id, u.name, u.email, u.created_at, u.updated_at
		 FROM task_assignees a
		 JOIN users u ON u.id = a.user_id
		 WHERE a.task_id = ?
		 ORDER BY u.id`,
		taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing assignees of task %s: %w", taskID, err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning assignee row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating assignees: %w", err)
	}

	return users, nil
}

// ListForList returns the list's tasks in display order with assignees
// loaded. Ties on position resolve by creation time then id.
func (s *TaskStore) ListForList(ctx context.Context, listID string) ([]model.Task, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT id, list_id, title, description, position, created_at, updated_at
		 FROM tasks
		 WHERE list_id = ?
		 ORDER BY position, created_at, id`,
		listID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing tasks for list %s: %w", listID, err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(&t.ID, &t.ListID, &t.Title, &t.Description, &t.Position, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning task row: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tasks: %w", err)
	}

	for i := range tasks {
		assignees, err := s.assignees(ctx, tasks[i].ID)
		if err != nil {
			return nil, err
		}
		tasks[i].Assignees = assignees
	}

	return tasks, nil
}

// Update saves title, description, and position. ListID is deliberately not
// written here; re-parenting goes through Move so it stays atomic with the
// same-board check.
func (s *TaskStore) Update(ctx context.Context, task *model.Task) error {
	task.UpdatedAt = time.Now().UTC()

	result, err := s.db.conn.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, position = ?, updated_at = ? WHERE id = ?`,
		task.Title, task.Description, task.Position, task.UpdatedAt, task.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating task %s: %w", task.ID, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("task", task.ID)
	}

	return nil
}

// Move atomically re-parents the task to targetListID at the given position.
// The whole operation is a single transaction: the target list is verified
// to exist and to belong to the same board as the task's current list, then
// list_id and position change in one UPDATE. A concurrent reader sees the
// task in either the old list or the new one, never in neither or both.
func (s *TaskStore) Move(ctx context.Context, taskID, targetListID string, position int) error {
	return s.db.inTx(ctx, func(tx *sql.Tx) error {
		var currentBoard string
		err := tx.QueryRowContext(ctx,
			`SELECT l.board_id FROM tasks t JOIN lists l ON l.id = t.list_id WHERE t.id = ?`,
			taskID,
		).Scan(&currentBoard)
		if err != nil {
			if err == sql.ErrNoRows {
				return apperror.NotFound("task", taskID)
			}
			return fmt.Errorf("sqlite: resolving board for task %s: %w", taskID, err)
		}

		var targetBoard string
		err = tx.QueryRowContext(ctx,
			`SELECT board_id FROM lists WHERE id = ?`, targetListID,
		).Scan(&targetBoard)
		if err != nil {
			if err == sql.ErrNoRows {
				return apperror.NotFound("list", targetListID)
			}
			return fmt.Errorf("sqlite: resolving target list %s: %w", targetListID, err)
		}

		if currentBoard != targetBoard {
			return apperror.ValidationFailed("targetListId", "target list belongs to a different board")
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE tasks SET list_id = ?, position = ?, updated_at = ? WHERE id = ?`,
			targetListID, position, time.Now().UTC(), taskID,
		); err != nil {
			return fmt.Errorf("sqlite: moving task %s: %w", taskID, err)
		}

		return nil
	})
}

// Delete removes the task and its assignee rows in one transaction.
func (s *TaskStore) Delete(ctx context.Context, id string) error {
	return s.db.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM task_assignees WHERE task_id = ?`, id); err != nil {
			return fmt.Errorf("sqlite: deleting assignees for task %s: %w", id, err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("sqlite: deleting task %s: %w", id, err)
		}

		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("sqlite: checking rows affected: %w", err)
		}
		if n == 0 {
			return apperror.NotFound("task", id)
		}

		return nil
	})
}

// AddAssignee adds userID to the task's assignee set. INSERT OR IGNORE makes
// the operation idempotent; added=false means the user was already assigned.
func (s *TaskStore) AddAssignee(ctx context.Context, taskID, userID string) (bool, error) {
	result, err := s.db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO task_assignees (task_id, user_id) VALUES (?, ?)`,
		taskID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: assigning user %s to task %s: %w", userID, taskID, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}

	return n > 0, nil
}
