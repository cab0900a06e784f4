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

// ListStore implements repository.ListRepository.
type ListStore struct {
	db *DB
}

var _ repository.ListRepository = (*ListStore)(nil)

func (s *ListStore) Create(ctx context.Context, list *model.List) error {
	list.ID = xid.New().String()

	now := time.Now().UTC()
	list.CreatedAt = now
	list.UpdatedAt = now

	_, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO lists (id, board_id, title, position, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		list.ID,
		list.BoardID,
		list.Title,
		list.Position,
		list.CreatedAt,
		list.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting list: %w", err)
	}

	return nil
}

func (s *ListStore) GetByID(ctx context.Context, id string) (*model.List, error) {
	var l model.List

	err := s.db.conn.QueryRowContext(ctx,
		`SELECT id, board_id, title, position, created_at, updated_at
		 FROM lists WHERE id = ?`,
		id,
	).Scan(&l.ID, &l.BoardID, &l.Title, &l.Position, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("list", id)
		}
		return nil, fmt.Errorf("sqlite: getting list %s: %w", id, err)
	}

	return &l, nil
}

// ListForBoard returns the board's lists in display order. Ties on position
// resolve by creation time then id, so the sequence is deterministic.
func (s *ListStore) ListForBoard(ctx context.Context, boardID string) ([]model.List, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT id, board_id, title, position, created_at, updated_at
		 FROM lists
		 WHERE board_id = ?
		 ORDER BY position, created_at, id`,
		boardID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing lists for board %s: %w", boardID, err)
	}
	defer rows.Close()

	lists := []model.List{}
	for rows.Next() {
		var l model.List
		if err := rows.Scan(&l.ID, &l.BoardID, &l.Title, &l.Position, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning list row: %w", err)
		}
		lists = append(lists, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating lists: %w", err)
	}

	return lists, nil
}

func (s *ListStore) Update(ctx context.Context, list *model.List) error {
	list.UpdatedAt = time.Now().UTC()

	result, err := s.db.conn.ExecContext(ctx,
		`UPDATE lists SET title = ?, position = ?, updated_at = ? WHERE id = ?`,
		list.Title, list.Position, list.UpdatedAt, list.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating list %s: %w", list.ID, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("list", list.ID)
	}

	return nil
}

// Delete removes the list and its tasks (with their assignee rows) in one
// transaction.
func (s *ListStore) Delete(ctx context.Context, id string) error {
	return s.db.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM task_assignees WHERE task_id IN (SELECT id FROM tasks WHERE list_id = ?)`,
			id,
		); err != nil {
			return fmt.Errorf("sqlite: deleting assignees for list %s: %w", id, err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE list_id = ?`, id); err != nil {
			return fmt.Errorf("sqlite: deleting tasks for list %s: %w", id, err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM lists WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("sqlite: deleting list %s: %w", id, err)
		}

		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("sqlite: checking rows affected: %w", err)
		}
		if n == 0 {
			return apperror.NotFound("list", id)
		}

		return nil
	})
}
