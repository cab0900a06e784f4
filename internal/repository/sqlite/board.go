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

// BoardStore implements repository.BoardRepository.
type BoardStore struct {
	db *DB
}

var _ repository.BoardRepository = (*BoardStore)(nil)

// Create inserts the board and the owner's membership row in a single
// transaction. The owner-is-member invariant is never observable as false.
func (s *BoardStore) Create(ctx context.Context, board *model.Board) error {
	board.ID = xid.New().String()

	now := time.Now().UTC()
	board.CreatedAt = now
	board.UpdatedAt = now

	err := s.db.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO boards (id, title, description, owner_id, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			board.ID,
			board.Title,
			board.Description,
			board.OwnerID,
			board.CreatedAt,
			board.UpdatedAt,
		); err != nil {
			return fmt.Errorf("inserting board: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO board_members (board_id, user_id, added_at) VALUES (?, ?, ?)`,
			board.ID, board.OwnerID, now,
		); err != nil {
			return fmt.Errorf("inserting owner membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("sqlite: creating board: %w", err)
	}

	return nil
}

// GetByID returns the board with its member profiles loaded.
func (s *BoardStore) GetByID(ctx context.Context, id string) (*model.Board, error) {
	var b model.Board

	err := s.db.conn.QueryRowContext(ctx,
		`SELECT id, title, description, owner_id, created_at, updated_at
		 FROM boards WHERE id = ?`,
		id,
	).Scan(&b.ID, &b.Title, &b.Description, &b.OwnerID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("board", id)
		}
		return nil, fmt.Errorf("sqlite: getting board %s: %w", id, err)
	}

	members, err := s.members(ctx, id)
	if err != nil {
		return nil, err
	}
	b.Members = members

	return &b, nil
}

func (s *BoardStore) members(ctx context.Context, boardID string) ([]model.User, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT u.id, u.name, u.email, u.created_at, u.updated_at
		 FROM board_members m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.board_id = ?
		 ORDER BY m.added_at, u.id`,
		boardID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing members of board %s: %w", boardID, err)
	}
	defer rows.Close()

	var members []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning member row: %w", err)
		}
		members = append(members, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating members: %w", err)
	}

	return members, nil
}

// ListForUser returns every board the user belongs to, newest first.
// Member sets are not loaded here; the board listing view doesn't need them.
func (s *BoardStore) ListForUser(ctx context.Context, userID string) ([]model.Board, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT b.id, b.title, b.description, b.owner_id, b.created_at, b.updated_at
		 FROM boards b
		 JOIN board_members m ON m.board_id = b.id
		 WHERE m.user_id = ?
		 ORDER BY b.created_at DESC, b.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing boards for user %s: %w", userID, err)
	}
	defer rows.Close()

	boards := []model.Board{}
	for rows.Next() {
		var b model.Board
		if err := rows.Scan(&b.ID, &b.Title, &b.Description, &b.OwnerID, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning board row: %w", err)
		}
		boards = append(boards, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating boards: %w", err)
	}

	return boards, nil
}

// Update saves title and description changes.
func (s *BoardStore) Update(ctx context.Context, board *model.Board) error {
	board.UpdatedAt = time.Now().UTC()

	result, err := s.db.conn.ExecContext(ctx,
		`UPDATE boards SET title = ?, description = ?, updated_at = ? WHERE id = ?`,
		board.Title, board.Description, board.UpdatedAt, board.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating board %s: %w", board.ID, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("board", board.ID)
	}

	return nil
}

// Delete removes the board and everything under it in one transaction:
// assignee rows, tasks, lists, activity entries, memberships, then the board
// itself. A failure anywhere rolls the whole cascade back, so no orphans are
// ever reachable through a half-deleted board.
func (s *BoardStore) Delete(ctx context.Context, id string) error {
	return s.db.inTx(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM boards WHERE id = ?`, id).Scan(&exists); err != nil {
			return fmt.Errorf("sqlite: checking board %s: %w", id, err)
		}
		if exists == 0 {
			return apperror.NotFound("board", id)
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM task_assignees WHERE task_id IN (
				SELECT t.id FROM tasks t
				JOIN lists l ON l.id = t.list_id
				WHERE l.board_id = ?)`,
			id,
		); err != nil {
			return fmt.Errorf("sqlite: deleting assignees for board %s: %w", id, err)
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM tasks WHERE list_id IN (SELECT id FROM lists WHERE board_id = ?)`,
			id,
		); err != nil {
			return fmt.Errorf("sqlite: deleting tasks for board %s: %w", id, err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM lists WHERE board_id = ?`, id); err != nil {
			return fmt.Errorf("sqlite: deleting lists for board %s: %w", id, err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM activity WHERE board_id = ?`, id); err != nil {
			return fmt.Errorf("sqlite: deleting activity for board %s: %w", id, err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM board_members WHERE board_id = ?`, id); err != nil {
			return fmt.Errorf("sqlite: deleting members for board %s: %w", id, err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM boards WHERE id = ?`, id); err != nil {
			return fmt.Errorf("sqlite: deleting board %s: %w", id, err)
		}

		return nil
	})
}

// AddMember adds userID to the board's member set.
func (s *BoardStore) AddMember(ctx context.Context, boardID, userID string) error {
	_, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO board_members (board_id, user_id, added_at) VALUES (?, ?, ?)`,
		boardID, userID, time.Now().UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user is already a member of this board")
		}
		return fmt.Errorf("sqlite: adding member %s to board %s: %w", userID, boardID, err)
	}
	return nil
}

// RemoveMember removes userID from the member set. The service layer ensures
// the owner is never passed here, so the owner-is-member invariant holds.
func (s *BoardStore) RemoveMember(ctx context.Context, boardID, userID string) error {
	result, err := s.db.conn.ExecContext(ctx,
		`DELETE FROM board_members WHERE board_id = ? AND user_id = ?`,
		boardID, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: removing member %s from board %s: %w", userID, boardID, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("member", userID)
	}

	return nil
}
