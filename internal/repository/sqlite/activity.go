package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/arefin/flowboard/internal/model"
	"github.com/arefin/flowboard/internal/repository"
)

// ActivityStore implements repository.ActivityRepository.
//
// The activity table is append-only: there is no Update or Delete here.
// Entries are removed only by the board delete cascade in BoardStore.
type ActivityStore struct {
	db *DB
}

var _ repository.ActivityRepository = (*ActivityStore)(nil)

func (s *ActivityStore) Create(ctx context.Context, entry *model.ActivityEntry) error {
	entry.ID = xid.New().String()
	entry.CreatedAt = time.Now().UTC()

	_, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO activity (id, board_id, actor_id, action, task_id, list_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.BoardID,
		entry.ActorID,
		entry.Action,
		entry.TaskID,
		entry.ListID,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting activity entry: %w", err)
	}

	return nil
}

// ListForBoard returns the board's entries most recent first, with the
// actor's name and email joined in so clients render the log without extra
// lookups.
func (s *ActivityStore) ListForBoard(ctx context.Context, boardID string) ([]model.ActivityEntry, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT a.id, a.board_id, a.actor_id, u.name, u.email, a.action, a.task_id, a.list_id, a.created_at
		 FROM activity a
		 JOIN users u ON u.id = a.actor_id
		 WHERE a.board_id = ?
		 ORDER BY a.created_at DESC, a.id DESC`,
		boardID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing activity for board %s: %w", boardID, err)
	}
	defer rows.Close()

	entries := []model.ActivityEntry{}
	for rows.Next() {
		var e model.ActivityEntry
		if err := rows.Scan(
			&e.ID, &e.BoardID, &e.ActorID, &e.ActorName, &e.ActorEmail,
			&e.Action, &e.TaskID, &e.ListID, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning activity row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating activity: %w", err)
	}

	return entries, nil
}
