// Package service contains the business logic layer: validation,
// authorization, activity logging, and event publication. Handlers stay
// HTTP-only; repositories stay SQL-only.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arefin/flowboard/internal/model"
	"github.com/arefin/flowboard/internal/policy"
	"github.com/arefin/flowboard/internal/repository"
)

// recorder appends activity entries and broadcasts them. It is embedded in
// every mutating service so they all share the same failure policy:
//
// A failed log write never fails the mutation that triggered it: the state
// change already happened and reporting failure would lie to the caller.
// The failure is made observable with a Warn log, and the activityAdded
// event is NOT broadcast, so an event never exists without its entry.
type recorder struct {
	activity repository.ActivityRepository
	notifier Notifier
	logger   *slog.Logger
}

// record appends an entry and, on success, publishes activityAdded to the
// board channel. Entry first, broadcast second, never the other way round.
func (r *recorder) record(ctx context.Context, entry *model.ActivityEntry) {
	if err := r.activity.Create(ctx, entry); err != nil {
		r.logger.Warn("activity log write failed",
			slog.String("boardId", entry.BoardID),
			slog.String("actorId", entry.ActorID),
			slog.String("action", entry.Action),
			slog.String("error", err.Error()),
		)
		return
	}

	r.notifier.ActivityAdded(entry.BoardID, entry)
}

// ActivityService reads the activity log.
type ActivityService struct {
	activity repository.ActivityRepository
	boards   repository.BoardRepository
	logger   *slog.Logger
}

func NewActivityService(
	activity repository.ActivityRepository,
	boards repository.BoardRepository,
	logger *slog.Logger,
) *ActivityService {
	return &ActivityService{
		activity: activity,
		boards:   boards,
		logger:   logger,
	}
}

// ListForBoard returns the board's activity entries, most recent first.
// Members only.
func (s *ActivityService) ListForBoard(ctx context.Context, actorID, boardID string) ([]model.ActivityEntry, error) {
	board, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireView(actorID, board); err != nil {
		return nil, err
	}

	entries, err := s.activity.ListForBoard(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("listing activity: %w", err)
	}

	return entries, nil
}
