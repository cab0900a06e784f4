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

const MaxListTitleLength = 100

// ListService handles the ordered lists of a board.
type ListService struct {
	lists  repository.ListRepository
	boards repository.BoardRepository
	users  repository.UserRepository
	rec    recorder
	logger *slog.Logger
}

func NewListService(
	lists repository.ListRepository,
	boards repository.BoardRepository,
	users repository.UserRepository,
	activity repository.ActivityRepository,
	notifier Notifier,
	logger *slog.Logger,
) *ListService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &ListService{
		lists:  lists,
		boards: boards,
		users:  users,
		rec:    recorder{activity: activity, notifier: notifier, logger: logger},
		logger: logger,
	}
}

// Create adds a list to the board at the given position. Members only.
// Position is taken as supplied; duplicates are allowed and resolve by the
// deterministic secondary sort.
func (s *ListService) Create(ctx context.Context, actorID, boardID, title string, position int) (*model.List, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "list title is required")
	}
	if len(title) > MaxListTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("list title must be %d characters or less", MaxListTitleLength))
	}

	board, err := s.boards.GetByID(ctx, boardID)
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

	list := &model.List{
		BoardID:  boardID,
		Title:    title,
		Position: position,
	}

	if err := s.lists.Create(ctx, list); err != nil {
		return nil, fmt.Errorf("creating list: %w", err)
	}

	s.rec.record(ctx, &model.ActivityEntry{
		BoardID: boardID,
		ActorID: actorID,
		Action:  fmt.Sprintf("%s created list %q", actor.Name, title),
		ListID:  list.ID,
	})

	return list, nil
}

// ListForBoard returns the board's lists in display order. Members only.
func (s *ListService) ListForBoard(ctx context.Context, actorID, boardID string) ([]model.List, error) {
	board, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireView(actorID, board); err != nil {
		return nil, err
	}

	lists, err := s.lists.ListForBoard(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("listing lists: %w", err)
	}
	return lists, nil
}

// Update renames and/or repositions a list. An empty title means "keep the
// current title"; a nil position means "keep the current position".
// Members only.
func (s *ListService) Update(ctx context.Context, actorID, listID, title string, position *int) (*model.List, error) {
	list, err := s.lists.GetByID(ctx, listID)
	if err != nil {
		return nil, err
	}

	board, err := s.boards.GetByID(ctx, list.BoardID)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireEdit(actorID, board); err != nil {
		return nil, err
	}

	oldTitle := list.Title
	if title = strings.TrimSpace(title); title != "" {
		if len(title) > MaxListTitleLength {
			return nil, apperror.ValidationFailed("title",
				fmt.Sprintf("list title must be %d characters or less", MaxListTitleLength))
		}
		list.Title = title
	}
	if position != nil {
		list.Position = *position
	}

	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("resolving actor: %w", err)
	}

	if err := s.lists.Update(ctx, list); err != nil {
		return nil, fmt.Errorf("updating list: %w", err)
	}

	action := fmt.Sprintf("%s moved list %q", actor.Name, list.Title)
	if list.Title != oldTitle {
		action = fmt.Sprintf("%s renamed list %q to %q", actor.Name, oldTitle, list.Title)
	}
	s.rec.record(ctx, &model.ActivityEntry{
		BoardID: list.BoardID,
		ActorID: actorID,
		Action:  action,
		ListID:  list.ID,
	})

	return list, nil
}

// Delete removes the list and its tasks. Members only. The cascade is one
// repository transaction.
func (s *ListService) Delete(ctx context.Context, actorID, listID string) error {
	list, err := s.lists.GetByID(ctx, listID)
	if err != nil {
		return err
	}

	board, err := s.boards.GetByID(ctx, list.BoardID)
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

	if err := s.lists.Delete(ctx, listID); err != nil {
		return fmt.Errorf("deleting list: %w", err)
	}

	s.rec.record(ctx, &model.ActivityEntry{
		BoardID: list.BoardID,
		ActorID: actorID,
		Action:  fmt.Sprintf("%s deleted list %q", actor.Name, list.Title),
	})

	return nil
}
