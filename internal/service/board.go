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

const MaxBoardTitleLength = 100

// BoardService handles board lifecycle and membership.
type BoardService struct {
	boards repository.BoardRepository
	users  repository.UserRepository
	rec    recorder
	logger *slog.Logger
}

func NewBoardService(
	boards repository.BoardRepository,
	users repository.UserRepository,
	activity repository.ActivityRepository,
	notifier Notifier,
	logger *slog.Logger,
) *BoardService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &BoardService{
		boards: boards,
		users:  users,
		rec:    recorder{activity: activity, notifier: notifier, logger: logger},
		logger: logger,
	}
}

// SetNotifier swaps the notifier after construction. The hub needs this
// service as its join authorizer before it exists to be passed in, so the
// wiring layer constructs the service first and attaches the hub here.
func (s *BoardService) SetNotifier(n Notifier) {
	if n == nil {
		n = noopNotifier{}
	}
	s.rec.notifier = n
}

// Create makes a new board owned by the actor. The creator becomes owner and
// first member in the same repository transaction. Any authenticated user
// may create boards; no policy check applies.
func (s *BoardService) Create(ctx context.Context, actorID, title, description string) (*model.Board, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "board title is required")
	}
	if len(title) > MaxBoardTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("board title must be %d characters or less", MaxBoardTitleLength))
	}

	board := &model.Board{
		Title:       title,
		Description: strings.TrimSpace(description),
		OwnerID:     actorID,
	}

	if err := s.boards.Create(ctx, board); err != nil {
		return nil, fmt.Errorf("creating board: %w", err)
	}

	s.logger.Info("board created",
		slog.String("boardId", board.ID),
		slog.String("ownerId", actorID),
	)

	// Reload so Members reflects the owner row inserted by the repository.
	return s.boards.GetByID(ctx, board.ID)
}

// Get returns the board with its members. Members only.
func (s *BoardService) Get(ctx context.Context, actorID, boardID string) (*model.Board, error) {
	board, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireView(actorID, board); err != nil {
		return nil, err
	}
	return board, nil
}

// ListForUser returns every board the actor is a member of.
func (s *BoardService) ListForUser(ctx context.Context, actorID string) ([]model.Board, error) {
	boards, err := s.boards.ListForUser(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("listing boards: %w", err)
	}
	return boards, nil
}

// Update renames the board and/or changes its description. An empty title
// means "keep the current title"; a nil description means "keep the current
// description" and an empty one clears it. Members only.
func (s *BoardService) Update(ctx context.Context, actorID, boardID, title string, description *string) (*model.Board, error) {
	board, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireEdit(actorID, board); err != nil {
		return nil, err
	}

	oldTitle := board.Title
	if title = strings.TrimSpace(title); title != "" {
		if len(title) > MaxBoardTitleLength {
			return nil, apperror.ValidationFailed("title",
				fmt.Sprintf("board title must be %d characters or less", MaxBoardTitleLength))
		}
		board.Title = title
	}
	if description != nil {
		board.Description = strings.TrimSpace(*description)
	}

	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("resolving actor: %w", err)
	}

	if err := s.boards.Update(ctx, board); err != nil {
		return nil, fmt.Errorf("updating board: %w", err)
	}

	action := fmt.Sprintf("%s updated the board", actor.Name)
	if board.Title != oldTitle {
		action = fmt.Sprintf("%s renamed the board %q to %q", actor.Name, oldTitle, board.Title)
	}
	s.rec.record(ctx, &model.ActivityEntry{
		BoardID: board.ID,
		ActorID: actorID,
		Action:  action,
	})

	return board, nil
}

// Delete removes the board and everything under it. Owner only. The cascade
// (lists, tasks, assignees, members, activity) is one repository
// transaction; a failure leaves the board fully intact.
//
// No activity entry is recorded: the log is deleted along with the board.
func (s *BoardService) Delete(ctx context.Context, actorID, boardID string) error {
	board, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return err
	}
	if err := policy.RequireOwner(actorID, board); err != nil {
		return err
	}

	if err := s.boards.Delete(ctx, boardID); err != nil {
		return fmt.Errorf("deleting board: %w", err)
	}

	s.logger.Info("board deleted",
		slog.String("boardId", boardID),
		slog.String("ownerId", actorID),
	)

	return nil
}

// AddMember adds the user with the given email to the board. Owner only.
// The target must be a registered user; adding an existing member is a
// conflict.
func (s *BoardService) AddMember(ctx context.Context, actorID, boardID, email string) (*model.Board, error) {
	board, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if !policy.CanAddMember(actorID, board) {
		return nil, apperror.Forbidden("only the board owner may add members")
	}

	target, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}

	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("resolving actor: %w", err)
	}

	if err := s.boards.AddMember(ctx, boardID, target.ID); err != nil {
		return nil, err
	}

	s.rec.record(ctx, &model.ActivityEntry{
		BoardID: boardID,
		ActorID: actorID,
		Action:  fmt.Sprintf("%s added %q to the board", actor.Name, target.Name),
	})

	return s.boards.GetByID(ctx, boardID)
}

// RemoveMember removes a member. The owner may remove anyone but themselves;
// a member may remove themselves; the owner can never be removed.
//
// The removed member's existing task assignments are left in place; the
// activity log keeps the removal visible, and historical attribution stays
// intact.
func (s *BoardService) RemoveMember(ctx context.Context, actorID, boardID, targetID string) (*model.Board, error) {
	board, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireView(actorID, board); err != nil {
		return nil, err
	}
	if err := policy.RequireRemovableMember(actorID, targetID, board); err != nil {
		return nil, err
	}

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("resolving actor: %w", err)
	}

	if err := s.boards.RemoveMember(ctx, boardID, targetID); err != nil {
		return nil, err
	}

	s.rec.record(ctx, &model.ActivityEntry{
		BoardID: boardID,
		ActorID: actorID,
		Action:  fmt.Sprintf("%s removed %q from the board", actor.Name, target.Name),
	})

	return s.boards.GetByID(ctx, boardID)
}

// CanSubscribe implements realtime.JoinAuthorizer: a connection may join a
// board channel only if its user is a member. Same rule as every read.
func (s *BoardService) CanSubscribe(ctx context.Context, userID, boardID string) error {
	board, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return err
	}
	return policy.RequireView(userID, board)
}
