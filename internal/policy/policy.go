// Package policy holds the authorization rules for boards. Every decision is
// a pure function of (acting user, board, requested operation), with no I/O
// and no state, so the rules are trivially testable and the same check backs REST
// reads, mutations, and realtime subscriptions.
//
// Callers check existence before authorization: a missing board is
// ErrNotFound, an existing board the caller may not touch is ErrForbidden.
// The two are never conflated.
package policy

import (
	"github.com/arefin/flowboard/internal/apperror"
	"github.com/arefin/flowboard/internal/model"
)

// CanView reports whether userID may read the board and its contents.
// Any member may.
func CanView(userID string, board *model.Board) bool {
	return board.IsMember(userID)
}

// CanEdit reports whether userID may mutate the board's lists and tasks.
// Any member may.
func CanEdit(userID string, board *model.Board) bool {
	return board.IsMember(userID)
}

// CanDelete reports whether userID may delete the board. Owner only.
func CanDelete(userID string, board *model.Board) bool {
	return board.OwnerID == userID
}

// CanAddMember reports whether userID may add members. Owner only.
func CanAddMember(userID string, board *model.Board) bool {
	return board.OwnerID == userID
}

// CanRemoveMember reports whether actorID may remove targetID from the
// board. The owner may remove anyone but themselves; a member may always
// remove themselves. Whether the owner can be a target at all is a separate
// rule; see RequireRemovableMember.
func CanRemoveMember(actorID, targetID string, board *model.Board) bool {
	if board.OwnerID == actorID {
		return true
	}
	return actorID == targetID
}

// RequireView returns ErrForbidden unless userID is a member.
func RequireView(userID string, board *model.Board) error {
	if !CanView(userID, board) {
		return apperror.Forbidden("you are not a member of this board")
	}
	return nil
}

// RequireEdit returns ErrForbidden unless userID is a member.
func RequireEdit(userID string, board *model.Board) error {
	if !CanEdit(userID, board) {
		return apperror.Forbidden("you are not a member of this board")
	}
	return nil
}

// RequireOwner returns ErrForbidden unless userID owns the board.
func RequireOwner(userID string, board *model.Board) error {
	if board.OwnerID != userID {
		return apperror.Forbidden("only the board owner may do this")
	}
	return nil
}

// RequireRemovableMember validates a member-removal request end to end:
// the target must not be the owner (the owner can never be removed while
// owner), and the actor must be the owner or removing themselves.
func RequireRemovableMember(actorID, targetID string, board *model.Board) error {
	if targetID == board.OwnerID {
		return apperror.ValidationFailed("userId", "the board owner cannot be removed")
	}
	if !CanRemoveMember(actorID, targetID, board) {
		return apperror.Forbidden("only the board owner may remove other members")
	}
	return nil
}
