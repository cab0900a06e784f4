package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/arefin/flowboard/internal/apperror"
)

// =========================================================================
// CREATE / GET / LIST TESTS
// =========================================================================

func TestBoardCreate(t *testing.T) {
	f := newFixture(t)
	ada := f.users.add("Ada", "ada@example.com")

	board, err := f.boardSvc.Create(context.Background(), ada.ID, "  Launch Plan  ", "desc")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if board.Title != "Launch Plan" {
		t.Errorf("Title = %q, want trimmed", board.Title)
	}
	if board.OwnerID != ada.ID {
		t.Errorf("OwnerID = %q, want %q", board.OwnerID, ada.ID)
	}
	if len(board.Members) != 1 || board.Members[0].ID != ada.ID {
		t.Errorf("Members = %v, want the owner as sole member", board.Members)
	}

	// Board creation is not board activity: the log would predate any
	// audience for it.
	if len(f.activity.entries) != 0 {
		t.Errorf("Create() logged activity: %v", f.activity.entries)
	}
	f.notifier.requireEvents(t)
}

func TestBoardCreate_EmptyTitle(t *testing.T) {
	f := newFixture(t)
	ada := f.users.add("Ada", "ada@example.com")

	_, err := f.boardSvc.Create(context.Background(), ada.ID, "   ", "")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Create() error = %v, want ErrValidation", err)
	}
}

func TestBoardCreate_TitleTooLong(t *testing.T) {
	f := newFixture(t)
	ada := f.users.add("Ada", "ada@example.com")

	_, err := f.boardSvc.Create(context.Background(), ada.ID, strings.Repeat("x", MaxBoardTitleLength+1), "")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Create() error = %v, want ErrValidation", err)
	}
}

func TestBoardGet_NonMemberForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ada := f.users.add("Ada", "ada@example.com")
	mallory := f.users.add("Mallory", "mallory@example.com")

	board, err := f.boardSvc.Create(ctx, ada.ID, "Private", "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err = f.boardSvc.Get(ctx, mallory.ID, board.ID)
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("Get() by non-member error = %v, want ErrForbidden", err)
	}
}

func TestBoardGet_MissingIsNotFound(t *testing.T) {
	f := newFixture(t)
	ada := f.users.add("Ada", "ada@example.com")

	// A board that does not exist is not-found, never forbidden. The two
	// must stay distinguishable.
	_, err := f.boardSvc.Get(context.Background(), ada.ID, "ghost")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Get() missing board error = %v, want ErrNotFound", err)
	}
	if errors.Is(err, apperror.ErrForbidden) {
		t.Error("missing board reported as forbidden")
	}
}

// =========================================================================
// UPDATE / DELETE TESTS
// =========================================================================

func TestBoardUpdate_RenameLogsAndNotifies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ada := f.users.add("Ada", "ada@example.com")

	board, err := f.boardSvc.Create(ctx, ada.ID, "Old Name", "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := f.boardSvc.Update(ctx, ada.ID, board.ID, "New Name", nil); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	want := `Ada renamed the board "Old Name" to "New Name"`
	if got := f.activity.lastAction(); got != want {
		t.Errorf("activity = %q, want %q", got, want)
	}
	f.notifier.requireEvents(t, "activityAdded")
}

func TestBoardUpdate_RenameKeepsDescription(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ada := f.users.add("Ada", "ada@example.com")

	board, err := f.boardSvc.Create(ctx, ada.ID, "Sprint 1", "the release board")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// A rename-only patch leaves the description alone.
	updated, err := f.boardSvc.Update(ctx, ada.ID, board.ID, "Sprint 2", nil)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Description != "the release board" {
		t.Errorf("Description = %q, want %q", updated.Description, "the release board")
	}

	// An explicit empty description clears it.
	empty := ""
	updated, err = f.boardSvc.Update(ctx, ada.ID, board.ID, "", &empty)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Description != "" {
		t.Errorf("Description = %q, want cleared", updated.Description)
	}
	if updated.Title != "Sprint 2" {
		t.Errorf("Title = %q, want unchanged", updated.Title)
	}
}

func TestBoardUpdate_ActorLookupFailureLeavesBoardUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ada := f.users.add("Ada", "ada@example.com")

	board, err := f.boardSvc.Create(ctx, ada.ID, "Old Name", "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	f.users.getErr = errors.New("user store down")
	if _, err := f.boardSvc.Update(ctx, ada.ID, board.ID, "New Name", nil); err == nil {
		t.Fatal("Update() succeeded with the actor unresolvable")
	}
	f.users.getErr = nil

	got, err := f.boardSvc.Get(ctx, ada.ID, board.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Title != "Old Name" {
		t.Errorf("Title = %q, want the update rolled back entirely", got.Title)
	}
	if len(f.activity.entries) != 0 {
		t.Errorf("failed update logged activity: %v", f.activity.entries)
	}
	f.notifier.requireEvents(t)
}

func TestBoardDelete_OwnerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ada := f.users.add("Ada", "ada@example.com")
	bob := f.users.add("Bob", "bob@example.com")

	board, err := f.boardSvc.Create(ctx, ada.ID, "Shared", "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := f.boardSvc.AddMember(ctx, ada.ID, board.ID, "bob@example.com"); err != nil {
		t.Fatalf("AddMember() error = %v", err)
	}

	if err := f.boardSvc.Delete(ctx, bob.ID, board.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("Delete() by member error = %v, want ErrForbidden", err)
	}

	if err := f.boardSvc.Delete(ctx, ada.ID, board.ID); err != nil {
		t.Fatalf("Delete() by owner error = %v", err)
	}
	if _, err := f.boardSvc.Get(ctx, ada.ID, board.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("board still readable after delete: %v", err)
	}
}

// =========================================================================
// MEMBERSHIP TESTS
// =========================================================================

func TestBoardAddMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ada := f.users.add("Ada", "ada@example.com")
	f.users.add("Bob", "bob@example.com")

	board, err := f.boardSvc.Create(ctx, ada.ID, "Shared", "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated, err := f.boardSvc.AddMember(ctx, ada.ID, board.ID, "Bob@Example.com")
	if err != nil {
		t.Fatalf("AddMember() error = %v", err)
	}
	if len(updated.Members) != 2 {
		t.Errorf("Members = %v, want 2", updated.Members)
	}

	want := `Ada added "Bob" to the board`
	if got := f.activity.lastAction(); got != want {
		t.Errorf("activity = %q, want %q", got, want)
	}
	f.notifier.requireEvents(t, "activityAdded")
}

func TestBoardAddMember_NonOwnerForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ada := f.users.add("Ada", "ada@example.com")
	bob := f.users.add("Bob", "bob@example.com")
	f.users.add("Carol", "carol@example.com")

	board, err := f.boardSvc.Create(ctx, ada.ID, "Shared", "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := f.boardSvc.AddMember(ctx, ada.ID, board.ID, "bob@example.com"); err != nil {
		t.Fatalf("AddMember() error = %v", err)
	}

	_, err = f.boardSvc.AddMember(ctx, bob.ID, board.ID, "carol@example.com")
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("AddMember() by non-owner error = %v, want ErrForbidden", err)
	}
}

func TestBoardAddMember_UnknownEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ada := f.users.add("Ada", "ada@example.com")

	board, err := f.boardSvc.Create(ctx, ada.ID, "Shared", "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err = f.boardSvc.AddMember(ctx, ada.ID, board.ID, "nobody@example.com")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("AddMember() unknown email error = %v, want ErrNotFound", err)
	}
}

func TestBoardRemoveMember_OwnerNeverRemovable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ada := f.users.add("Ada", "ada@example.com")

	board, err := f.boardSvc.Create(ctx, ada.ID, "Solo", "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Not even the owner can remove the owner.
	_, err = f.boardSvc.RemoveMember(ctx, ada.ID, board.ID, ada.ID)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("RemoveMember(owner) error = %v, want ErrValidation", err)
	}
}

func TestBoardRemoveMember_SelfRemoval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ada := f.users.add("Ada", "ada@example.com")
	bob := f.users.add("Bob", "bob@example.com")

	board, err := f.boardSvc.Create(ctx, ada.ID, "Shared", "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := f.boardSvc.AddMember(ctx, ada.ID, board.ID, "bob@example.com"); err != nil {
		t.Fatalf("AddMember() error = %v", err)
	}

	updated, err := f.boardSvc.RemoveMember(ctx, bob.ID, board.ID, bob.ID)
	if err != nil {
		t.Fatalf("self RemoveMember() error = %v", err)
	}
	if len(updated.Members) != 1 {
		t.Errorf("Members = %v, want just the owner", updated.Members)
	}

	// The actor named in the message is the remover, here Bob himself.
	want := `Bob removed "Bob" from the board`
	if got := f.activity.lastAction(); got != want {
		t.Errorf("activity = %q, want %q", got, want)
	}
}

func TestBoardRemoveMember_MemberCannotRemoveOther(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ada := f.users.add("Ada", "ada@example.com")
	bob := f.users.add("Bob", "bob@example.com")
	carol := f.users.add("Carol", "carol@example.com")

	board, err := f.boardSvc.Create(ctx, ada.ID, "Shared", "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	for _, email := range []string{"bob@example.com", "carol@example.com"} {
		if _, err := f.boardSvc.AddMember(ctx, ada.ID, board.ID, email); err != nil {
			t.Fatalf("AddMember(%s) error = %v", email, err)
		}
	}

	_, err = f.boardSvc.RemoveMember(ctx, bob.ID, board.ID, carol.ID)
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("RemoveMember() by peer error = %v, want ErrForbidden", err)
	}
}

// =========================================================================
// SUBSCRIPTION AUTHORIZATION TESTS
// =========================================================================

func TestCanSubscribe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ada := f.users.add("Ada", "ada@example.com")
	mallory := f.users.add("Mallory", "mallory@example.com")

	board, err := f.boardSvc.Create(ctx, ada.ID, "Private", "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := f.boardSvc.CanSubscribe(ctx, ada.ID, board.ID); err != nil {
		t.Errorf("member CanSubscribe() error = %v", err)
	}
	if err := f.boardSvc.CanSubscribe(ctx, mallory.ID, board.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("non-member CanSubscribe() error = %v, want ErrForbidden", err)
	}
	if err := f.boardSvc.CanSubscribe(ctx, ada.ID, "ghost"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("missing board CanSubscribe() error = %v, want ErrNotFound", err)
	}
}
