package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/arefin/flowboard/internal/apperror"
)

func TestTaskCreate_WithInitialAssignee(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "Ada", "ada@example.com")
	board := createTestBoard(t, db, owner.ID, "Board")
	list := createTestList(t, db, board.ID, "Todo", 0)

	task := createTestTask(t, db, list.ID, "Write docs", 0, owner.ID)

	got, err := db.Tasks().GetByID(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if len(got.Assignees) != 1 || got.Assignees[0].ID != owner.ID {
		t.Errorf("Assignees = %v, want just the creator", got.Assignees)
	}
}

func TestTaskListForList_Ordering(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "Ada", "ada@example.com")
	board := createTestBoard(t, db, owner.ID, "Board")
	list := createTestList(t, db, board.ID, "Todo", 0)

	createTestTask(t, db, list.ID, "Third", 2)
	createTestTask(t, db, list.ID, "First", 0)
	createTestTask(t, db, list.ID, "Second", 1)

	tasks, err := db.Tasks().ListForList(context.Background(), list.ID)
	if err != nil {
		t.Fatalf("ListForList() error = %v", err)
	}

	want := []string{"First", "Second", "Third"}
	if len(tasks) != len(want) {
		t.Fatalf("got %d tasks, want %d", len(tasks), len(want))
	}
	for i, title := range want {
		if tasks[i].Title != title {
			t.Errorf("tasks[%d].Title = %q, want %q", i, tasks[i].Title, title)
		}
	}
}

func TestTaskUpdate_DoesNotChangeList(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "Ada", "ada@example.com")
	board := createTestBoard(t, db, owner.ID, "Board")
	todo := createTestList(t, db, board.ID, "Todo", 0)
	task := createTestTask(t, db, todo.ID, "Write docs", 0)

	// Update edits in place; re-parenting goes through Move only.
	task.Title = "Write better docs"
	task.ListID = "some-other-list"
	if err := db.Tasks().Update(context.Background(), task); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := db.Tasks().GetByID(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Title != "Write better docs" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.ListID != todo.ID {
		t.Errorf("ListID = %q, want %q (Update must not re-parent)", got.ListID, todo.ID)
	}
}

func TestTaskMove_SameBoard(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "Ada", "ada@example.com")
	board := createTestBoard(t, db, owner.ID, "Board")
	todo := createTestList(t, db, board.ID, "Todo", 0)
	doing := createTestList(t, db, board.ID, "Doing", 1)
	task := createTestTask(t, db, todo.ID, "Write docs", 0)

	if err := db.Tasks().Move(ctx, task.ID, doing.ID, 5); err != nil {
		t.Fatalf("Move() error = %v", err)
	}

	got, err := db.Tasks().GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.ListID != doing.ID || got.Position != 5 {
		t.Errorf("after Move(): ListID=%q Position=%d", got.ListID, got.Position)
	}

	// The task appears in exactly one list.
	todoTasks, err := db.Tasks().ListForList(ctx, todo.ID)
	if err != nil {
		t.Fatalf("ListForList(todo) error = %v", err)
	}
	if len(todoTasks) != 0 {
		t.Errorf("task still present in source list after Move()")
	}
	doingTasks, err := db.Tasks().ListForList(ctx, doing.ID)
	if err != nil {
		t.Fatalf("ListForList(doing) error = %v", err)
	}
	if len(doingTasks) != 1 {
		t.Errorf("task missing from target list after Move()")
	}
}

func TestTaskMove_CrossBoardRejected(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "Ada", "ada@example.com")
	boardA := createTestBoard(t, db, owner.ID, "Board A")
	boardB := createTestBoard(t, db, owner.ID, "Board B")
	listA := createTestList(t, db, boardA.ID, "Todo", 0)
	listB := createTestList(t, db, boardB.ID, "Todo", 0)
	task := createTestTask(t, db, listA.ID, "Stay put", 0)

	err := db.Tasks().Move(ctx, task.ID, listB.ID, 0)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("Move() cross-board error = %v, want ErrValidation", err)
	}

	// The task must be untouched.
	got, err := db.Tasks().GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.ListID != listA.ID || got.Position != 0 {
		t.Errorf("task changed after rejected Move(): %+v", got)
	}
}

func TestTaskMove_TargetNotFound(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "Ada", "ada@example.com")
	board := createTestBoard(t, db, owner.ID, "Board")
	list := createTestList(t, db, board.ID, "Todo", 0)
	task := createTestTask(t, db, list.ID, "Write docs", 0)

	err := db.Tasks().Move(context.Background(), task.ID, "ghost", 0)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Move() to missing list error = %v, want ErrNotFound", err)
	}
}

func TestTaskAddAssignee_Idempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "Ada", "ada@example.com")
	bob := createTestUser(t, db, "Bob", "bob@example.com")
	board := createTestBoard(t, db, owner.ID, "Board")
	list := createTestList(t, db, board.ID, "Todo", 0)
	task := createTestTask(t, db, list.ID, "Write docs", 0)

	added, err := db.Tasks().AddAssignee(ctx, task.ID, bob.ID)
	if err != nil {
		t.Fatalf("AddAssignee() error = %v", err)
	}
	if !added {
		t.Error("AddAssignee() first call added = false, want true")
	}

	added, err = db.Tasks().AddAssignee(ctx, task.ID, bob.ID)
	if err != nil {
		t.Fatalf("AddAssignee() second call error = %v", err)
	}
	if added {
		t.Error("AddAssignee() second call added = true, want false")
	}

	got, err := db.Tasks().GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if len(got.Assignees) != 1 {
		t.Errorf("Assignees = %v, want exactly one entry", got.Assignees)
	}
}

func TestTaskDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, db, "Ada", "ada@example.com")
	board := createTestBoard(t, db, owner.ID, "Board")
	list := createTestList(t, db, board.ID, "Todo", 0)
	task := createTestTask(t, db, list.ID, "Write docs", 0, owner.ID)

	if err := db.Tasks().Delete(ctx, task.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := db.Tasks().GetByID(ctx, task.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("task still exists after Delete(): %v", err)
	}
}

func TestTaskDelete_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.Tasks().Delete(context.Background(), "ghost")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}
