package sqlite

import (
	"context"
	"testing"

	"github.com/arefin/flowboard/internal/model"
)

// newTestDB returns a fresh in-memory database, migrated and ready. Each
// test gets its own; the connection is torn down with the test.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, name, email string) *model.User {
	t.Helper()
	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: "$2a$04$notarealhashnotarealhashnotarealhash",
	}
	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user %q: %v", email, err)
	}
	return user
}

func createTestBoard(t *testing.T, db *DB, ownerID, title string) *model.Board {
	t.Helper()
	board := &model.Board{
		Title:   title,
		OwnerID: ownerID,
	}
	if err := db.Boards().Create(context.Background(), board); err != nil {
		t.Fatalf("failed to create test board %q: %v", title, err)
	}
	return board
}

func createTestList(t *testing.T, db *DB, boardID, title string, position int) *model.List {
	t.Helper()
	list := &model.List{
		BoardID:  boardID,
		Title:    title,
		Position: position,
	}
	if err := db.Lists().Create(context.Background(), list); err != nil {
		t.Fatalf("failed to create test list %q: %v", title, err)
	}
	return list
}

func createTestTask(t *testing.T, db *DB, listID, title string, position int, assigneeIDs ...string) *model.Task {
	t.Helper()
	task := &model.Task{
		ListID:   listID,
		Title:    title,
		Position: position,
	}
	if err := db.Tasks().Create(context.Background(), task, assigneeIDs...); err != nil {
		t.Fatalf("failed to create test task %q: %v", title, err)
	}
	return task
}
