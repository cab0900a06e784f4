package model

import "time"

// ActivityEntry is an immutable audit record of a mutating action on a board.
// Entries are append-only: they are never updated, and they outlive the task
// or list they reference. Only deleting the whole board removes its entries.
//
// TaskID and ListID are weak references: historical pointers, not lifecycle
// dependencies. They may name entities that no longer exist.
//
// ActorName and ActorEmail are denormalized from the acting user at read time
// so the log renders without a join on the client.
type ActivityEntry struct {
	ID         string    `json:"id"`
	BoardID    string    `json:"boardId"`
	ActorID    string    `json:"actorId"`
	ActorName  string    `json:"actorName,omitempty"`
	ActorEmail string    `json:"actorEmail,omitempty"`
	Action     string    `json:"action"`
	TaskID     string    `json:"taskId,omitempty"`
	ListID     string    `json:"listId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
