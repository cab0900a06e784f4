package model

import "time"

// Task is a unit of work belonging to exactly one list at a time. Moving a
// card re-parents it by changing ListID and Position together.
//
// Assignees is a set: assignment is additive and idempotent, never a replace.
// The creator is auto-assigned at creation time.
type Task struct {
	ID          string    `json:"id"`
	ListID      string    `json:"listId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Position    int       `json:"position"`
	Assignees   []User    `json:"assignees"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
