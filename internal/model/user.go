// Package model defines the data structures shared across the application
// layers: users, boards, lists, tasks, and the activity log.
package model

import "time"

// User represents a registered account.
//
// Email is the login key. It is stored lowercased so lookups are
// case-insensitive, and the UNIQUE constraint in the users table enforces
// one account per address.
//
// PasswordHash holds the bcrypt hash of the user's password. It is tagged
// `json:"-"` so it can never leak into an API response, even when a User is
// embedded in a board's member list or a task's assignee list.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
