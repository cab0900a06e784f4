package model

import "time"

// Board is the top-level collaborative workspace. It is owned by exactly one
// user and shared with a set of members.
//
// Invariant: the owner is always a member. The repository inserts the owner's
// membership row in the same transaction that creates the board, and member
// removal rejects the owner, so the invariant holds across every mutation.
type Board struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	OwnerID     string    `json:"ownerId"`
	Members     []User    `json:"members,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// IsMember reports whether userID is in the board's member set.
// Members must be loaded for this to be meaningful (GetByID loads them).
func (b *Board) IsMember(userID string) bool {
	for _, m := range b.Members {
		if m.ID == userID {
			return true
		}
	}
	return false
}
