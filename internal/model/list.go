package model

import "time"

// List is a named column of tasks within a board.
//
// Position is a plain integer supplied by the client. Values need not be
// contiguous and duplicates are permitted; display order is
// (position, created_at, id) so ties resolve deterministically.
type List struct {
	ID        string    `json:"id"`
	BoardID   string    `json:"boardId"`
	Title     string    `json:"title"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
