package models

import (
	"time"
)

// Folder is a flat, user-owned container for documents. Position orders
// folders within an owner's list; positions are unique but may carry gaps
// after deletions, and are only rewritten dense (0..n-1) on explicit reorder.
type Folder struct {
	ID        string    `json:"id" db:"id"`
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	Name      string    `json:"name" db:"name"`
	Position  int       `json:"position" db:"position"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
