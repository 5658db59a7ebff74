package models

import (
	"time"
)

// ViewEvent is an immutable analytics row recorded once per document view.
// ViewerID is nil for anonymous viewers. The denormalized view counter on the
// document is incremented separately, best-effort.
type ViewEvent struct {
	ID         string    `json:"id" db:"id"`
	DocumentID string    `json:"document_id" db:"document_id"`
	ViewerID   *string   `json:"viewer_id" db:"viewer_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
