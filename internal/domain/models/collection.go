package models

import (
	"time"
)

// Collection is a user-curated, ordered grouping of documents. Unlike
// folders, membership is many-to-many: a document can appear in several
// collections at once.
type Collection struct {
	ID        string    `json:"id" db:"id"`
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	Name      string    `json:"name" db:"name"`
	Position  int       `json:"position" db:"position"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CollectionMembership is one document's row in a collection. Position is
// scoped per collection; each membership computes its own append position.
type CollectionMembership struct {
	CollectionID string    `json:"collection_id" db:"collection_id"`
	DocumentID   string    `json:"document_id" db:"document_id"`
	Position     int       `json:"position" db:"position"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
