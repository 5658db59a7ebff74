package repositories

import (
	"context"

	"quill/internal/domain/models"
	"quill/internal/position"
)

// CollectionRepository defines data access operations for collections and
// their document memberships.
type CollectionRepository interface {
	// Create inserts a collection at the end of the owner's list (append
	// position from max, not count)
	Create(ctx context.Context, collection *models.Collection) error

	// GetByID retrieves an owned collection
	GetByID(ctx context.Context, id, ownerID string) (*models.Collection, error)

	// Update renames an owned collection
	Update(ctx context.Context, collection *models.Collection) error

	// Delete removes an owned collection and its membership rows
	Delete(ctx context.Context, id, ownerID string) error

	// ListByOwner lists an owner's collections ordered by position
	ListByOwner(ctx context.Context, ownerID string) ([]models.Collection, error)

	// Reorder bulk-rewrites collection positions for the given moves
	Reorder(ctx context.Context, ownerID string, moves []position.Move) error

	// AddDocument appends a document to a collection, computing the membership
	// position within that collection. A duplicate membership surfaces as a
	// ConflictError, not a transport error.
	AddDocument(ctx context.Context, collectionID, documentID string) error

	// RemoveDocument deletes one membership row
	RemoveDocument(ctx context.Context, collectionID, documentID string) error

	// ListDocumentIDs returns the member document ids of a collection ordered
	// by membership position
	ListDocumentIDs(ctx context.Context, collectionID string) ([]string, error)

	// ListCollectionIDsForDocument returns the ids of the owner's collections
	// that currently contain the document. Scoped to the acting owner:
	// cross-owner memberships are invisible to this query.
	ListCollectionIDsForDocument(ctx context.Context, ownerID, documentID string) ([]string, error)
}
