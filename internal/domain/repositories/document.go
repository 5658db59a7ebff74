package repositories

import (
	"context"

	"quill/internal/domain/models"
)

// DocumentRepository defines data access operations for document root records.
// Ownership scoping is done in SQL: mutating methods filter on owner_id and
// report ErrNotFound when zero rows match, so "absent" and "not yours" are
// indistinguishable to callers.
type DocumentRepository interface {
	// Create inserts a new document row
	Create(ctx context.Context, doc *models.Document) error

	// GetByID retrieves a document by id alone. Visibility checks are the
	// caller's responsibility.
	GetByID(ctx context.Context, id string) (*models.Document, error)

	// GetOwned retrieves a document owned by ownerID
	GetOwned(ctx context.Context, id, ownerID string) (*models.Document, error)

	// Update rewrites the mutable fields (name, current_code, current_index,
	// visibility, folder_id, updated_at) of an owned document
	Update(ctx context.Context, doc *models.Document) error

	// Delete removes an owned document row. Version rows are deleted by the
	// caller in the same transaction.
	Delete(ctx context.Context, id, ownerID string) error

	// ListByOwner lists an owner's documents, most recently updated first
	ListByOwner(ctx context.Context, ownerID string) ([]models.Document, error)

	// ListPublic lists publicly visible documents, most recently updated first
	ListPublic(ctx context.Context, limit, offset int) ([]models.Document, error)

	// ClearFolder moves every document out of a folder (folder_id = NULL).
	// Used by the folder-delete cascade; runs inside the cascade transaction.
	ClearFolder(ctx context.Context, folderID, ownerID string) error

	// IncrementCounter atomically bumps one of the denormalized counters by 1.
	// Not gated on ownership: counters are the only cross-user mutation path.
	IncrementCounter(ctx context.Context, id string, field models.CounterField) error
}
