package repositories

import (
	"context"

	"quill/internal/domain/models"
	"quill/internal/position"
)

// FolderRepository defines data access operations for folders.
type FolderRepository interface {
	// Create inserts a folder at the end of the owner's list. The append
	// position is computed from the current max position in a single
	// statement, not from a row count.
	Create(ctx context.Context, folder *models.Folder) error

	// GetByID retrieves an owned folder
	GetByID(ctx context.Context, id, ownerID string) (*models.Folder, error)

	// Update renames an owned folder
	Update(ctx context.Context, folder *models.Folder) error

	// Delete removes an owned folder row. Members must be unfoldered first,
	// in the same transaction.
	Delete(ctx context.Context, id, ownerID string) error

	// ListByOwner lists an owner's folders ordered by position
	ListByOwner(ctx context.Context, ownerID string) ([]models.Folder, error)

	// Reorder bulk-rewrites positions for the given moves. Folders omitted
	// from moves keep their old positions. Last write wins.
	Reorder(ctx context.Context, ownerID string, moves []position.Move) error
}
