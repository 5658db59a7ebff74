package services

import (
	"context"

	"quill/internal/domain/models"
)

// FolderService manages a user's ordered folder list.
type FolderService interface {
	// Create appends a folder to the end of the owner's list
	Create(ctx context.Context, ownerID, name string) (*models.Folder, error)

	// Rename changes a folder's name
	Rename(ctx context.Context, ownerID, folderID, name string) (*models.Folder, error)

	// Delete removes a folder. Member documents are moved out of the folder
	// first, in the same transaction; if that step fails the folder survives.
	Delete(ctx context.Context, ownerID, folderID string) error

	// List returns the owner's folders ordered by position
	List(ctx context.Context, ownerID string) ([]models.Folder, error)

	// Reorder rewrites positions to match orderedIDs (dense 0..n-1). Pass the
	// complete folder id set for a deterministic order.
	Reorder(ctx context.Context, ownerID string, orderedIDs []string) error
}
