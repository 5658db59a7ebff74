package services

import (
	"context"

	"quill/internal/autosave"
	"quill/internal/domain/models"
)

// CreateDocumentRequest carries everything needed to persist a document for
// the first time.
type CreateDocumentRequest struct {
	OwnerID    string
	History    models.DocumentHistory
	FolderID   *string
	Visibility models.Visibility // empty = private
}

// SaveDocumentRequest syncs the current in-memory history of an existing
// document.
type SaveDocumentRequest struct {
	OwnerID    string
	DocumentID string
	History    models.DocumentHistory
}

// DocumentWithHistory bundles a document row with its version rows, ordered
// by position.
type DocumentWithHistory struct {
	Document models.Document                `json:"document"`
	Entries  []models.PersistedVersionEntry `json:"entries"`
}

// DocumentService orchestrates document lifecycle: create, reconciling
// saves, visibility and folder moves, deletion, and listing.
type DocumentService interface {
	// Create persists a new document and its initial history
	Create(ctx context.Context, req *CreateDocumentRequest) (*models.Document, error)

	// Get loads a document plus history. viewerID may be empty (anonymous);
	// private documents are only visible to their owner.
	Get(ctx context.Context, viewerID, documentID string) (*DocumentWithHistory, error)

	// Save reconciles the persisted history against req.History and updates
	// the root record. The write is all-or-nothing: on error nothing is
	// applied and the caller retries the whole save.
	Save(ctx context.Context, req *SaveDocumentRequest) (*models.Document, error)

	// SetVisibility changes who may read the document
	SetVisibility(ctx context.Context, ownerID, documentID string, v models.Visibility) (*models.Document, error)

	// SetFolder moves the document into a folder (nil = out of any folder)
	SetFolder(ctx context.Context, ownerID, documentID string, folderID *string) (*models.Document, error)

	// Delete removes the document and its entire history
	Delete(ctx context.Context, ownerID, documentID string) error

	// ListMine lists the owner's documents, most recently updated first
	ListMine(ctx context.Context, ownerID string) ([]models.Document, error)

	// ListPublic pages through publicly visible documents
	ListPublic(ctx context.Context, page int) ([]models.Document, error)

	// Like bumps the like counter of a readable document
	Like(ctx context.Context, userID, documentID string) error

	// Autosaver returns a debounced scheduler whose save path is Save for
	// the given document. Callers own the scheduler and must Close it.
	Autosaver(ownerID, documentID string) *autosave.Scheduler
}
