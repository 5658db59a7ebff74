package services

import (
	"context"

	"quill/internal/domain/models"
)

// CollectionService manages curated document collections and their
// memberships.
type CollectionService interface {
	// Create appends a collection to the end of the owner's list
	Create(ctx context.Context, ownerID, name string) (*models.Collection, error)

	// Rename changes a collection's name
	Rename(ctx context.Context, ownerID, collectionID, name string) (*models.Collection, error)

	// Delete removes a collection and its membership rows
	Delete(ctx context.Context, ownerID, collectionID string) error

	// List returns the owner's collections ordered by position
	List(ctx context.Context, ownerID string) ([]models.Collection, error)

	// Reorder rewrites collection positions to match orderedIDs
	Reorder(ctx context.Context, ownerID string, orderedIDs []string) error

	// AddDocument appends a document to a collection. Adding a document
	// already in the collection is a conflict, not a silent no-op.
	AddDocument(ctx context.Context, ownerID, collectionID, documentID string) error

	// RemoveDocument removes one membership
	RemoveDocument(ctx context.Context, ownerID, collectionID, documentID string) error

	// ListDocumentIDs returns member document ids ordered by position
	ListDocumentIDs(ctx context.Context, ownerID, collectionID string) ([]string, error)

	// ReplaceMembership reconciles which of the owner's collections contain
	// the document: removals are applied before additions, and each addition
	// appends at the end of its target collection.
	ReplaceMembership(ctx context.Context, ownerID, documentID string, desiredCollectionIDs []string) error
}
