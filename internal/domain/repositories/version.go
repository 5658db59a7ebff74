package repositories

import (
	"context"

	"quill/internal/domain/models"
)

// VersionRepository defines data access operations for persisted version
// history rows. The reconciler computes which entries to touch; this
// interface only applies its output.
type VersionRepository interface {
	// ListByDocument returns a document's version rows ordered by position
	ListByDocument(ctx context.Context, documentID string) ([]models.PersistedVersionEntry, error)

	// DeleteEntries removes the named entries from a document's history.
	// A nil/empty id list is a no-op.
	DeleteEntries(ctx context.Context, documentID string, entryIDs []string) error

	// UpsertEntries bulk-upserts entries keyed on (document_id, entry_id),
	// rewriting position and content on conflict. Must run after DeleteEntries
	// within the same sync so transiently reused positions cannot collide.
	UpsertEntries(ctx context.Context, documentID string, entries []models.PersistedVersionEntry) error

	// DeleteAllByDocument removes every version row for a document
	DeleteAllByDocument(ctx context.Context, documentID string) error
}
