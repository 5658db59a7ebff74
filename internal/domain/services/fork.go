package services

import (
	"context"

	"quill/internal/domain/models"
)

// ForkService duplicates documents across users, tracking lineage.
type ForkService interface {
	// Fork copies the source document and its full history into a new
	// private document owned by userID. newName overrides the default
	// "<source name> (fork)". The source's fork counter is incremented
	// best-effort.
	Fork(ctx context.Context, userID, sourceID string, newName *string) (*models.Document, error)
}
