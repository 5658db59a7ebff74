package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"quill/internal/config"
	"quill/internal/domain"
	"quill/internal/domain/models"
	"quill/internal/domain/repositories"
	"quill/internal/domain/services"
	"quill/internal/position"

	"github.com/google/uuid"
)

type collectionService struct {
	collectionRepo repositories.CollectionRepository
	docRepo        repositories.DocumentRepository
	limits         *config.Limits
	logger         *slog.Logger
}

// NewCollectionService creates a new collection service
func NewCollectionService(
	collectionRepo repositories.CollectionRepository,
	docRepo repositories.DocumentRepository,
	limits *config.Limits,
	logger *slog.Logger,
) services.CollectionService {
	return &collectionService{
		collectionRepo: collectionRepo,
		docRepo:        docRepo,
		limits:         limits,
		logger:         logger,
	}
}

func (s *collectionService) Create(ctx context.Context, ownerID, name string) (*models.Collection, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := s.validateName(name); err != nil {
		return nil, err
	}

	now := time.Now()
	collection := &models.Collection{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.collectionRepo.Create(ctx, collection); err != nil {
		return nil, err
	}

	s.logger.Info("collection created", "id", collection.ID, "owner_id", ownerID, "position", collection.Position)
	return collection, nil
}

func (s *collectionService) Rename(ctx context.Context, ownerID, collectionID, name string) (*models.Collection, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := s.validateName(name); err != nil {
		return nil, err
	}

	collection, err := s.collectionRepo.GetByID(ctx, collectionID, ownerID)
	if err != nil {
		return nil, err
	}
	collection.Name = name
	collection.UpdatedAt = time.Now()
	if err := s.collectionRepo.Update(ctx, collection); err != nil {
		return nil, err
	}

	return collection, nil
}

func (s *collectionService) Delete(ctx context.Context, ownerID, collectionID string) error {
	if ownerID == "" {
		return domain.ErrUnauthorized
	}
	if err := s.collectionRepo.Delete(ctx, collectionID, ownerID); err != nil {
		return err
	}

	s.logger.Info("collection deleted", "id", collectionID, "owner_id", ownerID)
	return nil
}

func (s *collectionService) List(ctx context.Context, ownerID string) ([]models.Collection, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}
	return s.collectionRepo.ListByOwner(ctx, ownerID)
}

func (s *collectionService) Reorder(ctx context.Context, ownerID string, orderedIDs []string) error {
	if ownerID == "" {
		return domain.ErrUnauthorized
	}
	if len(orderedIDs) == 0 {
		return nil
	}
	return s.collectionRepo.Reorder(ctx, ownerID, position.ReorderPlan(orderedIDs))
}

// AddDocument appends a document to an owned collection. Both the collection
// and the document must belong to the caller; a duplicate membership surfaces
// as a ConflictError from the repository.
func (s *collectionService) AddDocument(ctx context.Context, ownerID, collectionID, documentID string) error {
	if ownerID == "" {
		return domain.ErrUnauthorized
	}
	if _, err := s.collectionRepo.GetByID(ctx, collectionID, ownerID); err != nil {
		return err
	}
	if _, err := s.docRepo.GetOwned(ctx, documentID, ownerID); err != nil {
		return err
	}
	return s.collectionRepo.AddDocument(ctx, collectionID, documentID)
}

func (s *collectionService) RemoveDocument(ctx context.Context, ownerID, collectionID, documentID string) error {
	if ownerID == "" {
		return domain.ErrUnauthorized
	}
	if _, err := s.collectionRepo.GetByID(ctx, collectionID, ownerID); err != nil {
		return err
	}
	return s.collectionRepo.RemoveDocument(ctx, collectionID, documentID)
}

func (s *collectionService) ListDocumentIDs(ctx context.Context, ownerID, collectionID string) ([]string, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}
	if _, err := s.collectionRepo.GetByID(ctx, collectionID, ownerID); err != nil {
		return nil, err
	}
	return s.collectionRepo.ListDocumentIDs(ctx, collectionID)
}

// ReplaceMembership reconciles which of the owner's collections contain the
// document. Removals run before additions so a move between collections never
// trips the duplicate guard. Each addition appends at the end of its target
// collection; the document's position in untouched collections is preserved.
func (s *collectionService) ReplaceMembership(ctx context.Context, ownerID, documentID string, desiredCollectionIDs []string) error {
	if ownerID == "" {
		return domain.ErrUnauthorized
	}
	if _, err := s.docRepo.GetOwned(ctx, documentID, ownerID); err != nil {
		return err
	}

	current, err := s.collectionRepo.ListCollectionIDsForDocument(ctx, ownerID, documentID)
	if err != nil {
		return err
	}
	toAdd, toRemove := position.DiffMembership(current, desiredCollectionIDs)

	for _, collectionID := range toRemove {
		if err := s.collectionRepo.RemoveDocument(ctx, collectionID, documentID); err != nil {
			return fmt.Errorf("remove from collection %s: %w", collectionID, err)
		}
	}
	for _, collectionID := range toAdd {
		if _, err := s.collectionRepo.GetByID(ctx, collectionID, ownerID); err != nil {
			return fmt.Errorf("add to collection %s: %w", collectionID, err)
		}
		if err := s.collectionRepo.AddDocument(ctx, collectionID, documentID); err != nil {
			return fmt.Errorf("add to collection %s: %w", collectionID, err)
		}
	}

	s.logger.Debug("membership replaced",
		"document_id", documentID,
		"added", len(toAdd),
		"removed", len(toRemove),
	)
	return nil
}

func (s *collectionService) validateName(name string) error {
	if name == "" || len(name) > s.limits.MaxNameLength {
		return fmt.Errorf("%w: collection name must be 1-%d characters", domain.ErrValidation, s.limits.MaxNameLength)
	}
	return nil
}
