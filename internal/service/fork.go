package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"quill/internal/domain"
	"quill/internal/domain/models"
	"quill/internal/domain/repositories"
	"quill/internal/domain/services"

	"github.com/google/uuid"
)

type forkService struct {
	docRepo     repositories.DocumentRepository
	versionRepo repositories.VersionRepository
	txManager   repositories.TransactionManager
	logger      *slog.Logger
}

// NewForkService creates a new fork service
func NewForkService(
	docRepo repositories.DocumentRepository,
	versionRepo repositories.VersionRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.ForkService {
	return &forkService{
		docRepo:     docRepo,
		versionRepo: versionRepo,
		txManager:   txManager,
		logger:      logger,
	}
}

// Fork copies the source document and its whole history into a new private
// document. The copy succeeds or fails atomically; the source fork counter
// is bumped afterwards, outside the transaction, and a counter failure never
// fails the fork.
func (s *forkService) Fork(ctx context.Context, userID, sourceID string, newName *string) (*models.Document, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}

	source, err := s.docRepo.GetByID(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	if source.Visibility == models.VisibilityPrivate && source.OwnerID != userID {
		return nil, fmt.Errorf("document %s: %w", sourceID, domain.ErrNotFound)
	}

	entries, err := s.versionRepo.ListByDocument(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	name := source.Name + " (fork)"
	if newName != nil && *newName != "" {
		name = *newName
	}

	now := time.Now()
	fork := &models.Document{
		ID:           uuid.NewString(),
		OwnerID:      userID,
		Name:         name,
		CurrentCode:  source.CurrentCode,
		CurrentIndex: source.CurrentIndex,
		ForkedFromID: &source.ID,
		ForkDepth:    source.ForkDepth + 1,
		Visibility:   models.VisibilityPrivate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	copied := make([]models.PersistedVersionEntry, len(entries))
	for i, e := range entries {
		e.DocumentID = fork.ID
		copied[i] = e
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.docRepo.Create(txCtx, fork); err != nil {
			return err
		}
		return s.versionRepo.UpsertEntries(txCtx, fork.ID, copied)
	})
	if err != nil {
		return nil, err
	}

	// Best-effort: the fork already exists, so a failed counter bump is
	// logged and swallowed.
	if err := s.docRepo.IncrementCounter(ctx, sourceID, models.CounterForks); err != nil {
		s.logger.Warn("fork counter increment failed",
			"source_id", sourceID,
			"fork_id", fork.ID,
			"error", err,
		)
	}

	s.logger.Info("document forked",
		"source_id", sourceID,
		"fork_id", fork.ID,
		"owner_id", userID,
		"depth", fork.ForkDepth,
	)

	return fork, nil
}
