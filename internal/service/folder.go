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

type folderService struct {
	folderRepo repositories.FolderRepository
	docRepo    repositories.DocumentRepository
	txManager  repositories.TransactionManager
	limits     *config.Limits
	logger     *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	folderRepo repositories.FolderRepository,
	docRepo repositories.DocumentRepository,
	txManager repositories.TransactionManager,
	limits *config.Limits,
	logger *slog.Logger,
) services.FolderService {
	return &folderService{
		folderRepo: folderRepo,
		docRepo:    docRepo,
		txManager:  txManager,
		limits:     limits,
		logger:     logger,
	}
}

func (s *folderService) Create(ctx context.Context, ownerID, name string) (*models.Folder, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := s.validateName(name); err != nil {
		return nil, err
	}

	now := time.Now()
	folder := &models.Folder{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	// Position is assigned by the repository's append statement.
	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder created", "id", folder.ID, "owner_id", ownerID, "position", folder.Position)
	return folder, nil
}

func (s *folderService) Rename(ctx context.Context, ownerID, folderID, name string) (*models.Folder, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := s.validateName(name); err != nil {
		return nil, err
	}

	folder, err := s.folderRepo.GetByID(ctx, folderID, ownerID)
	if err != nil {
		return nil, err
	}
	folder.Name = name
	folder.UpdatedAt = time.Now()
	if err := s.folderRepo.Update(ctx, folder); err != nil {
		return nil, err
	}

	return folder, nil
}

// Delete unfolders member documents and then removes the folder, both inside
// one transaction. If the unfolder step fails the folder survives with its
// members intact.
func (s *folderService) Delete(ctx context.Context, ownerID, folderID string) error {
	if ownerID == "" {
		return domain.ErrUnauthorized
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.docRepo.ClearFolder(txCtx, folderID, ownerID); err != nil {
			return fmt.Errorf("unfolder members: %w", err)
		}
		return s.folderRepo.Delete(txCtx, folderID, ownerID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("folder deleted", "id", folderID, "owner_id", ownerID)
	return nil
}

func (s *folderService) List(ctx context.Context, ownerID string) ([]models.Folder, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}
	return s.folderRepo.ListByOwner(ctx, ownerID)
}

func (s *folderService) Reorder(ctx context.Context, ownerID string, orderedIDs []string) error {
	if ownerID == "" {
		return domain.ErrUnauthorized
	}
	if len(orderedIDs) == 0 {
		return nil
	}
	return s.folderRepo.Reorder(ctx, ownerID, position.ReorderPlan(orderedIDs))
}

func (s *folderService) validateName(name string) error {
	if name == "" || len(name) > s.limits.MaxNameLength {
		return fmt.Errorf("%w: folder name must be 1-%d characters", domain.ErrValidation, s.limits.MaxNameLength)
	}
	return nil
}
