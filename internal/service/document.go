package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"quill/internal/autosave"
	"quill/internal/config"
	"quill/internal/domain"
	"quill/internal/domain/models"
	"quill/internal/domain/repositories"
	"quill/internal/domain/services"
	"quill/internal/history"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

type documentService struct {
	docRepo     repositories.DocumentRepository
	versionRepo repositories.VersionRepository
	folderRepo  repositories.FolderRepository
	txManager   repositories.TransactionManager
	limits      *config.Limits
	logger      *slog.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(
	docRepo repositories.DocumentRepository,
	versionRepo repositories.VersionRepository,
	folderRepo repositories.FolderRepository,
	txManager repositories.TransactionManager,
	limits *config.Limits,
	logger *slog.Logger,
) services.DocumentService {
	return &documentService{
		docRepo:     docRepo,
		versionRepo: versionRepo,
		folderRepo:  folderRepo,
		txManager:   txManager,
		limits:      limits,
		logger:      logger,
	}
}

// Create persists a new document and its initial history
func (s *documentService) Create(ctx context.Context, req *services.CreateDocumentRequest) (*models.Document, error) {
	if req.OwnerID == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := s.validateHistory(&req.History); err != nil {
		return nil, err
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = models.VisibilityPrivate
	}
	if !visibility.Valid() {
		return nil, fmt.Errorf("%w: unknown visibility %q", domain.ErrValidation, visibility)
	}
	if err := s.checkFolder(ctx, req.OwnerID, req.FolderID); err != nil {
		return nil, err
	}

	now := time.Now()
	doc := &models.Document{
		ID:           uuid.NewString(),
		OwnerID:      req.OwnerID,
		FolderID:     req.FolderID,
		Name:         req.History.Name,
		CurrentCode:  req.History.Entries[req.History.CurrentIndex].Code,
		CurrentIndex: req.History.CurrentIndex,
		Visibility:   visibility,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	plan := history.Reconcile(doc.ID, nil, req.History.Entries)

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.docRepo.Create(txCtx, doc); err != nil {
			return err
		}
		return s.versionRepo.UpsertEntries(txCtx, doc.ID, plan.ToUpsert)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("document created",
		"id", doc.ID,
		"owner_id", doc.OwnerID,
		"name", doc.Name,
		"entries", len(req.History.Entries),
	)

	return doc, nil
}

// Get loads a document plus its history. Private documents look absent to
// anyone but their owner.
func (s *documentService) Get(ctx context.Context, viewerID, documentID string) (*services.DocumentWithHistory, error) {
	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.Visibility == models.VisibilityPrivate && doc.OwnerID != viewerID {
		return nil, fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
	}

	entries, err := s.versionRepo.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	return &services.DocumentWithHistory{Document: *doc, Entries: entries}, nil
}

// Save reconciles persisted history against the in-memory history. Deletes
// run before upserts inside one transaction, so the sync either fully
// applies or leaves the previous state intact for a retry.
func (s *documentService) Save(ctx context.Context, req *services.SaveDocumentRequest) (*models.Document, error) {
	if req.OwnerID == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := s.validateHistory(&req.History); err != nil {
		return nil, err
	}

	doc, err := s.docRepo.GetOwned(ctx, req.DocumentID, req.OwnerID)
	if err != nil {
		return nil, err
	}

	existing, err := s.versionRepo.ListByDocument(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}
	plan := history.Reconcile(req.DocumentID, existing, req.History.Entries)

	doc.Name = req.History.Name
	doc.CurrentIndex = req.History.CurrentIndex
	doc.CurrentCode = req.History.Entries[req.History.CurrentIndex].Code
	doc.UpdatedAt = time.Now()

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.versionRepo.DeleteEntries(txCtx, req.DocumentID, plan.ToDelete); err != nil {
			return err
		}
		if err := s.versionRepo.UpsertEntries(txCtx, req.DocumentID, plan.ToUpsert); err != nil {
			return err
		}
		return s.docRepo.Update(txCtx, doc)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("document saved",
		"id", doc.ID,
		"deleted", len(plan.ToDelete),
		"upserted", len(plan.ToUpsert),
	)

	return doc, nil
}

// SetVisibility changes who may read the document
func (s *documentService) SetVisibility(ctx context.Context, ownerID, documentID string, v models.Visibility) (*models.Document, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}
	if !v.Valid() {
		return nil, fmt.Errorf("%w: unknown visibility %q", domain.ErrValidation, v)
	}

	doc, err := s.docRepo.GetOwned(ctx, documentID, ownerID)
	if err != nil {
		return nil, err
	}
	doc.Visibility = v
	doc.UpdatedAt = time.Now()
	if err := s.docRepo.Update(ctx, doc); err != nil {
		return nil, err
	}

	return doc, nil
}

// SetFolder moves the document into a folder (nil = out of any folder)
func (s *documentService) SetFolder(ctx context.Context, ownerID, documentID string, folderID *string) (*models.Document, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := s.checkFolder(ctx, ownerID, folderID); err != nil {
		return nil, err
	}

	doc, err := s.docRepo.GetOwned(ctx, documentID, ownerID)
	if err != nil {
		return nil, err
	}
	doc.FolderID = folderID
	doc.UpdatedAt = time.Now()
	if err := s.docRepo.Update(ctx, doc); err != nil {
		return nil, err
	}

	return doc, nil
}

// Delete removes the document together with its history
func (s *documentService) Delete(ctx context.Context, ownerID, documentID string) error {
	if ownerID == "" {
		return domain.ErrUnauthorized
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.versionRepo.DeleteAllByDocument(txCtx, documentID); err != nil {
			return err
		}
		return s.docRepo.Delete(txCtx, documentID, ownerID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("document deleted", "id", documentID, "owner_id", ownerID)
	return nil
}

// ListMine lists the owner's documents, most recently updated first
func (s *documentService) ListMine(ctx context.Context, ownerID string) ([]models.Document, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}
	return s.docRepo.ListByOwner(ctx, ownerID)
}

// ListPublic pages through publicly visible documents
func (s *documentService) ListPublic(ctx context.Context, page int) ([]models.Document, error) {
	if page < 0 {
		page = 0
	}
	size := s.limits.PublicPageSize
	return s.docRepo.ListPublic(ctx, size, page*size)
}

// Like bumps the like counter of a readable document
func (s *documentService) Like(ctx context.Context, userID, documentID string) error {
	if userID == "" {
		return domain.ErrUnauthorized
	}

	doc, err := s.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return err
	}
	if doc.Visibility == models.VisibilityPrivate && doc.OwnerID != userID {
		return fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
	}

	return s.docRepo.IncrementCounter(ctx, documentID, models.CounterLikes)
}

// Autosaver returns a debounced scheduler saving through this service
func (s *documentService) Autosaver(ownerID, documentID string) *autosave.Scheduler {
	return autosave.New(func(ctx context.Context, h models.DocumentHistory) error {
		_, err := s.Save(ctx, &services.SaveDocumentRequest{
			OwnerID:    ownerID,
			DocumentID: documentID,
			History:    h,
		})
		return err
	}, autosave.Options{
		Delay:  s.limits.AutosaveDelay(),
		Logger: s.logger,
	})
}

// checkFolder verifies the target folder exists and belongs to the caller.
// A nil folder id (no folder) is always fine.
func (s *documentService) checkFolder(ctx context.Context, ownerID string, folderID *string) error {
	if folderID == nil {
		return nil
	}
	_, err := s.folderRepo.GetByID(ctx, *folderID, ownerID)
	return err
}

// validateHistory enforces the history invariants and size caps. A document
// with zero entries is representable only transiently in memory and is never
// accepted by a save.
func (s *documentService) validateHistory(h *models.DocumentHistory) error {
	err := validation.ValidateStruct(h,
		validation.Field(&h.Name, validation.Required, validation.Length(1, s.limits.MaxNameLength)),
		validation.Field(&h.Entries, validation.Required, validation.Length(1, s.limits.MaxHistoryLength)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if h.CurrentIndex < 0 || h.CurrentIndex >= len(h.Entries) {
		return fmt.Errorf("%w: current index %d out of range [0,%d)", domain.ErrValidation, h.CurrentIndex, len(h.Entries))
	}

	seen := make(map[string]bool, len(h.Entries))
	for i, e := range h.Entries {
		if e.EntryID == "" {
			return fmt.Errorf("%w: entry %d has no id", domain.ErrValidation, i)
		}
		if seen[e.EntryID] {
			return fmt.Errorf("%w: duplicate entry id %q", domain.ErrValidation, e.EntryID)
		}
		seen[e.EntryID] = true
		if len(e.Code) > s.limits.MaxCodeBytes {
			return fmt.Errorf("%w: entry %q exceeds %d code bytes", domain.ErrValidation, e.EntryID, s.limits.MaxCodeBytes)
		}
		if e.Prompt != nil && len(*e.Prompt) > s.limits.MaxPromptBytes {
			return fmt.Errorf("%w: entry %q exceeds %d prompt bytes", domain.ErrValidation, e.EntryID, s.limits.MaxPromptBytes)
		}
	}

	return nil
}
